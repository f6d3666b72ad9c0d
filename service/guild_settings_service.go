package service

import (
	"context"
	"fmt"

	"dkpbot/models"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	settingsRepo GuildSettingsRepository
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(settingsRepo GuildSettingsRepository) GuildSettingsService {
	return &guildSettingsService{settingsRepo: settingsRepo}
}

// GetOrCreateSettings retrieves guild settings, creating defaults if missing
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	return settings, nil
}

// SetGamePreferences replaces the guild's game preference list
func (s *guildSettingsService) SetGamePreferences(ctx context.Context, guildID int64, games []string) error {
	if len(games) == 0 {
		return NewValidationError("games", "must contain at least one game")
	}
	for _, game := range games {
		if game == "" {
			return NewValidationError("games", "must not contain empty names")
		}
	}

	if err := s.settingsRepo.SetGamePreferences(ctx, guildID, games); err != nil {
		return fmt.Errorf("failed to set game preferences: %w", err)
	}
	return nil
}

// SetEventsChannel stores the guild's events channel id
func (s *guildSettingsService) SetEventsChannel(ctx context.Context, guildID, channelID int64) error {
	if err := s.settingsRepo.SetEventsChannel(ctx, guildID, channelID); err != nil {
		return fmt.Errorf("failed to set events channel: %w", err)
	}
	return nil
}
