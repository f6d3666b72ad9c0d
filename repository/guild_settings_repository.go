package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dkpbot/database"
	"dkpbot/models"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	db *database.DB
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{db: db}
}

// GetOrCreate retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `
		SELECT guild_id, events_channel_id, game_preferences, created_at, updated_at
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings models.GuildSettings
	err := r.db.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.EventsChannelID,
		&settings.GamePreferences,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err == nil {
		return &settings, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	// Not found, create a default row. ON CONFLICT covers a concurrent
	// creation for the same guild.
	insert := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET updated_at = guild_settings.updated_at
		RETURNING guild_id, events_channel_id, game_preferences, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, insert, guildID).Scan(
		&settings.GuildID,
		&settings.EventsChannelID,
		&settings.GamePreferences,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// SetGamePreferences replaces the guild's game preference list
func (r *GuildSettingsRepository) SetGamePreferences(ctx context.Context, guildID int64, games []string) error {
	query := `
		INSERT INTO guild_settings (guild_id, game_preferences)
		VALUES ($1, $2)
		ON CONFLICT (guild_id)
		DO UPDATE SET game_preferences = EXCLUDED.game_preferences,
		              updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, guildID, games); err != nil {
		return fmt.Errorf("failed to set game preferences for guild %d: %w", guildID, err)
	}

	return nil
}

// SetEventsChannel stores the guild's events channel id
func (r *GuildSettingsRepository) SetEventsChannel(ctx context.Context, guildID, channelID int64) error {
	query := `
		INSERT INTO guild_settings (guild_id, events_channel_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id)
		DO UPDATE SET events_channel_id = EXCLUDED.events_channel_id,
		              updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, guildID, channelID); err != nil {
		return fmt.Errorf("failed to set events channel for guild %d: %w", guildID, err)
	}

	return nil
}
