package service

import (
	"context"
	"fmt"

	"dkpbot/events"
	"dkpbot/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	ledgerRepo LedgerRepository
	eventBus   *events.Bus
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledgerRepo LedgerRepository, eventBus *events.Bus) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		eventBus:   eventBus,
	}
}

// AddPoints credits amount to a user and returns the new total
func (s *ledgerService) AddPoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, NewValidationError("amount", "must be positive")
	}
	return s.applyDelta(ctx, guildID, userID, amount, reason)
}

// RemovePoints debits amount from a user and returns the new total.
// The balance may go negative.
func (s *ledgerService) RemovePoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, NewValidationError("amount", "must be positive")
	}
	return s.applyDelta(ctx, guildID, userID, -amount, reason)
}

func (s *ledgerService) applyDelta(ctx context.Context, guildID, userID int64, delta int64, reason string) (int64, error) {
	newTotal, err := s.ledgerRepo.ApplyDelta(ctx, guildID, userID, delta, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to apply point change: %w", err)
	}

	s.eventBus.Publish(ctx, events.DKPChangeEvent{
		GuildID:  guildID,
		UserID:   userID,
		Change:   delta,
		NewTotal: newTotal,
		Reason:   reason,
	})

	return newTotal, nil
}

// GetPoints returns a user's current total
func (s *ledgerService) GetPoints(ctx context.Context, guildID, userID int64) (int64, error) {
	points, err := s.ledgerRepo.GetBalance(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get points: %w", err)
	}
	return points, nil
}

// GetLeaderboard returns up to limit entries ordered by points descending
func (s *ledgerService) GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, NewValidationError("limit", "must be positive")
	}

	entries, err := s.ledgerRepo.GetLeaderboard(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// GetHistory returns a user's most recent ledger entries
func (s *ledgerService) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		return nil, NewValidationError("limit", "must be positive")
	}

	entries, err := s.ledgerRepo.GetHistory(ctx, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return entries, nil
}
