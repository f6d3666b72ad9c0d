package service

import (
	"context"
	"time"

	"dkpbot/models"
)

// LedgerRepository defines the interface for durable DKP accounting
type LedgerRepository interface {
	// ApplyDelta atomically applies a signed non-zero delta to a user's
	// balance, appends an audit log entry and returns the new total.
	// The balance row is created at zero on first mutation.
	ApplyDelta(ctx context.Context, guildID, userID int64, delta int64, reason string) (int64, error)

	// GetBalance returns the current total, 0 if the user has no balance row
	GetBalance(ctx context.Context, guildID, userID int64) (int64, error)

	// GetLeaderboard returns up to limit entries ordered by points descending
	GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error)

	// GetHistory returns the most recent ledger entries for a user, newest first
	GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreate retrieves guild settings or creates default ones if not found
	GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// SetGamePreferences replaces the guild's game preference list
	SetGamePreferences(ctx context.Context, guildID int64, games []string) error

	// SetEventsChannel stores the guild's events channel id
	SetEventsChannel(ctx context.Context, guildID, channelID int64) error
}

// LedgerService defines the interface for DKP point operations
type LedgerService interface {
	// AddPoints credits amount (> 0) to a user and returns the new total
	AddPoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error)

	// RemovePoints debits amount (> 0) from a user and returns the new
	// total. Balances may go negative; no floor is enforced.
	RemovePoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error)

	// GetPoints returns a user's current total, 0 for unknown users
	GetPoints(ctx context.Context, guildID, userID int64) (int64, error)

	// GetLeaderboard returns up to limit (> 0) entries ordered by points descending
	GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error)

	// GetHistory returns a user's most recent ledger entries, newest first
	GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// CreateEventParams holds the caller-supplied fields for a new event.
// StartTime and EndTime are raw strings in the models.EventTimeLayout
// format; empty means unset.
type CreateEventParams struct {
	GuildID          int64
	Name             string
	Genre            string
	Game             string
	Type             string
	Description      string
	ParticipantLimit *int
	StartTime        string
	EndTime          string
	CreatorID        int64
	RewardAmount     int64
}

// EventService defines the interface for event catalog operations
type EventService interface {
	// CreateEvent validates params, assigns the next sequential event id
	// and, when the reward amount is positive, issues a reward code.
	CreateEvent(ctx context.Context, params CreateEventParams) (*models.Event, error)

	// GetEvent returns an event by id or ErrEventNotFound
	GetEvent(eventID int64) (*models.Event, error)

	// UpcomingEvents returns events whose start time falls inside
	// (now, now+within], for reminder sweeps.
	UpcomingEvents(now time.Time, within time.Duration) []*models.Event
}

// RedemptionResult describes a successful reward code redemption
type RedemptionResult struct {
	Amount    int64
	EventName string
	NewTotal  int64
}

// RedemptionService defines the interface for reward code redemption
type RedemptionService interface {
	// Redeem credits the code's reward to the user exactly once.
	// Returns ErrCodeNotFound, ErrWrongGuild or ErrAlreadyRedeemed as
	// typed failures; storage errors leave the code unredeemed.
	Redeem(ctx context.Context, code string, guildID, userID int64) (*RedemptionResult, error)
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings, creating defaults if missing
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// SetGamePreferences replaces the guild's game preference list
	SetGamePreferences(ctx context.Context, guildID int64, games []string) error

	// SetEventsChannel stores the guild's events channel id
	SetEventsChannel(ctx context.Context, guildID, channelID int64) error
}
