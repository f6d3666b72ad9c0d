package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dkpbot/database"
	"dkpbot/models"
)

// LedgerRepository implements the LedgerRepository interface over
// PostgreSQL. Balances and the audit log are written together in a
// single transaction so concurrent deltas for the same (guild, user)
// serialize on the balance row lock.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyDelta atomically applies a signed, non-zero delta to a user's
// balance, creating the balance row at 0 first if it does not exist,
// and appends a matching ledger entry. Returns the resulting total.
func (r *LedgerRepository) ApplyDelta(ctx context.Context, guildID, userID int64, delta int64, reason string) (int64, error) {
	if delta == 0 {
		return 0, fmt.Errorf("delta must be non-zero")
	}

	var newTotal int64

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO dkp_balances (guild_id, user_id, points)
			VALUES ($1, $2, $3)
			ON CONFLICT (guild_id, user_id)
			DO UPDATE SET points = dkp_balances.points + EXCLUDED.points,
			              updated_at = NOW()
			RETURNING points
		`
		if err := tx.QueryRow(ctx, upsert, guildID, userID, delta).Scan(&newTotal); err != nil {
			return fmt.Errorf("failed to apply delta for user %d in guild %d: %w", userID, guildID, err)
		}

		insert := `
			INSERT INTO dkp_ledger (guild_id, user_id, change, reason)
			VALUES ($1, $2, $3, NULLIF($4, ''))
		`
		if _, err := tx.Exec(ctx, insert, guildID, userID, delta, reason); err != nil {
			return fmt.Errorf("failed to append ledger entry for user %d in guild %d: %w", userID, guildID, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newTotal, nil
}

// GetBalance returns the current total for a user, 0 if no balance row
// exists yet.
func (r *LedgerRepository) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	query := `
		SELECT points
		FROM dkp_balances
		WHERE guild_id = $1 AND user_id = $2
	`

	var points int64
	err := r.db.QueryRow(ctx, query, guildID, userID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for user %d in guild %d: %w", userID, guildID, err)
	}

	return points, nil
}

// GetLeaderboard returns up to limit entries for a guild ordered by
// points descending.
func (r *LedgerRepository) GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	query := `
		SELECT user_id, points
		FROM dkp_balances
		WHERE guild_id = $1
		ORDER BY points DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Points); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// GetHistory returns the most recent ledger entries for a user, newest
// first.
func (r *LedgerRepository) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	query := `
		SELECT id, guild_id, user_id, change, reason, created_at
		FROM dkp_ledger
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history for user %d in guild %d: %w", userID, guildID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.GuildID,
			&entry.UserID,
			&entry.Change,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger history: %w", err)
	}

	return entries, nil
}
