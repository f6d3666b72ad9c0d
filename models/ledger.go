package models

import (
	"time"
)

// Balance represents a user's DKP total within a guild. It is a
// materialized view of the ledger: points always equals the sum of all
// LedgerEntry.Change values for the same (guild, user) pair.
type Balance struct {
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LedgerEntry represents a single append-only audit log record for a
// balance change. Entries are never updated or deleted.
type LedgerEntry struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Change    int64     `db:"change"`
	Reason    *string   `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

// LeaderboardEntry is one row of a guild leaderboard, ordered by points
// descending.
type LeaderboardEntry struct {
	UserID int64 `db:"user_id"`
	Points int64 `db:"points"`
}
