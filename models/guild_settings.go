package models

import (
	"time"
)

// GuildSettings holds per-guild bot configuration. GamePreferences is
// the list of games the guild wants public-event broadcasts for; an
// empty list means all games.
type GuildSettings struct {
	GuildID         int64     `db:"guild_id"`
	EventsChannelID *int64    `db:"events_channel_id"`
	GamePreferences []string  `db:"game_preferences"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// WantsGame reports whether the guild should receive broadcasts for the
// given game.
func (s *GuildSettings) WantsGame(game string) bool {
	if len(s.GamePreferences) == 0 {
		return true
	}
	for _, g := range s.GamePreferences {
		if g == game {
			return true
		}
	}
	return false
}
