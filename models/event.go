package models

import (
	"time"
)

// EventTimeLayout is the fixed textual format accepted for event start
// and end times.
const EventTimeLayout = "2006-01-02 15:04"

// EventType represents the visibility of an event
type EventType string

const (
	EventTypePublic  EventType = "public"
	EventTypePrivate EventType = "private"
)

// Event represents a scheduled gaming event. Events are immutable once
// created; ids start at 1 and are never reused.
type Event struct {
	ID               int64
	GuildID          int64
	Name             string
	Genre            string
	Game             string
	Type             EventType
	Description      string
	ParticipantLimit *int
	StartTime        *time.Time
	EndTime          *time.Time
	CreatorID        int64
	RewardAmount     int64
	RewardCode       string // empty when RewardAmount is 0
	CreatedAt        time.Time
}
