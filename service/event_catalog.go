package service

import (
	"sync"
	"time"

	"dkpbot/models"
)

// EventCatalog holds event records in process memory. Ids are assigned
// sequentially starting at 1 and never reused. Events are immutable
// once added; there is no removal.
//
// Catalog contents do not survive a process restart, unlike ledger
// balances which live in Postgres.
type EventCatalog struct {
	mu     sync.RWMutex
	events map[int64]*models.Event
	nextID int64
}

// NewEventCatalog creates an empty event catalog
func NewEventCatalog() *EventCatalog {
	return &EventCatalog{
		events: make(map[int64]*models.Event),
		nextID: 1,
	}
}

// Add assigns the next sequential id to the event, stores it and
// returns the id.
func (c *EventCatalog) Add(event *models.Event) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	event.ID = c.nextID
	c.nextID++
	c.events[event.ID] = event
	return event.ID
}

// Get returns the event with the given id
func (c *EventCatalog) Get(eventID int64) (*models.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	event, ok := c.events[eventID]
	return event, ok
}

// Upcoming returns events whose start time falls inside (now, now+within]
func (c *EventCatalog) Upcoming(now time.Time, within time.Duration) []*models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var upcoming []*models.Event
	cutoff := now.Add(within)
	for _, event := range c.events {
		if event.StartTime == nil {
			continue
		}
		if event.StartTime.After(now) && !event.StartTime.After(cutoff) {
			upcoming = append(upcoming, event)
		}
	}
	return upcoming
}
