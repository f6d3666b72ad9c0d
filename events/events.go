package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"dkpbot/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDKPChange    EventType = "dkp_change"
	EventTypeEventCreated EventType = "event_created"
	EventTypeCodeRedeemed EventType = "code_redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DKPChangeEvent represents a ledger balance change that occurred
type DKPChangeEvent struct {
	GuildID  int64
	UserID   int64
	Change   int64
	NewTotal int64
	Reason   string
}

func (e DKPChangeEvent) Type() EventType {
	return EventTypeDKPChange
}

// EventCreatedEvent is emitted when a new scheduled event is created
type EventCreatedEvent struct {
	Event *models.Event
}

func (e EventCreatedEvent) Type() EventType {
	return EventTypeEventCreated
}

// CodeRedeemedEvent represents a successful reward code redemption
type CodeRedeemedEvent struct {
	GuildID   int64
	UserID    int64
	Code      string
	Amount    int64
	EventName string
}

func (e CodeRedeemedEvent) Type() EventType {
	return EventTypeCodeRedeemed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish delivers an event to all registered handlers. Handlers run
// asynchronously so publishers never block on slow subscribers.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
