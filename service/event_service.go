package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"dkpbot/events"
	"dkpbot/models"
)

// eventService implements the EventService interface
type eventService struct {
	catalog  *EventCatalog
	registry *RedemptionRegistry
	eventBus *events.Bus
}

// NewEventService creates a new event service
func NewEventService(catalog *EventCatalog, registry *RedemptionRegistry, eventBus *events.Bus) EventService {
	return &eventService{
		catalog:  catalog,
		registry: registry,
		eventBus: eventBus,
	}
}

// CreateEvent validates params, stores the event and issues a reward
// code when the reward amount is positive. Validation failures leave no
// partial event behind.
func (s *eventService) CreateEvent(ctx context.Context, params CreateEventParams) (*models.Event, error) {
	if params.Name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if params.RewardAmount < 0 {
		return nil, NewValidationError("reward", "must not be negative")
	}

	eventType := models.EventType(params.Type)
	if eventType != models.EventTypePublic && eventType != models.EventTypePrivate {
		return nil, NewValidationError("type", "must be public or private")
	}

	if params.ParticipantLimit != nil && *params.ParticipantLimit <= 0 {
		return nil, NewValidationError("limit", "must be positive")
	}

	startTime, err := parseEventTime("start_time", params.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseEventTime("end_time", params.EndTime)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		GuildID:          params.GuildID,
		Name:             params.Name,
		Genre:            params.Genre,
		Game:             params.Game,
		Type:             eventType,
		Description:      params.Description,
		ParticipantLimit: params.ParticipantLimit,
		StartTime:        startTime,
		EndTime:          endTime,
		CreatorID:        params.CreatorID,
		RewardAmount:     params.RewardAmount,
		CreatedAt:        time.Now(),
	}

	eventID := s.catalog.Add(event)

	if params.RewardAmount > 0 {
		code, err := s.registry.IssueCode(eventID, params.GuildID, params.RewardAmount, params.CreatorID)
		if err != nil {
			return nil, fmt.Errorf("failed to issue reward code: %w", err)
		}
		event.RewardCode = code
	}

	log.WithFields(log.Fields{
		"eventID":   eventID,
		"guildID":   params.GuildID,
		"name":      params.Name,
		"game":      params.Game,
		"type":      eventType,
		"hasReward": params.RewardAmount > 0,
	}).Info("Event created")

	s.eventBus.Publish(ctx, events.EventCreatedEvent{Event: event})

	return event, nil
}

// GetEvent returns an event by id
func (s *eventService) GetEvent(eventID int64) (*models.Event, error) {
	event, ok := s.catalog.Get(eventID)
	if !ok {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// UpcomingEvents returns events starting inside (now, now+within]
func (s *eventService) UpcomingEvents(now time.Time, within time.Duration) []*models.Event {
	return s.catalog.Upcoming(now, within)
}

// parseEventTime parses an optional time string in models.EventTimeLayout
func parseEventTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(models.EventTimeLayout, value)
	if err != nil {
		return nil, NewValidationError(field, "must use format YYYY-MM-DD HH:MM")
	}
	return &t, nil
}
