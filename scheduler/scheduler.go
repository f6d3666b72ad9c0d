package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"dkpbot/models"
	"dkpbot/service"
)

// EventNotifier delivers an event start reminder. Implemented by the
// bot layer.
type EventNotifier interface {
	NotifyEventStarting(event *models.Event)
}

// Reminder sweeps the event catalog and announces events whose start
// time falls inside the lead window, once per event.
type Reminder struct {
	eventService service.EventService
	notifier     EventNotifier
	leadTime     time.Duration

	mu       sync.Mutex
	notified map[int64]struct{}
}

// NewReminder creates a new event reminder sweeper
func NewReminder(eventService service.EventService, notifier EventNotifier, leadTime time.Duration) *Reminder {
	return &Reminder{
		eventService: eventService,
		notifier:     notifier,
		leadTime:     leadTime,
		notified:     make(map[int64]struct{}),
	}
}

// Setup registers the reminder sweep with a cron scheduler running
// every minute and starts it.
func Setup(reminder *Reminder) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc("* * * * *", reminder.Sweep); err != nil {
		return nil, err
	}

	c.Start()
	log.Info("Event reminder scheduler started")
	return c, nil
}

// Sweep announces all not-yet-notified events starting inside the lead
// window.
func (r *Reminder) Sweep() {
	upcoming := r.eventService.UpcomingEvents(time.Now(), r.leadTime)

	for _, event := range upcoming {
		if !r.markNotified(event.ID) {
			continue
		}

		log.WithFields(log.Fields{
			"eventID": event.ID,
			"name":    event.Name,
		}).Info("Sending event start reminder")
		r.notifier.NotifyEventStarting(event)
	}
}

// markNotified records the event as reminded. Returns false when a
// reminder was already sent.
func (r *Reminder) markNotified(eventID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, done := r.notified[eventID]; done {
		return false
	}
	r.notified[eventID] = struct{}{}
	return true
}
