package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dkpbot/models"
	"dkpbot/service"
)

type stubEventService struct {
	upcoming []*models.Event
}

func (s *stubEventService) CreateEvent(ctx context.Context, params service.CreateEventParams) (*models.Event, error) {
	return nil, nil
}

func (s *stubEventService) GetEvent(eventID int64) (*models.Event, error) {
	return nil, service.ErrEventNotFound
}

func (s *stubEventService) UpcomingEvents(now time.Time, within time.Duration) []*models.Event {
	return s.upcoming
}

type recordingNotifier struct {
	notified []int64
}

func (n *recordingNotifier) NotifyEventStarting(event *models.Event) {
	n.notified = append(n.notified, event.ID)
}

func upcomingEvent(id int64, name string) *models.Event {
	start := time.Now().Add(10 * time.Minute)
	return &models.Event{
		ID:        id,
		GuildID:   1,
		Name:      name,
		Type:      models.EventTypePublic,
		StartTime: &start,
	}
}

func TestReminder_SweepNotifiesUpcomingEvents(t *testing.T) {
	events := &stubEventService{upcoming: []*models.Event{
		upcomingEvent(1, "Raid Night"),
		upcomingEvent(2, "Guild Meeting"),
	}}
	notifier := &recordingNotifier{}
	reminder := NewReminder(events, notifier, 15*time.Minute)

	reminder.Sweep()

	assert.ElementsMatch(t, []int64{1, 2}, notifier.notified)
}

func TestReminder_SweepNotifiesEachEventOnce(t *testing.T) {
	events := &stubEventService{upcoming: []*models.Event{
		upcomingEvent(1, "Raid Night"),
	}}
	notifier := &recordingNotifier{}
	reminder := NewReminder(events, notifier, 15*time.Minute)

	// An event inside the lead window stays upcoming across several
	// sweeps; only the first one may notify.
	reminder.Sweep()
	reminder.Sweep()
	reminder.Sweep()

	assert.Equal(t, []int64{1}, notifier.notified)
}

func TestReminder_SweepWithNoUpcomingEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	reminder := NewReminder(&stubEventService{}, notifier, 15*time.Minute)

	reminder.Sweep()

	assert.Empty(t, notifier.notified)
}
