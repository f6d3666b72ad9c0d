package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dkpbot/events"
	"dkpbot/models"
)

func newTestRegistry() (*RedemptionRegistry, *EventCatalog, *MockLedgerService) {
	catalog := NewEventCatalog()
	mockLedger := new(MockLedgerService)
	registry := NewRedemptionRegistry(catalog, mockLedger, events.NewBus())
	return registry, catalog, mockLedger
}

func addCatalogEvent(catalog *EventCatalog, guildID int64, name string) int64 {
	return catalog.Add(&models.Event{
		GuildID: guildID,
		Name:    name,
		Type:    models.EventTypePublic,
	})
}

func TestRedemptionRegistry_IssueCode(t *testing.T) {
	t.Run("codes are 8 uppercase alphanumeric characters", func(t *testing.T) {
		registry, catalog, _ := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")

		code, err := registry.IssueCode(eventID, 1, 100, 42)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), code)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		registry, catalog, _ := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")

		_, err := registry.IssueCode(eventID, 1, 0, 42)
		assert.True(t, IsValidationError(err))
	})

	t.Run("regenerates on collision until unique", func(t *testing.T) {
		registry, catalog, _ := newTestRegistry()
		// Shrink the code space to two possible codes so a collision
		// is guaranteed within a couple of draws.
		registry.alphabet = "AB"
		registry.codeLength = 1

		eventID := addCatalogEvent(catalog, 1, "Raid Night")

		first, err := registry.IssueCode(eventID, 1, 10, 42)
		require.NoError(t, err)
		second, err := registry.IssueCode(eventID, 1, 10, 42)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestRedemptionRegistry_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		registry, _, mockLedger := newTestRegistry()

		_, err := registry.Redeem(ctx, "NOPE1234", 1, 7)
		assert.ErrorIs(t, err, ErrCodeNotFound)

		mockLedger.AssertNotCalled(t, "AddPoints")
	})

	t.Run("wrong guild", func(t *testing.T) {
		registry, catalog, mockLedger := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")
		code, err := registry.IssueCode(eventID, 1, 100, 42)
		require.NoError(t, err)

		_, err = registry.Redeem(ctx, code, 2, 7)
		assert.ErrorIs(t, err, ErrWrongGuild)

		mockLedger.AssertNotCalled(t, "AddPoints")
	})

	t.Run("successful redemption credits the ledger once", func(t *testing.T) {
		registry, catalog, mockLedger := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")
		code, err := registry.IssueCode(eventID, 1, 100, 42)
		require.NoError(t, err)

		mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(100), "Event reward (Raid Night)").
			Return(int64(100), nil).Once()

		result, err := registry.Redeem(ctx, code, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(100), result.Amount)
		assert.Equal(t, "Raid Night", result.EventName)
		assert.Equal(t, int64(100), result.NewTotal)

		// Second attempt by the same user is rejected without a credit
		_, err = registry.Redeem(ctx, code, 1, 7)
		assert.ErrorIs(t, err, ErrAlreadyRedeemed)

		mockLedger.AssertExpectations(t)
	})

	t.Run("codes are case and whitespace insensitive", func(t *testing.T) {
		registry, catalog, mockLedger := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")
		code, err := registry.IssueCode(eventID, 1, 25, 42)
		require.NoError(t, err)

		mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(25), mock.Anything).
			Return(int64(25), nil).Once()

		_, err = registry.Redeem(ctx, "  "+strings.ToLower(code)+" ", 1, 7)
		require.NoError(t, err)
	})

	t.Run("distinct users each redeem the full amount", func(t *testing.T) {
		registry, catalog, mockLedger := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")
		code, err := registry.IssueCode(eventID, 1, 50, 42)
		require.NoError(t, err)

		mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(50), mock.Anything).
			Return(int64(50), nil).Once()
		mockLedger.On("AddPoints", ctx, int64(1), int64(8), int64(50), mock.Anything).
			Return(int64(50), nil).Once()

		_, err = registry.Redeem(ctx, code, 1, 7)
		require.NoError(t, err)
		_, err = registry.Redeem(ctx, code, 1, 8)
		require.NoError(t, err)

		mockLedger.AssertExpectations(t)
	})

	t.Run("failed credit leaves the code redeemable", func(t *testing.T) {
		registry, catalog, mockLedger := newTestRegistry()
		eventID := addCatalogEvent(catalog, 1, "Raid Night")
		code, err := registry.IssueCode(eventID, 1, 75, 42)
		require.NoError(t, err)

		storageErr := errors.New("connection reset")
		mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(75), mock.Anything).
			Return(int64(0), storageErr).Once()
		mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(75), mock.Anything).
			Return(int64(75), nil).Once()

		// First attempt fails at the ledger; the user must not be
		// marked as having redeemed.
		_, err = registry.Redeem(ctx, code, 1, 7)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAlreadyRedeemed)

		// Retry succeeds
		result, err := registry.Redeem(ctx, code, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(75), result.Amount)

		mockLedger.AssertExpectations(t)
	})
}

func TestRedemptionRegistry_Redeem_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()

	registry, catalog, mockLedger := newTestRegistry()
	eventID := addCatalogEvent(catalog, 1, "Raid Night")
	code, err := registry.IssueCode(eventID, 1, 100, 42)
	require.NoError(t, err)

	mockLedger.On("AddPoints", ctx, int64(1), int64(7), int64(100), mock.Anything).
		Return(int64(100), nil)

	const attempts = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, conflicts int

	for a := 0; a < attempts; a++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Redeem(ctx, code, 1, 7)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyRedeemed):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent redemption must succeed")
	assert.Equal(t, attempts-1, conflicts)
	mockLedger.AssertNumberOfCalls(t, "AddPoints", 1)
}
