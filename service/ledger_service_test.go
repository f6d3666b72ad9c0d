package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dkpbot/events"
	"dkpbot/models"
)

func TestLedgerService_AddPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("credits a positive amount", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		mockRepo.On("ApplyDelta", ctx, int64(1), int64(2), int64(10), "raid").Return(int64(10), nil)

		total, err := svc.AddPoints(ctx, 1, 2, 10, "raid")
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)

		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects zero amount before touching storage", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		_, err := svc.AddPoints(ctx, 1, 2, 0, "")
		assert.True(t, IsValidationError(err))

		mockRepo.AssertNotCalled(t, "ApplyDelta")
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		_, err := svc.AddPoints(ctx, 1, 2, -5, "")
		assert.True(t, IsValidationError(err))

		mockRepo.AssertNotCalled(t, "ApplyDelta")
	})
}

func TestLedgerService_RemovePoints(t *testing.T) {
	ctx := context.Background()

	t.Run("debits with a negative delta", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		mockRepo.On("ApplyDelta", ctx, int64(1), int64(2), int64(-3), "").Return(int64(2), nil)

		total, err := svc.RemovePoints(ctx, 1, 2, 3, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		mockRepo.AssertExpectations(t)
	})

	t.Run("allows the balance to go negative", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		mockRepo.On("ApplyDelta", ctx, int64(1), int64(2), int64(-100), "penalty").Return(int64(-80), nil)

		total, err := svc.RemovePoints(ctx, 1, 2, 100, "penalty")
		require.NoError(t, err)
		assert.Equal(t, int64(-80), total)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		_, err := svc.RemovePoints(ctx, 1, 2, 0, "")
		assert.True(t, IsValidationError(err))

		mockRepo.AssertNotCalled(t, "ApplyDelta")
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		storageErr := errors.New("connection reset")
		mockRepo.On("ApplyDelta", ctx, int64(1), int64(2), int64(-3), "").Return(int64(0), storageErr)

		_, err := svc.RemovePoints(ctx, 1, 2, 3, "")
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestLedgerService_GetLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("returns entries from the repository", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		expected := []*models.LeaderboardEntry{
			{UserID: 2, Points: 30},
			{UserID: 3, Points: 20},
			{UserID: 1, Points: 10},
		}
		mockRepo.On("GetLeaderboard", ctx, int64(9), 10).Return(expected, nil)

		entries, err := svc.GetLeaderboard(ctx, 9, 10)
		require.NoError(t, err)
		assert.Equal(t, expected, entries)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewLedgerService(mockRepo, events.NewBus())

		_, err := svc.GetLeaderboard(ctx, 9, 0)
		assert.True(t, IsValidationError(err))

		mockRepo.AssertNotCalled(t, "GetLeaderboard")
	})
}

func TestLedgerService_GetPoints(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockLedgerRepository)
	svc := NewLedgerService(mockRepo, events.NewBus())

	mockRepo.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(7), nil)

	points, err := svc.GetPoints(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), points)
}
