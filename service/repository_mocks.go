package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dkpbot/models"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ApplyDelta(ctx context.Context, guildID, userID int64, delta int64, reason string) (int64, error) {
	args := m.Called(ctx, guildID, userID, delta, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) SetGamePreferences(ctx context.Context, guildID int64, games []string) error {
	args := m.Called(ctx, guildID, games)
	return args.Error(0)
}

func (m *MockGuildSettingsRepository) SetEventsChannel(ctx context.Context, guildID, channelID int64) error {
	args := m.Called(ctx, guildID, channelID)
	return args.Error(0)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AddPoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error) {
	args := m.Called(ctx, guildID, userID, amount, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) RemovePoints(ctx context.Context, guildID, userID int64, amount int64, reason string) (int64, error) {
	args := m.Called(ctx, guildID, userID, amount, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) GetPoints(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockLedgerService) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}
