package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dkpbot/repository/testutil"
)

func TestLedgerRepository_ApplyDelta(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("first mutation creates the balance row", func(t *testing.T) {
		total, err := repo.ApplyDelta(ctx, 100, 1, 5, "first award")
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("deltas accumulate", func(t *testing.T) {
		total, err := repo.ApplyDelta(ctx, 100, 2, 5, "")
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		total, err = repo.ApplyDelta(ctx, 100, 2, -3, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		balance, err := repo.GetBalance(ctx, 100, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), balance)
	})

	t.Run("balance may go negative", func(t *testing.T) {
		total, err := repo.ApplyDelta(ctx, 100, 3, -50, "penalty")
		require.NoError(t, err)
		assert.Equal(t, int64(-50), total)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		_, err := repo.ApplyDelta(ctx, 100, 4, 0, "")
		assert.Error(t, err)

		// No row and no log entry should exist
		balance, err := repo.GetBalance(ctx, 100, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)

		entries, err := repo.GetHistory(ctx, 100, 4, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("balance equals sum of all applied deltas", func(t *testing.T) {
		deltas := []int64{10, -4, 7, -1, 25, -30}
		var expected int64
		var total int64
		var err error
		for _, delta := range deltas {
			expected += delta
			total, err = repo.ApplyDelta(ctx, 100, 5, delta, "")
			require.NoError(t, err)
		}
		assert.Equal(t, expected, total)

		entries, err := repo.GetHistory(ctx, 100, 5, 100)
		require.NoError(t, err)
		require.Len(t, entries, len(deltas))

		var logged int64
		for _, entry := range entries {
			logged += entry.Change
		}
		assert.Equal(t, expected, logged)
	})
}

func TestLedgerRepository_ApplyDelta_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	const workers = 20
	const perWorker = 5

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := repo.ApplyDelta(ctx, 7, 77, 1, "concurrent")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	balance, err := repo.GetBalance(ctx, 7, 77)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), balance)

	entries, err := repo.GetHistory(ctx, 7, 77, workers*perWorker+1)
	require.NoError(t, err)
	assert.Len(t, entries, workers*perWorker)
}

func TestLedgerRepository_GetBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown user has zero balance", func(t *testing.T) {
		balance, err := repo.GetBalance(ctx, 1, 999)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("balances are scoped per guild", func(t *testing.T) {
		_, err := repo.ApplyDelta(ctx, 1, 10, 42, "")
		require.NoError(t, err)

		balance, err := repo.GetBalance(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})
}

func TestLedgerRepository_GetLeaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty guild returns no entries", func(t *testing.T) {
		entries, err := repo.GetLeaderboard(ctx, 50, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	// Guild 60: three users with 10, 30, 20 points
	_, err := repo.ApplyDelta(ctx, 60, 1, 10, "")
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 60, 2, 30, "")
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 60, 3, 20, "")
	require.NoError(t, err)

	// Another guild's data must not leak in
	_, err = repo.ApplyDelta(ctx, 61, 4, 1000, "")
	require.NoError(t, err)

	t.Run("ordered by points descending", func(t *testing.T) {
		entries, err := repo.GetLeaderboard(ctx, 60, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, int64(2), entries[0].UserID)
		assert.Equal(t, int64(30), entries[0].Points)
		assert.Equal(t, int64(3), entries[1].UserID)
		assert.Equal(t, int64(20), entries[1].Points)
		assert.Equal(t, int64(1), entries[2].UserID)
		assert.Equal(t, int64(10), entries[2].Points)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		entries, err := repo.GetLeaderboard(ctx, 60, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(2), entries[0].UserID)
	})

	t.Run("non-positive limit is rejected", func(t *testing.T) {
		_, err := repo.GetLeaderboard(ctx, 60, 0)
		assert.Error(t, err)
	})
}

func TestLedgerRepository_GetHistory(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, 5, 1, 10, "raid bonus")
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 5, 1, -4, "")
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 5, 1, 6, "event reward")
	require.NoError(t, err)

	t.Run("entries returned newest first", func(t *testing.T) {
		entries, err := repo.GetHistory(ctx, 5, 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, int64(6), entries[0].Change)
		assert.Equal(t, int64(-4), entries[1].Change)
		assert.Equal(t, int64(10), entries[2].Change)

		require.NotNil(t, entries[0].Reason)
		assert.Equal(t, "event reward", *entries[0].Reason)

		// Empty reason is stored as NULL
		assert.Nil(t, entries[1].Reason)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		entries, err := repo.GetHistory(ctx, 5, 1, 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
