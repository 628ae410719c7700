package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/db"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/pgtest"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *db.DB {
	t.Helper()
	return db.NewDB(pgtest.Pool(t), uid.NewUUID(), instrument.NewNoop())
}

func TestDB_OTPLifecycle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	scope := entity.Scope{UserID: "u1", OrganizationID: "o1", Phone: "+1555"}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("insert then find latest pending", func(t *testing.T) {
		rec, err := store.Insert(ctx, entity.NewRecord{
			Scope:     scope,
			Code:      "12345",
			CreatedAt: now,
			ExpiresAt: now.Add(entity.DefaultTTL),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, entity.StatusPending, rec.Status)

		got, err := store.FindLatestPending(ctx, scope, "12345")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, scope, got.Scope)
		assert.True(t, now.Equal(got.CreatedAt))
		assert.Nil(t, got.VerifiedAt)
	})

	t.Run("wrong code is not found", func(t *testing.T) {
		_, err := store.FindLatestPending(ctx, scope, "54321")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("verify once then already terminal", func(t *testing.T) {
		rec, err := store.FindLatestPending(ctx, scope, "12345")
		require.NoError(t, err)

		at := now.Add(time.Minute)
		require.NoError(t, store.MarkVerified(ctx, rec.ID, at))
		assert.ErrorIs(t, store.MarkVerified(ctx, rec.ID, at), entity.ErrAlreadyTerminal)
		assert.ErrorIs(t, store.MarkExpired(ctx, rec.ID), entity.ErrAlreadyTerminal)

		got, err := store.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusVerified, got.Status)
		require.NotNil(t, got.VerifiedAt)
		assert.True(t, at.Equal(*got.VerifiedAt))

		_, err = store.FindLatestPending(ctx, scope, "12345")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}

func TestDB_FindLatestPending_TieBreak(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	scope := entity.Scope{UserID: "u2", OrganizationID: "o2", Phone: "+1666"}
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	in := entity.NewRecord{Scope: scope, Code: "11111", CreatedAt: at, ExpiresAt: at.Add(entity.DefaultTTL)}

	first, err := store.Insert(ctx, in)
	require.NoError(t, err)
	second, err := store.Insert(ctx, in)
	require.NoError(t, err)

	got, err := store.FindLatestPending(ctx, scope, "11111")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.NotEqual(t, first.ID, got.ID)
}

func TestDB_ConcurrentMarkVerified(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rec, err := store.Insert(ctx, entity.NewRecord{
		Scope:     entity.Scope{UserID: "u3", OrganizationID: "o3", Phone: "+1777"},
		Code:      "22222",
		CreatedAt: now,
		ExpiresAt: now.Add(entity.DefaultTTL),
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range workers {
		wg.Go(func() {
			if err := store.MarkVerified(ctx, rec.ID, now); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

func TestDB_ExpireStale(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	scope := entity.Scope{UserID: "u4", OrganizationID: "o4", Phone: "+1888"}

	stale, err := store.Insert(ctx, entity.NewRecord{Scope: scope, Code: "33333", CreatedAt: now, ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	fresh, err := store.Insert(ctx, entity.NewRecord{Scope: scope, Code: "44444", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	n, err := store.ExpireStale(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusExpired, got.Status)

	got, err = store.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
}

func TestDB_GetByID_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.GetByID(context.Background(), "0190d7a2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
