package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

func TestMemoryKV_RoundTrip(t *testing.T) {
	kv := repo.NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	// The returned slice is a copy; mutating it does not corrupt the store.
	got[0] = 'X'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), again)
}

func TestMemoryKV_MissingKey(t *testing.T) {
	kv := repo.NewMemoryKV()

	_, err := kv.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryKV_Delete(t *testing.T) {
	kv := repo.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))

	require.NoError(t, kv.Delete(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocument_LoadMissingYieldsZeroValue(t *testing.T) {
	doc := repo.NewDocument[[]domain.Trip](repo.NewMemoryKV(), "trips")

	got, err := doc.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocument_StoreLoad(t *testing.T) {
	doc := repo.NewDocument[[]domain.Trip](repo.NewMemoryKV(), "trips")
	ctx := context.Background()

	require.NoError(t, doc.Store(ctx, []domain.Trip{{ID: "trip_a", Destination: "東京"}}))

	got, err := doc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "東京", got[0].Destination)
}

func TestDocument_UpdateErrorLeavesDocumentUntouched(t *testing.T) {
	doc := repo.NewDocument[[]domain.Trip](repo.NewMemoryKV(), "trips")
	ctx := context.Background()
	require.NoError(t, doc.Store(ctx, []domain.Trip{{ID: "trip_a"}}))

	sentinel := domain.NewModificationError("c1", "boom")
	_, err := doc.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		return nil, sentinel
	})

	// Typed errors survive unwrapped so callers can inspect them.
	var merr *domain.ModificationError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "c1", merr.ChangeID)

	got, loadErr := doc.Load(ctx)
	require.NoError(t, loadErr)
	assert.Len(t, got, 1)
}

func TestDocument_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	doc := repo.NewDocument[[]int](repo.NewMemoryKV(), "counters")
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := doc.Update(ctx, func(items []int) ([]int, error) {
				return append(items, v), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := doc.Load(ctx)
	require.NoError(t, err)
	// Every read-modify-write lands: no update overwrites another.
	assert.Len(t, got, n)
}
