package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
	"github.com/Hodaren2022/aitravel-backend/internal/service"
)

func TestSnapshotBuilder_Empty(t *testing.T) {
	stores := repo.NewStores(repo.NewMemoryKV())
	b := service.NewSnapshotBuilder(stores)

	snap := b.Build(context.Background(), "dashboard")

	assert.Nil(t, snap.CurrentTrip)
	assert.Empty(t, snap.AllTrips)
	assert.Equal(t, "dashboard", snap.CurrentPage)
	assert.NotEmpty(t, snap.Timestamp)
	assert.Empty(t, snap.Error)
}

func TestSnapshotBuilder_CurrentTripAndCompression(t *testing.T) {
	stores := repo.NewStores(repo.NewMemoryKV())
	ctx := context.Background()

	// Eight trips stored; the snapshot keeps the trailing five.
	var trips []domain.Trip
	for i := 1; i <= 8; i++ {
		trips = append(trips, domain.Trip{ID: fmt.Sprintf("trip_%d", i), Destination: "東京", Budget: float64(i)})
	}
	_, err := stores.Trips.Update(ctx, func([]domain.Trip) ([]domain.Trip, error) { return trips, nil })
	require.NoError(t, err)
	require.NoError(t, stores.SelectedTrip.Store(ctx, "trip_3"))

	// Twelve expenses on the selected trip; the snapshot keeps the last ten.
	var expenses []domain.Expense
	for i := 1; i <= 12; i++ {
		expenses = append(expenses, domain.Expense{ID: fmt.Sprintf("e%d", i), Amount: float64(i)})
	}
	_, err = stores.Expenses.Update(ctx, func(map[string][]domain.Expense) (map[string][]domain.Expense, error) {
		return map[string][]domain.Expense{"trip_3": expenses}, nil
	})
	require.NoError(t, err)

	b := service.NewSnapshotBuilder(stores)
	snap := b.Build(ctx, "expenses")

	require.NotNil(t, snap.CurrentTrip)
	assert.Equal(t, "trip_3", snap.CurrentTrip.ID)

	require.Len(t, snap.AllTrips, 5)
	assert.Equal(t, "trip_4", snap.AllTrips[0].ID)

	require.Len(t, snap.Expenses, 10)
	assert.Equal(t, 3.0, snap.Expenses[0].Amount)
	assert.Equal(t, 12.0, snap.Expenses[9].Amount)

	assert.False(t, snap.Compressed)
}

func TestSnapshotBuilder_FieldTruncation(t *testing.T) {
	stores := repo.NewStores(repo.NewMemoryKV())
	ctx := context.Background()

	long := strings.Repeat("長", 200)
	_, err := stores.Notes.Update(ctx, func([]domain.Note) ([]domain.Note, error) {
		return []domain.Note{{ID: "n1", Title: long, Content: long}}, nil
	})
	require.NoError(t, err)

	b := service.NewSnapshotBuilder(stores)
	snap := b.Build(ctx, "notes")

	require.Len(t, snap.Notes, 1)
	// Truncation is rune-based so CJK text survives intact.
	assert.Len(t, []rune(snap.Notes[0].Title), 30)
	assert.Len(t, []rune(snap.Notes[0].Content), 100)
}

func TestSnapshotBuilder_SecondStageCompression(t *testing.T) {
	stores := repo.NewStores(repo.NewMemoryKV())
	ctx := context.Background()

	// Notes near the per-field truncation caps push the serialized snapshot
	// over the size limit and force the second compression stage.
	heavy := strings.Repeat("很長的筆記內容", 30)
	var notes []domain.Note
	for i := 0; i < 5; i++ {
		notes = append(notes, domain.Note{ID: fmt.Sprintf("n%d", i), Title: heavy, Content: heavy})
	}
	_, err := stores.Notes.Update(ctx, func([]domain.Note) ([]domain.Note, error) { return notes, nil })
	require.NoError(t, err)

	_, err = stores.Trips.Update(ctx, func([]domain.Trip) ([]domain.Trip, error) {
		var trips []domain.Trip
		for i := 0; i < 5; i++ {
			trips = append(trips, domain.Trip{
				ID:          fmt.Sprintf("trip_%d", i),
				Destination: strings.Repeat("目的地", 400),
			})
		}
		return trips, nil
	})
	require.NoError(t, err)

	b := service.NewSnapshotBuilder(stores)
	snap := b.Build(ctx, "dashboard")

	assert.True(t, snap.Compressed)
	// The second stage drops the trip list and tightens the note cap.
	assert.Empty(t, snap.AllTrips)
	assert.LessOrEqual(t, len(snap.Notes), 3)
}
