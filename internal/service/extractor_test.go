package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/service"
)

// ---- creation detection ----------------------------------------------------

func TestKeywordExtractor_CreateTrip(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("幫我建立一個東京5天的行程", service.Snapshot{})

	require.Len(t, got, 1)
	change := got[0]
	assert.Equal(t, domain.ChangeCreate, change.Type)
	assert.Equal(t, domain.CategoryTrip, change.Category)
	assert.Equal(t, "trip", change.Field)
	assert.NotEmpty(t, change.ID)

	trip, ok := change.NewValue.(domain.Trip)
	require.True(t, ok, "NewValue should carry the full trip payload")
	assert.Equal(t, "東京", trip.Destination)
	assert.Equal(t, "planning", trip.Status)

	// "5天" puts the end date four days after the start.
	start, err := time.Parse("2006-01-02", trip.StartDate)
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", trip.EndDate)
	require.NoError(t, err)
	assert.Equal(t, 4, int(end.Sub(start).Hours()/24))
}

func TestKeywordExtractor_CreateTrip_DefaultDestination(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("請儲存這個行程", service.Snapshot{})

	require.Len(t, got, 1)
	trip := got[0].NewValue.(domain.Trip)
	assert.Equal(t, "台北", trip.Destination)
	// No "<number>天" in text: default length is three days.
	start, _ := time.Parse("2006-01-02", trip.StartDate)
	end, _ := time.Parse("2006-01-02", trip.EndDate)
	assert.Equal(t, 2, int(end.Sub(start).Hours()/24))
}

func TestKeywordExtractor_CreateTrip_Itinerary(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("幫我建立大阪行程 第一天：逛心齋橋，吃章魚燒。第二天：環球影城", service.Snapshot{})

	require.Len(t, got, 1)
	trip := got[0].NewValue.(domain.Trip)
	require.Len(t, trip.Itinerary, 2)

	day1 := trip.Itinerary[0]
	assert.Equal(t, 1, day1.Day)
	assert.Equal(t, "day_1", day1.ID)
	require.Len(t, day1.Activities, 2)
	assert.Equal(t, "逛心齋橋", day1.Activities[0].Activity)
	assert.Equal(t, "吃章魚燒", day1.Activities[1].Activity)

	day2 := trip.Itinerary[1]
	assert.Equal(t, 2, day2.Day)
	require.Len(t, day2.Activities, 1)
	assert.Equal(t, "環球影城", day2.Activities[0].Activity)
}

// ---- modification detection ------------------------------------------------

func TestKeywordExtractor_EditTrip_CapturesTarget(t *testing.T) {
	x := service.NewKeywordExtractor()
	snap := service.Snapshot{
		CurrentTrip: &service.TripSummary{ID: "trip_abc", Destination: "東京"},
	}

	got := x.Extract("我想修改行程的目的地", snap)

	require.Len(t, got, 1)
	change := got[0]
	assert.Equal(t, domain.ChangeEdit, change.Type)
	assert.Equal(t, domain.CategoryTrip, change.Category)
	assert.Equal(t, "destination", change.Field)
	// The target is bound at extraction time, not at apply time.
	assert.Equal(t, "trip_abc", change.TargetID)
	assert.Equal(t, "東京", change.OldValue)
}

func TestKeywordExtractor_EditTrip_NoSelectedTrip(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("我想修改行程的目的地", service.Snapshot{})

	require.Len(t, got, 1)
	assert.Empty(t, got[0].TargetID)
	assert.Equal(t, "未知", got[0].OldValue)
}

func TestKeywordExtractor_AddExpenseAndNote(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("請新增一筆費用，另外新增一條筆記", service.Snapshot{})

	require.Len(t, got, 2)

	expense := got[0]
	assert.Equal(t, domain.ChangeAdd, expense.Type)
	assert.Equal(t, domain.CategoryExpense, expense.Category)
	payload, ok := expense.NewValue.(domain.Expense)
	require.True(t, ok)
	assert.Equal(t, 100.0, payload.Amount)
	assert.Equal(t, "餐飲", payload.Category)

	note := got[1]
	assert.Equal(t, domain.ChangeAdd, note.Type)
	assert.Equal(t, domain.CategoryNote, note.Category)
}

// ---- gating ----------------------------------------------------------------

func TestKeywordExtractor_NoIntent(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("東京的天氣如何？", service.Snapshot{})

	// Empty, never nil: the result is serialized straight into responses.
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestKeywordExtractor_VerbWithoutNoun(t *testing.T) {
	x := service.NewKeywordExtractor()

	// A create verb without a trip noun must not trigger creation.
	got := x.Extract("幫我儲存這張照片", service.Snapshot{})

	assert.Empty(t, got)
}

func TestKeywordExtractor_UniqueIDs(t *testing.T) {
	x := service.NewKeywordExtractor()

	got := x.Extract("幫我建立台北行程，順便新增費用和新增筆記", service.Snapshot{})

	require.GreaterOrEqual(t, len(got), 2)
	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c.ID], "descriptor ids must be unique within one extraction")
		seen[c.ID] = true
	}
}
