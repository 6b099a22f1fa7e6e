package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/handler"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	list     func(ctx context.Context) ([]domain.Trip, error)
	get      func(ctx context.Context, id string) (*domain.Trip, error)
	create   func(ctx context.Context, trip domain.Trip) (*domain.Trip, error)
	update   func(ctx context.Context, id string, trip domain.Trip) (*domain.Trip, error)
	delete   func(ctx context.Context, id string) error
	selected func(ctx context.Context) (string, error)
	sel      func(ctx context.Context, id string) error
}

func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripServicer) Get(ctx context.Context, id string) (*domain.Trip, error) {
	return m.get(ctx, id)
}
func (m *mockTripServicer) Create(ctx context.Context, trip domain.Trip) (*domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripServicer) Update(ctx context.Context, id string, trip domain.Trip) (*domain.Trip, error) {
	return m.update(ctx, id, trip)
}
func (m *mockTripServicer) Delete(ctx context.Context, id string) error { return m.delete(ctx, id) }
func (m *mockTripServicer) Selected(ctx context.Context) (string, error) { return m.selected(ctx) }
func (m *mockTripServicer) Select(ctx context.Context, id string) error  { return m.sel(ctx, id) }

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

func tripRouter(svc handler.TripServicer) http.Handler {
	return newRouter(handler.NewServer(nil, nil, nil, nil, nil, svc, nil))
}

func TestListTrips_EmptyIsJSONArray(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		list: func(context.Context) ([]domain.Trip, error) { return nil, nil },
	})

	rec := doJSON(t, h, http.MethodGet, "/api/trips", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	// A nil slice must serialize as [], not null.
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetTrip(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		get: func(_ context.Context, id string) (*domain.Trip, error) {
			assert.Equal(t, "trip_a", id)
			return &domain.Trip{ID: "trip_a", Destination: "東京"}, nil
		},
	})

	rec := doJSON(t, h, http.MethodGet, "/api/trips/trip_a", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var trip domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	assert.Equal(t, "東京", trip.Destination)
}

func TestGetTrip_NotFound(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		get: func(context.Context, string) (*domain.Trip, error) { return nil, domain.ErrNotFound },
	})

	rec := doJSON(t, h, http.MethodGet, "/api/trips/trip_nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCreateTrip(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		create: func(_ context.Context, trip domain.Trip) (*domain.Trip, error) {
			trip.ID = "trip_new"
			return &trip, nil
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/trips", domain.Trip{Destination: "大阪"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var trip domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	assert.Equal(t, "trip_new", trip.ID)
}

func TestCreateTrip_ValidationError(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		create: func(context.Context, domain.Trip) (*domain.Trip, error) {
			return nil, domain.ErrValidation
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/api/trips", domain.Trip{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestDeleteTrip(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		delete: func(_ context.Context, id string) error {
			assert.Equal(t, "trip_a", id)
			return nil
		},
	})

	rec := doJSON(t, h, http.MethodDelete, "/api/trips/trip_a", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSelectedTrip_GetAndPut(t *testing.T) {
	var selectedID string
	h := tripRouter(&mockTripServicer{
		selected: func(context.Context) (string, error) { return selectedID, nil },
		sel:      func(_ context.Context, id string) error { selectedID = id; return nil },
	})

	rec := doJSON(t, h, http.MethodGet, "/api/trips/selected", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tripId":""}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPut, "/api/trips/selected", map[string]string{"tripId": "trip_a"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/trips/selected", nil)
	assert.JSONEq(t, `{"tripId":"trip_a"}`, rec.Body.String())
}

func TestPutSelectedTrip_UnknownTrip(t *testing.T) {
	h := tripRouter(&mockTripServicer{
		sel: func(context.Context, string) error { return domain.ErrNotFound },
	})

	rec := doJSON(t, h, http.MethodPut, "/api/trips/selected", map[string]string{"tripId": "trip_nope"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
