package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

// TripService is the direct CRUD surface for trips, used by the trip pages.
// The AI change pipeline goes through Modifier instead; both write the same
// trips document.
type TripService struct {
	stores *repo.Stores
	log    *slog.Logger
	now    func() time.Time
}

// NewTripService wires a TripService.
func NewTripService(stores *repo.Stores, log *slog.Logger) *TripService {
	return &TripService{stores: stores, log: log, now: time.Now}
}

// List returns all trips.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.stores.Trips.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, nil
}

// Get returns the trip with the given id, or domain.ErrNotFound.
func (s *TripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	trips, err := s.stores.Trips.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Get: %w", err)
	}
	trip, ok := lo.Find(trips, func(t domain.Trip) bool { return t.ID == id })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &trip, nil
}

// Create validates and stores a new trip, assigns its id and timestamps, and
// makes it the selected trip.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (*domain.Trip, error) {
	if strings.TrimSpace(trip.Destination) == "" {
		return nil, fmt.Errorf("%w: 目的地不能為空", domain.ErrValidation)
	}

	now := s.now().UTC().Format(time.RFC3339)
	trip.ID = domain.NewID("trip")
	trip.CreatedAt = now
	trip.UpdatedAt = now
	if trip.Status == "" {
		trip.Status = "planning"
	}

	_, err := s.stores.Trips.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		return append(trips, trip), nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Create: %w", err)
	}

	if _, err := s.stores.SelectedTrip.Update(ctx, func(string) (string, error) {
		return trip.ID, nil
	}); err != nil {
		s.log.WarnContext(ctx, "select created trip", "tripId", trip.ID, "error", err)
	}
	return &trip, nil
}

// Update replaces the stored trip with the given one, preserving id and
// CreatedAt and stamping UpdatedAt. Returns domain.ErrNotFound when no trip
// has that id.
func (s *TripService) Update(ctx context.Context, id string, update domain.Trip) (*domain.Trip, error) {
	var updated domain.Trip
	_, err := s.stores.Trips.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		idx := lo.IndexOf(lo.Map(trips, func(t domain.Trip, _ int) string { return t.ID }), id)
		if idx < 0 {
			return trips, domain.ErrNotFound
		}
		update.ID = id
		update.CreatedAt = trips[idx].CreatedAt
		update.UpdatedAt = s.now().UTC().Format(time.RFC3339)
		trips[idx] = update
		updated = update
		return trips, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return &updated, nil
}

// Delete removes the trip with the given id. Satellite collections keyed by
// the id are left in place so their data can still be exported. When the
// deleted trip was selected, the selection is cleared.
func (s *TripService) Delete(ctx context.Context, id string) error {
	_, err := s.stores.Trips.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		kept := lo.Filter(trips, func(t domain.Trip, _ int) bool { return t.ID != id })
		if len(kept) == len(trips) {
			return trips, domain.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	if _, err := s.stores.SelectedTrip.Update(ctx, func(selected string) (string, error) {
		if selected == id {
			return "", nil
		}
		return selected, nil
	}); err != nil {
		s.log.WarnContext(ctx, "clear selection after delete", "tripId", id, "error", err)
	}
	return nil
}

// Selected returns the currently selected trip id, "" when none.
func (s *TripService) Selected(ctx context.Context) (string, error) {
	id, err := s.stores.SelectedTrip.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("service.TripService.Selected: %w", err)
	}
	return id, nil
}

// Select marks the trip with the given id as selected, verifying it exists.
func (s *TripService) Select(ctx context.Context, id string) error {
	trips, err := s.stores.Trips.Load(ctx)
	if err != nil {
		return fmt.Errorf("service.TripService.Select: %w", err)
	}
	if _, ok := lo.Find(trips, func(t domain.Trip) bool { return t.ID == id }); !ok {
		return domain.ErrNotFound
	}
	if _, err := s.stores.SelectedTrip.Update(ctx, func(string) (string, error) {
		return id, nil
	}); err != nil {
		return fmt.Errorf("service.TripService.Select: %w", err)
	}
	return nil
}
