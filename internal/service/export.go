package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

const exportVersion = 2

// ExportService produces the grouped export document and merges imports
// back in. Import is additive: entries whose ids already exist are kept as
// they are, new ids are appended.
type ExportService struct {
	stores     *repo.Stores
	log        *slog.Logger
	appVersion string
	now        func() time.Time
}

// NewExportService wires an ExportService.
func NewExportService(stores *repo.Stores, log *slog.Logger, appVersion string) *ExportService {
	return &ExportService{stores: stores, log: log, appVersion: appVersion, now: time.Now}
}

// Export assembles the full grouped document. Trip ids referenced only by
// satellite collections still get a bucket, with Trip left nil, so orphaned
// data survives the round trip.
func (s *ExportService) Export(ctx context.Context) (*domain.GroupedExport, error) {
	trips, err := s.stores.Trips.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	expenses, err := s.stores.Expenses.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	packing, err := s.stores.PackingLists.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	travelNotes, err := s.stores.TravelNotes.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	travelTips, err := s.stores.TravelTips.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	hotels, err := s.stores.Hotels.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	itineraries, err := s.stores.Itineraries.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	notes, err := s.stores.Notes.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	byTrip := make(map[string]domain.TripBundle)
	bucket := func(tripID string) domain.TripBundle {
		return byTrip[tripID]
	}

	for i := range trips {
		b := bucket(trips[i].ID)
		b.Trip = &trips[i]
		byTrip[trips[i].ID] = b
	}
	for tripID, list := range expenses {
		b := bucket(tripID)
		b.Expenses = list
		byTrip[tripID] = b
	}
	for tripID, list := range packing {
		b := bucket(tripID)
		b.PackingLists = list
		byTrip[tripID] = b
	}
	for tripID, list := range travelNotes {
		b := bucket(tripID)
		b.TravelNotes = list
		byTrip[tripID] = b
	}
	for tripID, list := range travelTips {
		b := bucket(tripID)
		b.TravelTips = list
		byTrip[tripID] = b
	}
	for tripID, list := range hotels {
		b := bucket(tripID)
		b.Hotels = list
		byTrip[tripID] = b
	}
	for tripID, list := range itineraries {
		b := bucket(tripID)
		b.Itineraries = list
		byTrip[tripID] = b
	}

	return &domain.GroupedExport{
		Meta: domain.ExportMeta{
			Version:    exportVersion,
			ExportedAt: s.now().UTC().Format(time.RFC3339),
			AppVersion: s.appVersion,
		},
		Trips: trips,
		Grouped: domain.GroupedData{
			ByTripID:   byTrip,
			Unassigned: domain.Unassigned{Notes: notes},
		},
	}, nil
}

// ImportResult counts what an import actually added per collection.
type ImportResult struct {
	Trips        int `json:"trips"`
	Expenses     int `json:"expenses"`
	PackingLists int `json:"packingLists"`
	TravelNotes  int `json:"travelNotes"`
	TravelTips   int `json:"travelTips"`
	Hotels       int `json:"hotels"`
	Itineraries  int `json:"itineraries"`
	Notes        int `json:"notes"`
}

// Import merges doc into the current data. Every collection is merged by id
// union with existing entries winning; collections that fail to persist are
// reported together while the rest still land.
func (s *ExportService) Import(ctx context.Context, doc *domain.GroupedExport) (*ImportResult, error) {
	result := &ImportResult{}
	var errs error

	_, err := s.stores.Trips.Update(ctx, func(existing []domain.Trip) ([]domain.Trip, error) {
		merged, added := mergeByID(existing, doc.Trips, func(t domain.Trip) string { return t.ID })
		result.Trips = added
		return merged, nil
	})
	errs = multierr.Append(errs, err)

	incoming := collectBundles(doc)

	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.Expenses, incoming.expenses,
		func(e domain.Expense) string { return e.ID }, &result.Expenses))
	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.PackingLists, incoming.packing,
		func(p domain.PackingItem) string { return p.ID }, &result.PackingLists))
	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.TravelNotes, incoming.travelNotes,
		func(n domain.Note) string { return n.ID }, &result.TravelNotes))
	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.TravelTips, incoming.travelTips,
		func(n domain.Note) string { return n.ID }, &result.TravelTips))
	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.Hotels, incoming.hotels,
		func(h domain.Hotel) string { return h.ID }, &result.Hotels))
	errs = multierr.Append(errs, mergeGrouped(ctx, s.stores.Itineraries, incoming.itineraries,
		func(i domain.ItineraryItem) string { return i.ID }, &result.Itineraries))

	_, err = s.stores.Notes.Update(ctx, func(existing []domain.Note) ([]domain.Note, error) {
		merged, added := mergeByID(existing, doc.Grouped.Unassigned.Notes, func(n domain.Note) string { return n.ID })
		result.Notes = added
		return merged, nil
	})
	errs = multierr.Append(errs, err)

	if errs != nil {
		return result, fmt.Errorf("service.ExportService.Import: %w", errs)
	}
	return result, nil
}

// bundles regroups an export document back into per-collection maps.
type bundles struct {
	expenses    map[string][]domain.Expense
	packing     map[string][]domain.PackingItem
	travelNotes map[string][]domain.Note
	travelTips  map[string][]domain.Note
	hotels      map[string][]domain.Hotel
	itineraries map[string][]domain.ItineraryItem
}

func collectBundles(doc *domain.GroupedExport) bundles {
	b := bundles{
		expenses:    map[string][]domain.Expense{},
		packing:     map[string][]domain.PackingItem{},
		travelNotes: map[string][]domain.Note{},
		travelTips:  map[string][]domain.Note{},
		hotels:      map[string][]domain.Hotel{},
		itineraries: map[string][]domain.ItineraryItem{},
	}
	for tripID, bundle := range doc.Grouped.ByTripID {
		if len(bundle.Expenses) > 0 {
			b.expenses[tripID] = bundle.Expenses
		}
		if len(bundle.PackingLists) > 0 {
			b.packing[tripID] = bundle.PackingLists
		}
		if len(bundle.TravelNotes) > 0 {
			b.travelNotes[tripID] = bundle.TravelNotes
		}
		if len(bundle.TravelTips) > 0 {
			b.travelTips[tripID] = bundle.TravelTips
		}
		if len(bundle.Hotels) > 0 {
			b.hotels[tripID] = bundle.Hotels
		}
		if len(bundle.Itineraries) > 0 {
			b.itineraries[tripID] = bundle.Itineraries
		}
	}
	return b
}

// mergeGrouped merges one per-trip collection, counting entries added across
// all trips.
func mergeGrouped[T any](ctx context.Context, doc *repo.Document[map[string][]T], incoming map[string][]T, id func(T) string, added *int) error {
	if len(incoming) == 0 {
		return nil
	}
	_, err := doc.Update(ctx, func(existing map[string][]T) (map[string][]T, error) {
		if existing == nil {
			existing = map[string][]T{}
		}
		for tripID, list := range incoming {
			merged, n := mergeByID(existing[tripID], list, id)
			existing[tripID] = merged
			*added += n
		}
		return existing, nil
	})
	return err
}

// mergeByID appends entries from incoming whose id is not already present in
// existing, returning the merged list and the number added.
func mergeByID[T any](existing, incoming []T, id func(T) string) ([]T, int) {
	seen := lo.SliceToMap(existing, func(item T) (string, struct{}) {
		return id(item), struct{}{}
	})
	added := 0
	for _, item := range incoming {
		if _, ok := seen[id(item)]; ok {
			continue
		}
		seen[id(item)] = struct{}{}
		existing = append(existing, item)
		added++
	}
	return existing, added
}
