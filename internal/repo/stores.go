package repo

import "github.com/Hodaren2022/aitravel-backend/internal/domain"

// Stores bundles one typed Document per collection. Everything downstream
// (modifier, assistant, export) receives this struct instead of reaching for
// the KV directly, so storage is an explicit dependency and tests can swap
// in a MemoryKV.
type Stores struct {
	// Trips is the flat list of all trips.
	Trips *Document[[]domain.Trip]

	// Per-trip satellite collections, each a map of trip id → ordered list.
	Expenses     *Document[map[string][]domain.Expense]
	PackingLists *Document[map[string][]domain.PackingItem]
	TravelNotes  *Document[map[string][]domain.Note]
	TravelTips   *Document[map[string][]domain.Note]
	Hotels       *Document[map[string][]domain.Hotel]
	Itineraries  *Document[map[string][]domain.ItineraryItem]

	// Notes is the global, non-trip-scoped notes list.
	Notes *Document[[]domain.Note]

	// SelectedTrip holds the id of the currently selected trip ("" when none).
	// The modifier's trip fallback and every per-trip category handler read it.
	SelectedTrip *Document[string]

	// Messages is the persisted assistant conversation history.
	Messages *Document[[]domain.Message]
}

// NewStores wires every typed document onto the given KV.
func NewStores(kv KV) *Stores {
	return &Stores{
		Trips:        NewDocument[[]domain.Trip](kv, KeyTrips),
		Expenses:     NewDocument[map[string][]domain.Expense](kv, KeyExpenses),
		PackingLists: NewDocument[map[string][]domain.PackingItem](kv, KeyPackingLists),
		TravelNotes:  NewDocument[map[string][]domain.Note](kv, KeyTravelNotes),
		TravelTips:   NewDocument[map[string][]domain.Note](kv, KeyTravelTips),
		Hotels:       NewDocument[map[string][]domain.Hotel](kv, KeyHotels),
		Itineraries:  NewDocument[map[string][]domain.ItineraryItem](kv, KeyItineraries),
		Notes:        NewDocument[[]domain.Note](kv, KeyNotes),
		SelectedTrip: NewDocument[string](kv, KeySelectedTrip),
		Messages:     NewDocument[[]domain.Message](kv, KeyMessages),
	}
}
