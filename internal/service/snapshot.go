// Package service contains the business logic for the AI travel planner:
// the suggestion extractor, the data modifier, the assistant conversation
// state, context snapshot building, expense categorization, and data
// portability. Services depend on the repo stores and on small interfaces,
// never on concrete transport or storage implementations.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

// maxSnapshotBytes is the serialized size above which the snapshot is
// compressed a second time before being sent to the AI backend.
const maxSnapshotBytes = 8000

// TripSummary is the lossily-compressed view of a trip included in the
// AI context snapshot.
type TripSummary struct {
	ID          string  `json:"id"`
	Destination string  `json:"destination"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
}

// ExpenseSummary is the compressed view of an expense.
type ExpenseSummary struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// NoteSummary is the compressed view of a note.
type NoteSummary struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// PackingSummary is the compressed view of a packing list item.
type PackingSummary struct {
	Item     string `json:"item"`
	Packed   bool   `json:"packed"`
	Category string `json:"category"`
}

// Snapshot is the size-bounded view of the user's current data sent with
// every chat message. The extractor also reads it to resolve the current
// trip at suggestion-creation time.
type Snapshot struct {
	CurrentTrip *TripSummary     `json:"currentTrip"`
	AllTrips    []TripSummary    `json:"allTrips,omitempty"`
	Expenses    []ExpenseSummary `json:"expenses"`
	Notes       []NoteSummary    `json:"notes"`
	TravelNotes []NoteSummary    `json:"travelNotes,omitempty"`
	PackingList []PackingSummary `json:"packingList"`
	CurrentPage string           `json:"currentPage"`
	Timestamp   string           `json:"timestamp"`
	Compressed  bool             `json:"compressed,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// SnapshotBuilder assembles Snapshots from the stores.
type SnapshotBuilder struct {
	stores *repo.Stores
	now    func() time.Time
}

// NewSnapshotBuilder constructs a SnapshotBuilder over the given stores.
func NewSnapshotBuilder(stores *repo.Stores) *SnapshotBuilder {
	return &SnapshotBuilder{stores: stores, now: time.Now}
}

// Build reads the current collections and produces a compressed snapshot.
// Storage errors do not fail the chat: the snapshot degrades to an error
// marker so the AI call can still proceed.
func (b *SnapshotBuilder) Build(ctx context.Context, currentPage string) Snapshot {
	trips, err := b.stores.Trips.Load(ctx)
	if err != nil {
		return Snapshot{
			Error:       "Failed to load travel data",
			CurrentPage: currentPage,
			Timestamp:   b.now().UTC().Format(time.RFC3339),
		}
	}

	selectedID, _ := b.stores.SelectedTrip.Load(ctx)
	expenses, _ := b.stores.Expenses.Load(ctx)
	notes, _ := b.stores.Notes.Load(ctx)
	travelNotes, _ := b.stores.TravelNotes.Load(ctx)
	packingLists, _ := b.stores.PackingLists.Load(ctx)

	snap := Snapshot{
		AllTrips:    lo.Map(lastN(trips, 5), func(t domain.Trip, _ int) TripSummary { return compressTrip(t) }),
		Expenses:    lo.Map(lastN(expenses[selectedID], 10), func(e domain.Expense, _ int) ExpenseSummary { return compressExpense(e) }),
		Notes:       lo.Map(lastN(notes, 5), func(n domain.Note, _ int) NoteSummary { return compressNote(n) }),
		TravelNotes: lo.Map(lastN(travelNotes[selectedID], 5), func(n domain.Note, _ int) NoteSummary { return compressNote(n) }),
		PackingList: lo.Map(firstN(packingLists[selectedID], 20), func(p domain.PackingItem, _ int) PackingSummary { return compressPacking(p) }),
		CurrentPage: currentPage,
		Timestamp:   b.now().UTC().Format(time.RFC3339),
	}

	if current, ok := lo.Find(trips, func(t domain.Trip) bool { return t.ID == selectedID }); ok {
		s := compressTrip(current)
		snap.CurrentTrip = &s
	}

	return optimizeSnapshotSize(snap)
}

// optimizeSnapshotSize applies a second compression stage when the snapshot
// serializes above maxSnapshotBytes: fewer expenses and notes, a shorter
// packing list, and the trip list dropped entirely.
func optimizeSnapshotSize(snap Snapshot) Snapshot {
	raw, err := json.Marshal(snap)
	if err != nil || len(raw) <= maxSnapshotBytes {
		return snap
	}

	return Snapshot{
		CurrentTrip: snap.CurrentTrip,
		Expenses:    lastN(snap.Expenses, 5),
		Notes:       lastN(snap.Notes, 3),
		TravelNotes: lastN(snap.TravelNotes, 3),
		PackingList: firstN(snap.PackingList, 10),
		CurrentPage: snap.CurrentPage,
		Timestamp:   snap.Timestamp,
		Compressed:  true,
	}
}

func compressTrip(t domain.Trip) TripSummary {
	return TripSummary{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Budget:      t.Budget,
		Status:      t.Status,
	}
}

func compressExpense(e domain.Expense) ExpenseSummary {
	return ExpenseSummary{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: truncate(e.Description, 50),
		Date:        e.Date,
	}
}

func compressNote(n domain.Note) NoteSummary {
	return NoteSummary{
		Title:    truncate(n.Title, 30),
		Content:  truncate(n.Content, 100),
		Category: n.Category,
		Date:     n.Date,
	}
}

func compressPacking(p domain.PackingItem) PackingSummary {
	return PackingSummary{
		Item:     truncate(p.Item, 30),
		Packed:   p.Packed,
		Category: p.Category,
	}
}

// truncate limits s to max runes. Rune-based so CJK text is never split
// mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// lastN returns the trailing n elements of items (all of them when shorter).
func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// firstN returns the leading n elements of items (all of them when shorter).
func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
