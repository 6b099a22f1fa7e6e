package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

// ChangeObserver is notified synchronously after every successful collection
// write, with the document key that changed. Registration happens once at
// wiring time; the callback must be fast and must not call back into the
// modifier.
type ChangeObserver func(key string)

// Modifier applies approved change descriptors to the persisted collections.
//
// Each change is dispatched by category to a handler that reads its whole
// collection, performs the single mutation, and writes the whole collection
// back. Failures are isolated per change: one bad descriptor never aborts or
// rolls back its siblings, and nothing is ever thrown past the batch
// boundary — ApplyChanges always completes and reports partial success.
type Modifier struct {
	stores *repo.Stores
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	observers []ChangeObserver
	history   []domain.AppliedChange
}

// NewModifier constructs a Modifier over the given stores.
func NewModifier(stores *repo.Stores, log *slog.Logger) *Modifier {
	return &Modifier{stores: stores, log: log, now: time.Now}
}

// OnDataChanged registers an observer for data-changed signals.
func (m *Modifier) OnDataChanged(fn ChangeObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// ApplyChanges applies the batch in input order. The returned BatchResult
// accounts for every input change exactly once, in Results or in Errors.
func (m *Modifier) ApplyChanges(ctx context.Context, changes []domain.ChangeDescriptor) domain.BatchResult {
	batch := domain.BatchResult{
		Results: []domain.ChangeResult{},
		Errors:  []domain.ChangeError{},
	}

	for _, change := range changes {
		result, err := m.applyChange(ctx, change)
		if err != nil {
			m.log.WarnContext(ctx, "change failed",
				"change_id", change.ID, "category", change.Category, "error", err)
			batch.Errors = append(batch.Errors, domain.ChangeError{
				ChangeID: change.ID,
				Err:      modificationMessage(err),
			})
			m.record(change, false, modificationMessage(err))
			continue
		}

		batch.Results = append(batch.Results, domain.ChangeResult{
			ChangeID: change.ID,
			Success:  true,
			Result:   result,
		})
		m.record(change, true, "")
	}

	return batch
}

// History returns a copy of every change applied so far, successes and
// failures alike, in apply order.
func (m *Modifier) History() []domain.AppliedChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AppliedChange, len(m.history))
	copy(out, m.history)
	return out
}

// ClearHistory discards the change history.
func (m *Modifier) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

// applyChange dispatches one change to its category handler.
func (m *Modifier) applyChange(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	switch change.Category {
	case domain.CategoryTrip:
		return m.modifyTrips(ctx, change)
	case domain.CategoryExpense:
		return m.modifyExpenses(ctx, change)
	case domain.CategoryNote:
		return m.modifyNotes(ctx, change)
	case domain.CategoryPacking:
		return m.modifyPacking(ctx, change)
	case domain.CategoryHotel:
		return m.modifyHotels(ctx, change)
	case domain.CategoryItinerary:
		return m.modifyItineraries(ctx, change)
	default:
		return nil, domain.NewModificationError(change.ID,
			fmt.Sprintf("不支持的數據類型: %s", change.Category))
	}
}

// ---- trip handler ----------------------------------------------------------

func (m *Modifier) modifyTrips(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	switch change.Type {
	case domain.ChangeCreate:
		return m.createTrip(ctx, change)
	case domain.ChangeEdit, domain.ChangeAdd, domain.ChangeDelete:
		return m.mutateTrip(ctx, change)
	default:
		return nil, domain.NewModificationError(change.ID,
			fmt.Sprintf("行程不支持的變更類型: %s", change.Type))
	}
}

func (m *Modifier) createTrip(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	trip, err := decodeValue[domain.Trip](change.NewValue)
	if err != nil {
		return nil, domain.NewModificationError(change.ID, "行程資料格式不正確")
	}

	if trip.ID == "" {
		trip.ID = domain.NewID("trip")
	}
	nowStr := m.now().UTC().Format(time.RFC3339)
	trip.CreatedAt = nowStr
	trip.UpdatedAt = nowStr

	if _, err := m.stores.Trips.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		return append(trips, trip), nil
	}); err != nil {
		return nil, err
	}

	// A freshly created trip becomes the current selection, so follow-up
	// suggestions about expenses or packing land on it.
	if err := m.stores.SelectedTrip.Store(ctx, trip.ID); err != nil {
		return nil, err
	}

	m.notify(repo.KeyTrips)
	return trip, nil
}

func (m *Modifier) mutateTrip(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	targetID, err := m.resolveTripTarget(ctx, change.TargetID)
	if err != nil {
		return nil, domain.NewModificationError(change.ID, err.Error())
	}

	var mutated domain.Trip
	_, err = m.stores.Trips.Update(ctx, func(trips []domain.Trip) ([]domain.Trip, error) {
		idx := -1
		for i := range trips {
			if trips[i].ID == targetID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.NewModificationError(change.ID, domain.ErrTripNotFound.Error())
		}

		var mutErr error
		switch change.Type {
		case domain.ChangeEdit:
			mutErr = setTripField(&trips[idx], change.Field, change.NewValue)
		case domain.ChangeAdd:
			mutErr = addToTrip(&trips[idx], change.Field, change.NewValue)
		case domain.ChangeDelete:
			mutErr = deleteFromTrip(&trips[idx], change.Field, change.NewValue)
		}
		if mutErr != nil {
			return nil, domain.NewModificationError(change.ID, mutErr.Error())
		}

		trips[idx].UpdatedAt = m.now().UTC().Format(time.RFC3339)
		mutated = trips[idx]
		return trips, nil
	})
	if err != nil {
		return nil, err
	}

	m.notify(repo.KeyTrips)
	return mutated, nil
}

// resolveTripTarget returns the explicit target id, or falls back to the
// currently selected trip. The fallback only engages when the suggestion was
// produced with no trip selected — descriptors capture the current trip id
// at extraction time.
func (m *Modifier) resolveTripTarget(ctx context.Context, targetID string) (string, error) {
	if targetID != "" {
		return targetID, nil
	}
	selected, err := m.stores.SelectedTrip.Load(ctx)
	if err != nil {
		return "", err
	}
	if selected == "" {
		return "", domain.ErrTripNotFound
	}
	return selected, nil
}

// setTripField performs a whole-value replace of one trip attribute.
// The field set is closed; an unknown field is a per-change error rather
// than a silently dropped write.
func setTripField(t *domain.Trip, field string, value any) error {
	switch field {
	case "destination":
		return assignString(&t.Destination, value)
	case "startDate":
		return assignString(&t.StartDate, value)
	case "endDate":
		return assignString(&t.EndDate, value)
	case "status":
		return assignString(&t.Status, value)
	case "description":
		return assignString(&t.Description, value)
	case "budget":
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("budget 需要數字")
		}
		t.Budget = f
		return nil
	case "itinerary":
		days, err := decodeValue[[]domain.ItineraryDay](value)
		if err != nil {
			return fmt.Errorf("itinerary 資料格式不正確")
		}
		t.Itinerary = days
		return nil
	case "flights":
		flights, err := decodeValue[[]domain.Flight](value)
		if err != nil {
			return fmt.Errorf("flights 資料格式不正確")
		}
		t.Flights = flights
		return nil
	case "hotels":
		hotels, err := decodeValue[[]domain.TripHotel](value)
		if err != nil {
			return fmt.Errorf("hotels 資料格式不正確")
		}
		t.Hotels = hotels
		return nil
	default:
		return fmt.Errorf("未知的行程欄位: %s", field)
	}
}

// addToTrip appends to the flights/hotels sub-collections; any other field
// behaves like a whole-value replace, matching edit.
func addToTrip(t *domain.Trip, field string, value any) error {
	switch field {
	case "flights":
		flight, err := decodeValue[domain.Flight](value)
		if err != nil {
			return fmt.Errorf("flights 資料格式不正確")
		}
		t.Flights = append(t.Flights, flight)
		return nil
	case "hotels":
		hotel, err := decodeValue[domain.TripHotel](value)
		if err != nil {
			return fmt.Errorf("hotels 資料格式不正確")
		}
		t.Hotels = append(t.Hotels, hotel)
		return nil
	default:
		return setTripField(t, field, value)
	}
}

// deleteFromTrip removes a flights/hotels element by id (carried in the
// change's newValue); any other field is reset to its zero value.
func deleteFromTrip(t *domain.Trip, field string, value any) error {
	switch field {
	case "flights":
		id, _ := value.(string)
		t.Flights = removeByID(t.Flights, id, func(f domain.Flight) string { return f.ID })
		return nil
	case "hotels":
		id, _ := value.(string)
		t.Hotels = removeByID(t.Hotels, id, func(h domain.TripHotel) string { return h.ID })
		return nil
	case "destination":
		t.Destination = ""
	case "startDate":
		t.StartDate = ""
	case "endDate":
		t.EndDate = ""
	case "status":
		t.Status = ""
	case "description":
		t.Description = ""
	case "budget":
		t.Budget = 0
	case "itinerary":
		t.Itinerary = nil
	default:
		return fmt.Errorf("未知的行程欄位: %s", field)
	}
	return nil
}

// ---- satellite handlers ----------------------------------------------------
//
// The four per-trip collections share one shape: a map of trip id → list,
// mutated under the currently selected trip. Edits and deletes against an id
// that is not in the list are silent no-ops, as in the original behavior.

func (m *Modifier) modifyExpenses(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	return mutatePerTrip(ctx, m, m.stores.Expenses, repo.KeyExpenses, change,
		func(e *domain.Expense) *string { return &e.ID },
		func(e *domain.Expense, now string) { e.CreatedAt = now },
		setExpenseField)
}

func (m *Modifier) modifyPacking(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	return mutatePerTrip(ctx, m, m.stores.PackingLists, repo.KeyPackingLists, change,
		func(p *domain.PackingItem) *string { return &p.ID },
		func(p *domain.PackingItem, now string) { p.CreatedAt = now },
		setPackingField)
}

func (m *Modifier) modifyHotels(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	return mutatePerTrip(ctx, m, m.stores.Hotels, repo.KeyHotels, change,
		func(h *domain.Hotel) *string { return &h.ID },
		func(h *domain.Hotel, now string) { h.CreatedAt = now },
		setHotelField)
}

func (m *Modifier) modifyItineraries(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	return mutatePerTrip(ctx, m, m.stores.Itineraries, repo.KeyItineraries, change,
		func(i *domain.ItineraryItem) *string { return &i.ID },
		func(i *domain.ItineraryItem, now string) { i.CreatedAt = now },
		setItineraryField)
}

// mutatePerTrip is the shared add/edit/delete routine for the per-trip map
// collections.
func mutatePerTrip[T any](
	ctx context.Context,
	m *Modifier,
	doc *repo.Document[map[string][]T],
	key string,
	change domain.ChangeDescriptor,
	idOf func(*T) *string,
	stamp func(*T, string),
	setField func(*T, string, any) error,
) (any, error) {
	selected, err := m.stores.SelectedTrip.Load(ctx)
	if err != nil {
		return nil, err
	}
	if selected == "" {
		return nil, domain.NewModificationError(change.ID, domain.ErrNoSelectedTrip.Error())
	}

	var mutated []T
	_, err = doc.Update(ctx, func(byTrip map[string][]T) (map[string][]T, error) {
		if byTrip == nil {
			byTrip = make(map[string][]T)
		}
		list := byTrip[selected]

		switch change.Type {
		case domain.ChangeAdd:
			item, decodeErr := decodeValue[T](change.NewValue)
			if decodeErr != nil {
				return nil, domain.NewModificationError(change.ID, "資料格式不正確")
			}
			if id := idOf(&item); *id == "" {
				*id = domain.NewID(string(change.Category))
			}
			stamp(&item, m.now().UTC().Format(time.RFC3339))
			list = append(list, item)

		case domain.ChangeEdit:
			for i := range list {
				if *idOf(&list[i]) == change.TargetID {
					if setErr := setField(&list[i], change.Field, change.NewValue); setErr != nil {
						return nil, domain.NewModificationError(change.ID, setErr.Error())
					}
					break
				}
			}

		case domain.ChangeDelete:
			list = removeByID(list, change.TargetID, func(item T) string { return *idOf(&item) })

		default:
			return nil, domain.NewModificationError(change.ID,
				fmt.Sprintf("不支持的變更類型: %s", change.Type))
		}

		byTrip[selected] = list
		mutated = list
		return byTrip, nil
	})
	if err != nil {
		return nil, err
	}

	m.notify(key)
	return mutated, nil
}

// ---- note handler ----------------------------------------------------------

// modifyNotes mutates the global notes list; notes are not trip-scoped so no
// selection is required.
func (m *Modifier) modifyNotes(ctx context.Context, change domain.ChangeDescriptor) (any, error) {
	var mutated []domain.Note
	_, err := m.stores.Notes.Update(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		switch change.Type {
		case domain.ChangeAdd:
			note, decodeErr := decodeValue[domain.Note](change.NewValue)
			if decodeErr != nil {
				return nil, domain.NewModificationError(change.ID, "筆記資料格式不正確")
			}
			if note.ID == "" {
				note.ID = domain.NewID("note")
			}
			note.CreatedAt = m.now().UTC().Format(time.RFC3339)
			notes = append(notes, note)

		case domain.ChangeEdit:
			for i := range notes {
				if notes[i].ID == change.TargetID {
					if setErr := setNoteField(&notes[i], change.Field, change.NewValue); setErr != nil {
						return nil, domain.NewModificationError(change.ID, setErr.Error())
					}
					break
				}
			}

		case domain.ChangeDelete:
			notes = removeByID(notes, change.TargetID, func(n domain.Note) string { return n.ID })

		default:
			return nil, domain.NewModificationError(change.ID,
				fmt.Sprintf("不支持的變更類型: %s", change.Type))
		}

		mutated = notes
		return notes, nil
	})
	if err != nil {
		return nil, err
	}

	m.notify(repo.KeyNotes)
	return mutated, nil
}

// ---- field setters ---------------------------------------------------------

func setExpenseField(e *domain.Expense, field string, value any) error {
	switch field {
	case "amount":
		f, ok := value.(float64)
		if !ok {
			return fmt.Errorf("amount 需要數字")
		}
		e.Amount = f
		return nil
	case "description":
		return assignString(&e.Description, value)
	case "category":
		return assignString(&e.Category, value)
	case "date":
		return assignString(&e.Date, value)
	default:
		return fmt.Errorf("未知的費用欄位: %s", field)
	}
}

func setNoteField(n *domain.Note, field string, value any) error {
	switch field {
	case "title":
		return assignString(&n.Title, value)
	case "content":
		return assignString(&n.Content, value)
	case "category":
		return assignString(&n.Category, value)
	case "date":
		return assignString(&n.Date, value)
	default:
		return fmt.Errorf("未知的筆記欄位: %s", field)
	}
}

func setPackingField(p *domain.PackingItem, field string, value any) error {
	switch field {
	case "item":
		return assignString(&p.Item, value)
	case "packed":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("packed 需要布林值")
		}
		p.Packed = b
		return nil
	case "category":
		return assignString(&p.Category, value)
	default:
		return fmt.Errorf("未知的打包清單欄位: %s", field)
	}
}

func setHotelField(h *domain.Hotel, field string, value any) error {
	switch field {
	case "name":
		return assignString(&h.Name, value)
	case "address":
		return assignString(&h.Address, value)
	case "checkIn":
		return assignString(&h.CheckIn, value)
	case "checkOut":
		return assignString(&h.CheckOut, value)
	case "confirmation":
		return assignString(&h.Confirmation, value)
	case "notes":
		return assignString(&h.Notes, value)
	default:
		return fmt.Errorf("未知的旅館欄位: %s", field)
	}
}

func setItineraryField(i *domain.ItineraryItem, field string, value any) error {
	switch field {
	case "date":
		return assignString(&i.Date, value)
	case "time":
		return assignString(&i.Time, value)
	case "activity":
		return assignString(&i.Activity, value)
	case "location":
		return assignString(&i.Location, value)
	case "notes":
		return assignString(&i.Notes, value)
	default:
		return fmt.Errorf("未知的行程安排欄位: %s", field)
	}
}

// ---- shared helpers --------------------------------------------------------

// decodeValue converts a change's loosely-typed payload (a map decoded from
// JSON, or an already-typed struct built in-process) into T by a marshal
// round-trip. DisallowUnknownFields is deliberately not used: extra keys are
// ignored, missing keys default — the extractor never fails on partial data
// and neither does the decode.
func decodeValue[T any](value any) (T, error) {
	var out T
	raw, err := json.Marshal(value)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func assignString(dst *string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("需要文字值")
	}
	*dst = s
	return nil
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	if id == "" {
		return items
	}
	for i, item := range items {
		if idOf(item) == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// modificationMessage extracts the human-readable message from a per-change
// error, stripping the change-id suffix ModificationError adds.
func modificationMessage(err error) string {
	var merr *domain.ModificationError
	if errors.As(err, &merr) {
		return merr.Message
	}
	return err.Error()
}

func (m *Modifier) notify(key string) {
	m.mu.Lock()
	observers := make([]ChangeObserver, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(key)
	}
}

func (m *Modifier) record(change domain.ChangeDescriptor, success bool, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, domain.AppliedChange{
		ChangeDescriptor: change,
		AppliedAt:        m.now().UTC().Format(time.RFC3339),
		Success:          success,
		Error:            errMsg,
	})
}
