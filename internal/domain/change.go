package domain

// ChangeType is the kind of mutation a ChangeDescriptor proposes.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeAdd    ChangeType = "add"
	ChangeEdit   ChangeType = "edit"
	ChangeDelete ChangeType = "delete"
)

// Valid reports whether t is one of the four known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeCreate, ChangeAdd, ChangeEdit, ChangeDelete:
		return true
	}
	return false
}

// Category names the collection a ChangeDescriptor targets.
// The set is closed: the modifier rejects anything outside it with a
// ModificationError instead of silently ignoring the change.
type Category string

const (
	CategoryTrip      Category = "trip"
	CategoryExpense   Category = "expense"
	CategoryNote      Category = "note"
	CategoryPacking   Category = "packing"
	CategoryHotel     Category = "hotel"
	CategoryItinerary Category = "itinerary"
)

// Categories lists every known category in dispatch order.
var Categories = []Category{
	CategoryTrip, CategoryExpense, CategoryNote,
	CategoryPacking, CategoryHotel, CategoryItinerary,
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTrip, CategoryExpense, CategoryNote,
		CategoryPacking, CategoryHotel, CategoryItinerary:
		return true
	}
	return false
}

// ChangeDescriptor is a proposed mutation to the user's travel data.
// Descriptors are produced by the suggestion extractor, shown to the user for
// approval, and applied by the data modifier only after approval.
//
// A descriptor is immutable once created: approving or rejecting it updates
// the surrounding pending set, never the descriptor itself.
//
// NewValue is shaped by Type: a full entity payload for "create", an element
// to append for "add", the replacement value for "edit", and usually the id
// of the element to remove for "delete". OldValue is present only for "edit".
type ChangeDescriptor struct {
	ID          string     `json:"id"`
	Type        ChangeType `json:"type"`
	Category    Category   `json:"category"`
	Field       string     `json:"field"`
	OldValue    any        `json:"oldValue,omitempty"`
	NewValue    any        `json:"newValue,omitempty"`
	TargetID    string     `json:"targetId,omitempty"`
	Description string     `json:"description"`
}

// ChangeResult records one successfully applied change in a batch.
type ChangeResult struct {
	ChangeID string `json:"changeId"`
	Success  bool   `json:"success"`
	Result   any    `json:"result,omitempty"`
}

// ChangeError records one failed change in a batch. Err is the human-readable
// message carried across the batch boundary; failures never abort siblings.
type ChangeError struct {
	ChangeID string `json:"changeId"`
	Err      string `json:"error"`
}

// BatchResult is the complete outcome of applying an approved batch.
// len(Results)+len(Errors) always equals the number of input changes.
type BatchResult struct {
	Results []ChangeResult `json:"results"`
	Errors  []ChangeError  `json:"errors"`
}

// AppliedChange is one entry in the modifier's change history: the descriptor
// plus the apply outcome.
type AppliedChange struct {
	ChangeDescriptor
	AppliedAt string `json:"appliedAt"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
