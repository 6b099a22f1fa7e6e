package domain

// The per-trip satellite collections. Each is keyed by trip id in its own
// top-level document and holds an ordered list of entities with their own ids.
// A trip's satellite lists are created lazily on first reference and are not
// removed when the parent trip is deleted.

// Expense is a single spending record for a trip.
// Category is one of the six closed expense categories (see ExpenseCategories).
type Expense struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}

// ExpenseCategories is the closed set the categorizer maps descriptions into.
// Anything the AI returns outside this set falls back to the last entry, 其他.
var ExpenseCategories = []string{"餐飲", "交通", "購物", "住宿", "娛樂", "其他"}

// ExpenseCategoryOther is the catch-all expense category.
const ExpenseCategoryOther = "其他"

// Note is a free-form note. Global notes live in the "notes" document;
// per-trip travel notes live in "travelNotes" keyed by trip id.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	Date      string `json:"date,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PackingItem is one entry in a trip's packing list.
type PackingItem struct {
	ID        string `json:"id"`
	Item      string `json:"item"`
	Packed    bool   `json:"packed"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Hotel is a lodging record in the per-trip hotels collection (distinct from
// the TripHotel entries nested on the trip itself).
type Hotel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	CheckIn      string `json:"checkIn,omitempty"`
	CheckOut     string `json:"checkOut,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// ItineraryItem is one entry in the per-trip itineraries collection.
type ItineraryItem struct {
	ID        string `json:"id"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Activity  string `json:"activity"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
