package domain

// GroupedExport is the data-portability document: every collection grouped
// by trip id, with global data under Unassigned. Import merges by id-union —
// existing entries win on id collision, nothing is overwritten.
type GroupedExport struct {
	Meta    ExportMeta  `json:"meta"`
	Trips   []Trip      `json:"trips"`
	Grouped GroupedData `json:"groupedData"`
}

// ExportMeta identifies the document version and when it was produced.
type ExportMeta struct {
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt"`
	AppVersion string `json:"appVersion"`
}

// GroupedData splits the export into per-trip buckets and global leftovers.
type GroupedData struct {
	ByTripID   map[string]TripBundle `json:"byTripId"`
	Unassigned Unassigned            `json:"unassigned"`
}

// TripBundle is everything belonging to one trip id. Trip is nil when a
// satellite collection references a trip id that is missing from the trips
// document (orphaned data is exported rather than dropped).
type TripBundle struct {
	Trip         *Trip           `json:"trip"`
	Expenses     []Expense       `json:"expenses"`
	PackingLists []PackingItem   `json:"packingLists"`
	TravelNotes  []Note          `json:"travelNotes"`
	TravelTips   []Note          `json:"travelTips"`
	Hotels       []Hotel         `json:"hotels"`
	Itineraries  []ItineraryItem `json:"itineraries"`
}

// Unassigned holds data not scoped to any trip.
type Unassigned struct {
	Notes []Note `json:"notes"`
}
