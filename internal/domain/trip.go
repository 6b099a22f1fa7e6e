// Package domain contains the core data types for the AI travel planner.
// This package has zero dependencies on other internal packages and is
// imported by every other layer (repo, service, ai, handler).
//
// Dates are kept as "2006-01-02" strings rather than time.Time: every
// collection round-trips through JSON documents, and the suggestion
// extractor emits date strings directly.
package domain

// Trip is the top-level aggregate. Flights, Hotels, and Itinerary are
// nested sub-collections mutated through "add"/"delete" changes on the
// corresponding field; all other fields are whole-value replaced by "edit".
type Trip struct {
	ID          string         `json:"id"`
	Destination string         `json:"destination"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Budget      float64        `json:"budget"`
	Status      string         `json:"status"`
	Description string         `json:"description"`
	Itinerary   []ItineraryDay `json:"itinerary"`
	Flights     []Flight       `json:"flights"`
	Hotels      []TripHotel    `json:"hotels"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// Flight is a single flight segment attached to a trip.
// City fields hold IATA codes when available, free text otherwise.
type Flight struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flightNumber"`
	DepartureCity string `json:"departureCity"`
	ArrivalCity   string `json:"arrivalCity"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Duration      string `json:"duration"`
}

// TripHotel is a hotel booking nested directly on a trip.
type TripHotel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
}

// ItineraryDay is one day of a trip's day-by-day plan.
type ItineraryDay struct {
	ID         string     `json:"id"`
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// Activity is a discrete item within an itinerary day.
type Activity struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// AnalyzedTrip is the structured result of the itinerary text-analysis
// endpoint: free-form itinerary text converted to form-ready trip fields.
// It feeds trip-creation form state directly and never passes through the
// suggestion extractor.
type AnalyzedTrip struct {
	TripName    string   `json:"tripName"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description"`
	Flights     []Flight `json:"flights"`
}
