package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// ListTrips handles GET /api/trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	respondJSON(w, http.StatusOK, trips)
}

// GetTrip handles GET /api/trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.Get(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// CreateTrip handles POST /api/trips. The created trip becomes the selected
// trip.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var trip domain.Trip
	if !decodeBody(w, r, &trip) {
		return
	}
	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateTrip handles PUT /api/trips/{tripID}: whole-value replacement, id
// and creation timestamp preserved.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var trip domain.Trip
	if !decodeBody(w, r, &trip) {
		return
	}
	updated, err := s.trips.Update(r.Context(), chi.URLParam(r, "tripID"), trip)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /api/trips/{tripID}. Satellite collections for
// the trip are kept.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Delete(r.Context(), chi.URLParam(r, "tripID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// selectedTripBody is the wire shape for the trip selection endpoints.
type selectedTripBody struct {
	TripID string `json:"tripId"`
}

// GetSelectedTrip handles GET /api/trips/selected. TripID is "" when no trip
// is selected.
func (s *Server) GetSelectedTrip(w http.ResponseWriter, r *http.Request) {
	id, err := s.trips.Selected(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, selectedTripBody{TripID: id})
}

// PutSelectedTrip handles PUT /api/trips/selected.
func (s *Server) PutSelectedTrip(w http.ResponseWriter, r *http.Request) {
	var body selectedTripBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.TripID == "" {
		respondBadRequest(w, "tripId is required")
		return
	}
	if err := s.trips.Select(r.Context(), body.TripID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, selectedTripBody{TripID: body.TripID})
}
