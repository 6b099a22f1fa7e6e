package handler

import (
	"net/http"
	"strings"
)

// analyzeRequest is the body of POST /api/ai/analyze-itinerary.
type analyzeRequest struct {
	Text string `json:"text"`
}

// PostAnalyzeItinerary handles POST /api/ai/analyze-itinerary: free-form
// itinerary text in, structured trip fields out.
func (s *Server) PostAnalyzeItinerary(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondBadRequest(w, "text is required")
		return
	}

	trip, err := s.analyzer.AnalyzeItinerary(r.Context(), req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}
