package handler

import (
	"net/http"
	"strings"
)

// categorizeRequest is the body of POST /api/ai/categorize-expense.
type categorizeRequest struct {
	Description string `json:"description"`
}

// PostCategorizeExpense handles POST /api/ai/categorize-expense: returns the
// best-fitting expense category for a description.
func (s *Server) PostCategorizeExpense(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondBadRequest(w, "description is required")
		return
	}

	category, err := s.categorizer.Categorize(r.Context(), req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"category": category})
}
