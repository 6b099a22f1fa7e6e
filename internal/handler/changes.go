package handler

import (
	"net/http"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// pendingChangesResponse is the body of GET /api/ai/changes.
type pendingChangesResponse struct {
	Changes          []domain.ChangeDescriptor `json:"changes"`
	ShowConfirmation bool                      `json:"showConfirmation"`
}

// confirmRequest is the body of POST /api/ai/changes/confirm: the subset of
// pending changes the user approved.
type confirmRequest struct {
	Approved []domain.ChangeDescriptor `json:"approved"`
}

// GetPendingChanges handles GET /api/ai/changes: the change descriptors
// awaiting confirmation.
func (s *Server) GetPendingChanges(w http.ResponseWriter, r *http.Request) {
	changes, show := s.assistant.PendingChanges()
	respondJSON(w, http.StatusOK, pendingChangesResponse{Changes: changes, ShowConfirmation: show})
}

// PostConfirmChanges handles POST /api/ai/changes/confirm: applies the
// approved changes and returns the per-change outcome. Partial failure is a
// 200; the batch result reports which changes failed.
func (s *Server) PostConfirmChanges(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result := s.assistant.ConfirmChanges(r.Context(), req.Approved)
	respondJSON(w, http.StatusOK, result)
}

// PostRejectChanges handles POST /api/ai/changes/reject: discards every
// pending change without applying any. Safe to call repeatedly.
func (s *Server) PostRejectChanges(w http.ResponseWriter, r *http.Request) {
	s.assistant.RejectChanges()
	w.WriteHeader(http.StatusNoContent)
}
