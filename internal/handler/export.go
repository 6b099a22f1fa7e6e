package handler

import (
	"net/http"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// GetExport handles GET /api/export: the full grouped data document.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.exporter.Export(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="travel-data-export.json"`)
	respondJSON(w, http.StatusOK, doc)
}

// PostImport handles POST /api/import: merges a grouped export document into
// the current data. Existing entries win on id collision, so importing the
// same document twice is a no-op.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	var doc domain.GroupedExport
	if !decodeBody(w, r, &doc) {
		return
	}
	result, err := s.exporter.Import(r.Context(), &doc)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
