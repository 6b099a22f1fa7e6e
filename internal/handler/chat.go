package handler

import (
	"net/http"
	"strings"
)

// chatRequest is the body of POST /api/ai/chat.
type chatRequest struct {
	Message     string `json:"message"`
	CurrentPage string `json:"currentPage"`
}

// PostChat handles POST /api/ai/chat: one full chat turn including snapshot
// building, generation, suggestion extraction, and history recording.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondBadRequest(w, "message is required")
		return
	}

	reply, err := s.chat.Handle(r.Context(), req.Message, req.CurrentPage)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// PostCancel handles POST /api/ai/cancel: aborts the in-flight AI request.
// Always succeeds, whether or not a request was running.
func (s *Server) PostCancel(w http.ResponseWriter, r *http.Request) {
	s.canceler.CancelInflight()
	respondJSON(w, http.StatusOK, map[string]bool{"canceled": true})
}

// GetMessages handles GET /api/ai/messages: the conversation history.
func (s *Server) GetMessages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.assistant.Messages())
}

// DeleteMessages handles DELETE /api/ai/messages: clears the conversation.
func (s *Server) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.ClearHistory(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostConversation handles POST /api/ai/conversations: clears history and
// seeds a fresh conversation with the welcome message.
func (s *Server) PostConversation(w http.ResponseWriter, r *http.Request) {
	welcome := s.assistant.StartNewConversation(r.Context())
	respondJSON(w, http.StatusCreated, welcome)
}
