package domain

import "time"

// MessageType distinguishes who produced a conversation message.
type MessageType string

const (
	MessageUser   MessageType = "user"
	MessageAI     MessageType = "ai"
	MessageSystem MessageType = "system"
)

// Message is one entry in the assistant conversation.
//
// Suggestions ride along on AI messages so the UI can open the confirmation
// flow. They are nulled out both when history is persisted and when it is
// loaded, so suggestions from a previous session can never be re-executed —
// replay safety is enforced by construction, not by idempotence of the
// apply step.
type Message struct {
	ID          string             `json:"id"`
	Type        MessageType        `json:"type"`
	Content     string             `json:"content"`
	Timestamp   time.Time          `json:"timestamp"`
	Suggestions []ChangeDescriptor `json:"suggestions,omitempty"`
	Grounding   *Grounding         `json:"groundingMetadata,omitempty"`
}

// Grounding is the search-grounding metadata attached to an AI message,
// already converted to the shape the UI consumes.
type Grounding struct {
	HasGrounding  bool             `json:"hasGrounding"`
	SearchQueries []string         `json:"searchQueries"`
	Sources       []GroundingSource `json:"sources"`
	CitationCount int              `json:"citationCount"`
}

// GroundingSource is one web source backing a grounded AI response.
type GroundingSource struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}
