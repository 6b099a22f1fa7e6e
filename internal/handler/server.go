// Package handler implements the HTTP handlers for the AI travel planner
// API. All handlers are methods on Server; methods are split into
// domain-specific files (health.go, chat.go, trip.go, etc.) but all share
// the same Server struct so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/Hodaren2022/aitravel-backend/internal/ai"
	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/service"
)

// ChatServicer runs one full chat turn.
// Interfaces are defined here, in the consumer package, so handler tests
// can inject mocks without touching the AI client or storage.
type ChatServicer interface {
	Handle(ctx context.Context, message, currentPage string) (*service.ChatReply, error)
}

// ItineraryAnalyzer converts free-form itinerary text to trip fields.
type ItineraryAnalyzer interface {
	AnalyzeItinerary(ctx context.Context, text string) (*domain.AnalyzedTrip, error)
}

// ExpenseCategorizer maps an expense description to a category.
type ExpenseCategorizer interface {
	Categorize(ctx context.Context, description string) (string, error)
}

// Canceler aborts the in-flight AI request, if any.
type Canceler interface {
	CancelInflight()
}

// Conversationer is the assistant surface: history, pending changes, and
// the confirmation flow.
type Conversationer interface {
	Messages() []domain.Message
	PendingChanges() ([]domain.ChangeDescriptor, bool)
	ConfirmChanges(ctx context.Context, approved []domain.ChangeDescriptor) domain.BatchResult
	RejectChanges()
	ClearHistory(ctx context.Context) error
	StartNewConversation(ctx context.Context) domain.Message
}

// TripServicer defines the trip CRUD and selection operations.
type TripServicer interface {
	List(ctx context.Context) ([]domain.Trip, error)
	Get(ctx context.Context, id string) (*domain.Trip, error)
	Create(ctx context.Context, trip domain.Trip) (*domain.Trip, error)
	Update(ctx context.Context, id string, trip domain.Trip) (*domain.Trip, error)
	Delete(ctx context.Context, id string) error
	Selected(ctx context.Context) (string, error)
	Select(ctx context.Context, id string) error
}

// Exporter produces and consumes the grouped export document.
type Exporter interface {
	Export(ctx context.Context) (*domain.GroupedExport, error)
	Import(ctx context.Context, doc *domain.GroupedExport) (*service.ImportResult, error)
}

// Server holds every handler dependency.
type Server struct {
	chat        ChatServicer
	analyzer    ItineraryAnalyzer
	categorizer ExpenseCategorizer
	canceler    Canceler
	assistant   Conversationer
	trips       TripServicer
	exporter    Exporter
}

// NewServer constructs the Server with all its dependencies.
func NewServer(chat ChatServicer, analyzer ItineraryAnalyzer, categorizer ExpenseCategorizer, canceler Canceler, assistant Conversationer, trips TripServicer, exporter Exporter) *Server {
	return &Server{
		chat:        chat,
		analyzer:    analyzer,
		categorizer: categorizer,
		canceler:    canceler,
		assistant:   assistant,
		trips:       trips,
		exporter:    exporter,
	}
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", s.PostChat)
			r.Post("/cancel", s.PostCancel)
			r.Post("/analyze-itinerary", s.PostAnalyzeItinerary)
			r.Post("/categorize-expense", s.PostCategorizeExpense)
			r.Get("/messages", s.GetMessages)
			r.Delete("/messages", s.DeleteMessages)
			r.Post("/conversations", s.PostConversation)
			r.Get("/changes", s.GetPendingChanges)
			r.Post("/changes/confirm", s.PostConfirmChanges)
			r.Post("/changes/reject", s.PostRejectChanges)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Get("/selected", s.GetSelectedTrip)
			r.Put("/selected", s.PutSelectedTrip)
			r.Get("/{tripID}", s.GetTrip)
			r.Put("/{tripID}", s.UpdateTrip)
			r.Delete("/{tripID}", s.DeleteTrip)
		})

		r.Get("/export", s.GetExport)
		r.Post("/import", s.PostImport)
	})
}

// interface checks against the concrete implementations
var (
	_ ChatServicer       = (*service.ChatService)(nil)
	_ ItineraryAnalyzer  = (*ai.Client)(nil)
	_ ExpenseCategorizer = (*service.Categorizer)(nil)
	_ Canceler           = (*ai.Client)(nil)
	_ Conversationer     = (*service.Assistant)(nil)
	_ TripServicer       = (*service.TripService)(nil)
	_ Exporter           = (*service.ExportService)(nil)
)
