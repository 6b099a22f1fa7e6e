package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/repo"
)

// maxHistoryMessages caps the persisted conversation length.
const maxHistoryMessages = 100

// welcomeMessage opens every new conversation.
const welcomeMessage = "您好！我是您的AI旅行助手。我可以幫助您管理行程、查詢旅遊資訊，以及協助編輯您的旅行數據。有什麼可以為您服務的嗎？"

// ChangeApplier is the slice of the Modifier the assistant depends on.
type ChangeApplier interface {
	ApplyChanges(ctx context.Context, changes []domain.ChangeDescriptor) domain.BatchResult
}

// Assistant holds the conversation state and the pending-change confirmation
// flow. A pending change moves proposed → approved or proposed → rejected and
// never back; approving or rejecting only updates the pending set, never the
// descriptors themselves.
//
// All methods are safe for concurrent use; rapid repeated confirm/reject
// calls are idempotent because membership is keyed by change id and removing
// an absent id is a no-op.
type Assistant struct {
	stores  *repo.Stores
	applier ChangeApplier
	log     *slog.Logger
	now     func() time.Time

	mu               sync.Mutex
	messages         []domain.Message
	pending          []domain.ChangeDescriptor
	showConfirmation bool
}

// NewAssistant constructs an Assistant and loads persisted history.
// Suggestions on loaded messages are nulled so changes proposed in an
// earlier session can never be re-executed.
func NewAssistant(ctx context.Context, stores *repo.Stores, applier ChangeApplier, log *slog.Logger) (*Assistant, error) {
	a := &Assistant{stores: stores, applier: applier, log: log, now: time.Now}

	history, err := stores.Messages.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.NewAssistant: load history: %w", err)
	}
	for i := range history {
		history[i].Suggestions = nil
	}
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	a.messages = history

	return a, nil
}

// Messages returns a copy of the conversation.
func (a *Assistant) Messages() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// PendingChanges returns the changes currently awaiting a decision, in
// proposal order, plus whether the confirmation UI should be open.
func (a *Assistant) PendingChanges() ([]domain.ChangeDescriptor, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ChangeDescriptor, len(a.pending))
	copy(out, a.pending)
	return out, a.showConfirmation
}

// AddUserMessage appends a user message and persists history.
func (a *Assistant) AddUserMessage(ctx context.Context, content string) domain.Message {
	return a.addMessage(ctx, domain.MessageUser, content, nil, nil)
}

// AddAIMessage appends an AI message with optional suggestions and grounding.
func (a *Assistant) AddAIMessage(ctx context.Context, content string, suggestions []domain.ChangeDescriptor, grounding *domain.Grounding) domain.Message {
	return a.addMessage(ctx, domain.MessageAI, content, suggestions, grounding)
}

// AddSystemMessage appends a system message.
func (a *Assistant) AddSystemMessage(ctx context.Context, content string) domain.Message {
	return a.addMessage(ctx, domain.MessageSystem, content, nil, nil)
}

// ProcessSuggestions routes freshly extracted suggestions into the
// confirmation flow. Suggestions attached to history-sourced messages are
// ignored outright — replay safety by construction.
func (a *Assistant) ProcessSuggestions(ctx context.Context, suggestions []domain.ChangeDescriptor, fromHistory bool) {
	if fromHistory || len(suggestions) == 0 {
		return
	}
	a.HandleDataChanges(suggestions)
	a.AddSystemMessage(ctx, fmt.Sprintf("AI建議了 %d 項數據變更，請查看確認對話框進行確認。", len(suggestions)))
}

// HandleDataChanges replaces the entire pending set with changes and opens
// the confirmation flow. A prior unresolved pending set is overwritten, not
// merged: the last call wins for what confirmation shows.
func (a *Assistant) HandleDataChanges(changes []domain.ChangeDescriptor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = make([]domain.ChangeDescriptor, len(changes))
	copy(a.pending, changes)
	a.showConfirmation = true
}

// ConfirmChanges applies exactly the approved subset and removes those ids
// from the pending set. Per-item approval is supported: the subset may be
// smaller than the pending set. Modifier errors are reported in one
// aggregated system message and never propagate past this boundary.
func (a *Assistant) ConfirmChanges(ctx context.Context, approved []domain.ChangeDescriptor) domain.BatchResult {
	result := a.applier.ApplyChanges(ctx, approved)

	if len(result.Errors) > 0 {
		var agg error
		for _, e := range result.Errors {
			agg = multierr.Append(agg, errors.New(e.Err))
		}
		a.AddSystemMessage(ctx, fmt.Sprintf("部分變更失敗：%s", agg.Error()))
	} else {
		a.AddSystemMessage(ctx, fmt.Sprintf("成功應用 %d 項變更", len(result.Results)))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	processed := make(map[string]struct{}, len(approved))
	for _, c := range approved {
		processed[c.ID] = struct{}{}
	}
	remaining := a.pending[:0]
	for _, c := range a.pending {
		if _, ok := processed[c.ID]; !ok {
			remaining = append(remaining, c)
		}
	}
	a.pending = remaining
	if len(a.pending) == 0 {
		a.showConfirmation = false
	}

	return result
}

// RejectChanges drops the whole pending set and closes confirmation,
// unconditionally. Rejecting twice is a no-op the second time.
func (a *Assistant) RejectChanges() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = nil
	a.showConfirmation = false
}

// ClearHistory wipes the conversation, in memory and in storage.
func (a *Assistant) ClearHistory(ctx context.Context) error {
	a.mu.Lock()
	a.messages = nil
	a.mu.Unlock()
	return a.stores.Messages.Store(ctx, []domain.Message{})
}

// StartNewConversation wipes history and seeds the welcome message.
func (a *Assistant) StartNewConversation(ctx context.Context) domain.Message {
	a.mu.Lock()
	a.messages = nil
	a.mu.Unlock()
	return a.addMessage(ctx, domain.MessageAI, welcomeMessage, nil, nil)
}

func (a *Assistant) addMessage(ctx context.Context, typ domain.MessageType, content string, suggestions []domain.ChangeDescriptor, grounding *domain.Grounding) domain.Message {
	msg := domain.Message{
		ID:          domain.NewID(string(typ)),
		Type:        typ,
		Content:     content,
		Timestamp:   a.now(),
		Suggestions: suggestions,
		Grounding:   grounding,
	}

	a.mu.Lock()
	a.messages = append(a.messages, msg)
	if len(a.messages) > maxHistoryMessages {
		a.messages = a.messages[len(a.messages)-maxHistoryMessages:]
	}
	persisted := make([]domain.Message, len(a.messages))
	copy(persisted, a.messages)
	a.mu.Unlock()

	// Suggestions are stripped before persisting so a reloaded history can
	// never replay them.
	for i := range persisted {
		persisted[i].Suggestions = nil
	}
	if err := a.stores.Messages.Store(ctx, persisted); err != nil {
		a.log.WarnContext(ctx, "persist conversation failed", "error", err)
	}

	return msg
}
