package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hodaren2022/aitravel-backend/internal/ai"
	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// systemPrompt frames every chat turn: the assistant is a travel planner
// with read access to the user's current data snapshot.
const systemPrompt = `你是一個專業的旅遊規劃助手。你可以查看用戶當前的旅行數據，並根據這些數據提供建議。

你的能力包括：
- 回答旅遊相關問題，提供目的地資訊與建議
- 根據用戶的行程、費用與筆記資料提供個人化建議
- 協助用戶規劃行程、管理預算與整理旅行筆記

回覆時請使用繁體中文，語氣友善且簡潔。`

// Generator is the slice of the AI client the chat flow needs.
type Generator interface {
	GenerateGrounded(ctx context.Context, prompt string) (*ai.Result, error)
	Model() string
}

// ChatReply is the full answer to one chat message.
type ChatReply struct {
	Response    string                    `json:"response"`
	Suggestions []domain.ChangeDescriptor `json:"suggestions,omitempty"`
	Grounding   *domain.Grounding         `json:"grounding,omitempty"`
	Metadata    ChatMetadata              `json:"metadata"`
}

// ChatMetadata describes how the reply was produced.
type ChatMetadata struct {
	Timestamp     string   `json:"timestamp"`
	Model         string   `json:"model"`
	HasGrounding  bool     `json:"hasGrounding"`
	SearchQueries []string `json:"searchQueries,omitempty"`
}

// ChatService runs the full chat turn: build the data snapshot, prompt the
// model, scan the user's message for change suggestions, and record
// everything in the conversation.
type ChatService struct {
	snapshots *SnapshotBuilder
	generator Generator
	extractor IntentExtractor
	assistant *Assistant
	log       *slog.Logger
	now       func() time.Time
}

// NewChatService wires a ChatService.
func NewChatService(snapshots *SnapshotBuilder, generator Generator, extractor IntentExtractor, assistant *Assistant, log *slog.Logger) *ChatService {
	return &ChatService{
		snapshots: snapshots,
		generator: generator,
		extractor: extractor,
		assistant: assistant,
		log:       log,
		now:       time.Now,
	}
}

// Handle processes one user message. A canceled generation is reported as
// ai.ErrCanceled without recording an AI reply; any other generation error
// is returned after the user message was already recorded.
func (s *ChatService) Handle(ctx context.Context, message, currentPage string) (*ChatReply, error) {
	snap := s.snapshots.Build(ctx, currentPage)

	s.assistant.AddUserMessage(ctx, message)

	result, err := s.generator.GenerateGrounded(ctx, s.buildPrompt(message, snap))
	if err != nil {
		if errors.Is(err, ai.ErrCanceled) {
			return nil, ai.ErrCanceled
		}
		return nil, fmt.Errorf("service.ChatService.Handle: %w", err)
	}

	// The extractor reads the model's final reply, citations included,
	// and infers what the model said it would change.
	suggestions := s.extractor.Extract(result.Text, snap)

	s.assistant.AddAIMessage(ctx, result.Text, suggestions, result.Grounding)
	if len(suggestions) > 0 {
		s.assistant.ProcessSuggestions(ctx, suggestions, false)
	}

	return &ChatReply{
		Response:    result.Text,
		Suggestions: suggestions,
		Grounding:   result.Grounding,
		Metadata: ChatMetadata{
			Timestamp:     s.now().UTC().Format(time.RFC3339),
			Model:         s.generator.Model(),
			HasGrounding:  result.Grounding != nil && result.Grounding.HasGrounding,
			SearchQueries: result.SearchQueries,
		},
	}, nil
}

// buildPrompt assembles system prompt, a JSON rendering of the data
// snapshot, and the user's message into one generation request.
func (s *ChatService) buildPrompt(message string, snap Snapshot) string {
	ctxJSON, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("encode snapshot for prompt", "error", err)
		ctxJSON = []byte("{}")
	}
	return fmt.Sprintf("%s\n\n用戶當前的旅行數據：\n%s\n\n用戶訊息：%s", systemPrompt, ctxJSON, message)
}
