// Package ai is the transport client for the Gemini generateContent REST
// API. It owns retry/backoff, request cancellation, status-code → user
// message mapping, and grounding-metadata processing; everything above it
// works with plain text and domain types.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxRetries  = 3

	// Backoff starts at one second and is capped at ten, with jitter to
	// avoid thundering-herd retries.
	backoffBase = 1 * time.Second
	backoffCap  = 10 * time.Second
)

// fallbackReply is returned when the model produces no candidates at all.
const fallbackReply = "抱歉，我無法處理您的請求。"

// Config carries the client's settings. Zero values fall back to defaults;
// only APIKey is required.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxRetries  uint64
	// RetryBase overrides the first backoff interval; zero means one second.
	RetryBase  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Result is one successful generation.
type Result struct {
	// Text is the model's reply. When the response was search-grounded the
	// citations and source list are already woven in.
	Text string
	// Grounding is the converted grounding metadata, nil when the response
	// was not grounded.
	Grounding *domain.Grounding
	// SearchQueries echoes the web searches the model ran, for metadata.
	SearchQueries []string
	// Model names the model that produced the reply.
	Model string
}

// Client talks to the Gemini API. One request is in flight at a time:
// starting a new request cancels the previous one, and the superseded call
// resolves to ErrCanceled. Safe for concurrent use.
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	maxRetries  uint64
	retryBase   time.Duration
	httpc       *http.Client
	log         *slog.Logger

	mu       sync.Mutex
	inflight *inflight
}

// inflight identifies one running request so a finishing call can tell
// whether the slot still belongs to it.
type inflight struct {
	cancel context.CancelFunc
}

// NewClient constructs a Client from cfg, applying defaults for unset fields.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryBase:   cfg.RetryBase,
		httpc:       cfg.HTTPClient,
		log:         cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.temperature == 0 {
		c.temperature = defaultTemperature
	}
	if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryBase == 0 {
		c.retryBase = backoffBase
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 45 * time.Second}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends prompt without the search tool and returns the raw reply
// text. Used for the strict-JSON flows (itinerary analysis, expense
// categorization) where grounding would only add noise.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.call(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	return candidateText(resp), nil
}

// GenerateGrounded sends prompt with the Google Search tool enabled and
// post-processes any grounding metadata: citations are inserted into the
// text, a source list is appended, and the metadata is converted to the
// domain shape.
func (c *Client) GenerateGrounded(ctx context.Context, prompt string) (*Result, error) {
	resp, err := c.call(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	result := &Result{Text: candidateText(resp), Model: c.model}
	if result.Text == "" {
		result.Text = fallbackReply
	}

	meta := validGrounding(resp)
	if meta == nil {
		return result, nil
	}

	result.Text = addCitations(result.Text, meta) + sourcesList(meta)
	result.Grounding = convertGrounding(meta)
	result.SearchQueries = meta.WebSearchQueries
	return result, nil
}

// CancelInflight cancels the current request, if any. The canceled call
// resolves to ErrCanceled.
func (c *Client) CancelInflight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}

// call runs one generateContent request with supersede-cancellation and
// bounded exponential-backoff retry on transient failures.
func (c *Client) call(ctx context.Context, prompt string, useSearch bool) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "AI 服務配置錯誤，請聯繫管理員設置 API 密鑰"}
	}

	// Supersede any request already in flight.
	reqCtx, cancel := context.WithCancel(ctx)
	mine := &inflight{cancel: cancel}
	c.mu.Lock()
	if c.inflight != nil {
		c.inflight.cancel()
	}
	c.inflight = mine
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		// Clear the slot only if it is still ours; a newer request may have
		// taken it over already.
		if c.inflight == mine {
			c.inflight = nil
		}
		c.mu.Unlock()
	}()

	body, err := json.Marshal(generateRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Tools:            searchTools(useSearch),
		GenerationConfig: &generationConfig{Temperature: c.temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("ai.Client.call: encode request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.maxRetries,
		retry.WithJitterPercent(30,
			retry.WithCappedDuration(backoffCap,
				retry.NewExponential(c.retryBase))))

	var resp *generateResponse
	err = retry.Do(reqCtx, backoff, func(ctx context.Context) error {
		var attemptErr error
		resp, attemptErr = c.attempt(ctx, body)
		return attemptErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrCanceled
		}
		return nil, err
	}
	return resp, nil
}

// attempt performs a single HTTP round trip. Transient failures come back
// wrapped in retry.RetryableError; everything else aborts the retry loop.
func (c *Client) attempt(ctx context.Context, body []byte) (*generateResponse, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai.Client.attempt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		// Connection refused, timeout, DNS failure — all transient.
		return nil, retry.RetryableError(&Error{Message: networkMessage(err)})
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, retry.RetryableError(&Error{Message: networkMessage(err)})
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr geminiError
		_ = json.Unmarshal(raw, &apiErr)
		c.log.WarnContext(ctx, "gemini error response",
			"status", httpResp.StatusCode, "message", apiErr.Error.Message)

		outErr := &Error{Status: httpResp.StatusCode, Message: userMessage(httpResp.StatusCode)}
		if retryableStatuses[httpResp.StatusCode] {
			return nil, retry.RetryableError(outErr)
		}
		return nil, outErr
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("ai.Client.attempt: decode response: %w", err)
	}
	return &resp, nil
}

func searchTools(useSearch bool) []geminiTool {
	if !useSearch {
		return nil
	}
	return []geminiTool{{GoogleSearch: &struct{}{}}}
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *generateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for _, part := range resp.Candidates[0].Content.Parts {
		buf.WriteString(part.Text)
	}
	return buf.String()
}

// networkMessage maps a transport-level failure to the user-facing message,
// distinguishing timeouts from connection failures.
func networkMessage(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "請求超時。請檢查網路連接或稍後再試"
	}
	var dnsErr *net.DNSError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &dnsErr) {
		return "無法連接到 AI 服務。請檢查網路連接或稍後再試"
	}
	return "網路連接錯誤，請檢查您的網路連接"
}
