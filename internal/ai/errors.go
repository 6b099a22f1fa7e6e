package ai

import "errors"

// ErrCanceled is the distinguishable outcome of a request cancelled because a
// newer request superseded it (or the caller went away). It is not a
// failure: callers recognize and suppress it instead of surfacing an error
// message to the user.
var ErrCanceled = errors.New("請求已取消")

// ErrBadFormat is returned when the AI was asked for strict JSON and replied
// with something that does not parse. The offending raw text is logged at
// the call site.
var ErrBadFormat = errors.New("AI 回傳的格式不正確，無法解析。")

// Error is a typed AI transport failure carrying the upstream HTTP status
// and a human-readable, actionable user message. Transient statuses are
// retried before an Error ever reaches a caller.
type Error struct {
	// Status is the upstream HTTP status code, or 0 for pure network failures.
	Status int
	// Message is the user-facing text, never a raw stack trace.
	Message string
}

func (e *Error) Error() string { return e.Message }

// retryableStatuses holds the transient upstream statuses worth retrying.
var retryableStatuses = map[int]bool{
	429: true, 500: true, 502: true, 503: true, 504: true,
}

// userMessage maps an upstream status code to the user-facing message shown
// when retries are exhausted or the status is not retryable.
func userMessage(status int) string {
	switch {
	case status == 404:
		return "AI 服務暫時無法使用。請檢查：\n1. AI 服務是否正確部署\n2. 環境變量 GEMINI_API_KEY 是否設置\n3. 網路連接是否正常"
	case status == 403:
		return "API 密鑰無效或權限不足。請檢查 GEMINI_API_KEY 環境變量設置"
	case status == 429:
		return "請求過於頻繁，請稍後再試。建議等待 1-2 分鐘後重新嘗試"
	case status == 500:
		return "AI 服務遇到內部錯誤，請稍後再試"
	case status == 503:
		return "AI 服務暫時不可用，請稍後再試"
	case status == 504:
		return "請求超時，請重新嘗試"
	case status >= 400 && status < 500:
		return "請求格式錯誤，請重新嘗試"
	default:
		return "網路連接錯誤，請檢查您的網路連接"
	}
}
