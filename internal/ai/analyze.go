package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// analyzePrompt forces a JSON-only reply so the result can be decoded
// straight into the trip form.
const analyzePrompt = `你是一個旅遊行程解析助手。請分析以下行程文字，提取結構化的旅行資訊。

請嚴格以 JSON 格式回覆，不要包含任何其他文字或說明。JSON 結構如下：
{
  "tripName": "行程名稱",
  "destination": "目的地",
  "startDate": "YYYY-MM-DD",
  "endDate": "YYYY-MM-DD",
  "description": "行程描述",
  "flights": [
    {
      "airline": "航空公司",
      "flightNumber": "航班編號",
      "date": "YYYY-MM-DD",
      "departureCity": "出發地",
      "arrivalCity": "抵達地",
      "departureTime": "出發時間",
      "arrivalTime": "抵達時間"
    }
  ]
}

無法從文字中確定的欄位請留空字串，flights 沒有資料時請回傳空陣列。

行程文字：
%s`

// AnalyzeItinerary asks the model to convert free-form itinerary text into
// structured trip fields. A reply that cannot be parsed as the expected JSON
// yields ErrBadFormat.
func (c *Client) AnalyzeItinerary(ctx context.Context, text string) (*domain.AnalyzedTrip, error) {
	reply, err := c.Generate(ctx, fmt.Sprintf(analyzePrompt, text))
	if err != nil {
		return nil, err
	}

	var trip domain.AnalyzedTrip
	if err := json.Unmarshal([]byte(stripFences(reply)), &trip); err != nil {
		c.log.WarnContext(ctx, "itinerary analysis returned non-JSON reply", "reply", reply)
		return nil, ErrBadFormat
	}
	return &trip, nil
}

// stripFences removes a surrounding markdown code fence, which the model
// adds despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
