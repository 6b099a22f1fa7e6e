package ai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/ai"
)

const analyzedJSON = `{
  "tripName": "東京五日遊",
  "destination": "東京",
  "startDate": "2026-09-01",
  "endDate": "2026-09-05",
  "description": "秋季東京自由行",
  "flights": [
    {"airline": "長榮航空", "flightNumber": "BR189", "date": "2026-09-01",
     "departureCity": "TPE", "arrivalCity": "NRT",
     "departureTime": "09:00", "arrivalTime": "13:00"}
  ]
}`

func TestAnalyzeItinerary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse(analyzedJSON)))
	}))
	defer srv.Close()

	trip, err := newTestClient(srv).AnalyzeItinerary(context.Background(), "9/1 到 9/5 去東京")

	require.NoError(t, err)
	assert.Equal(t, "東京五日遊", trip.TripName)
	assert.Equal(t, "東京", trip.Destination)
	assert.Equal(t, "2026-09-01", trip.StartDate)
	require.Len(t, trip.Flights, 1)
	assert.Equal(t, "BR189", trip.Flights[0].FlightNumber)
}

func TestAnalyzeItinerary_StripsMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The model wraps its reply in a code fence despite instructions.
		w.Write([]byte(textResponse("```json\n" + analyzedJSON + "\n```")))
	}))
	defer srv.Close()

	trip, err := newTestClient(srv).AnalyzeItinerary(context.Background(), "行程文字")

	require.NoError(t, err)
	assert.Equal(t, "東京", trip.Destination)
}

func TestAnalyzeItinerary_BadFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse("抱歉，我無法解析這段行程。")))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AnalyzeItinerary(context.Background(), "行程文字")

	assert.ErrorIs(t, err, ai.ErrBadFormat)
}
