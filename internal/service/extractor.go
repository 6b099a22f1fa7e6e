package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// IntentExtractor turns an AI response into zero or more proposed data
// changes. The AI never calls a tool directly — structured intent is
// inferred from prose after the fact. Implementations must be pure with
// respect to external state, tolerate arbitrary input without failing, and
// emit descriptors in a deterministic order.
type IntentExtractor interface {
	Extract(text string, snap Snapshot) []domain.ChangeDescriptor
}

// KeywordExtractor is the substring-keyword heuristic extractor. Detection
// is deliberately simple and deterministic: keyword gates decide which
// descriptors to emit, a regex sub-pass fills in trip details. False
// positives are accepted — the user approves every change before it is
// applied. A smarter NLP classifier can replace this behind IntentExtractor
// without touching the modifier or the confirmation flow.
type KeywordExtractor struct {
	now func() time.Time
}

// NewKeywordExtractor returns the default extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{now: time.Now}
}

// Keyword sets for intent gating. Matching is plain substring containment;
// the source language is CJK so no case folding is involved.
var (
	createGateKeywords = []string{"建立", "儲存", "創建", "新增行程", "規劃行程"}
	createVerbKeywords = []string{"建立", "儲存", "創建"}
	tripNounKeywords   = []string{"行程", "旅行"}
	modifyGateKeywords = []string{"修改", "更新", "編輯", "新增", "刪除", "調整"}
)

// knownDestinations is the fixed allow-list the destination sub-extraction
// matches against, in priority order.
var knownDestinations = []string{
	"台北", "東京", "大阪", "首爾", "曼谷", "新加坡", "香港", "澳門",
	"上海", "北京", "巴黎", "倫敦", "紐約", "洛杉磯", "雪梨", "墨爾本",
}

var (
	// tripDaysRe matches "<number>天" or "<number>日" — the trip length.
	tripDaysRe = regexp.MustCompile(`(\d+)\s*[天日]`)

	// dayMarkerRe matches "第N天：" markers with CJK numerals one through ten.
	dayMarkerRe = regexp.MustCompile(`第[一二三四五六七八九十]+天[：:]`)

	// activitySplitRe splits a day's content into discrete activities on
	// common CJK punctuation.
	activitySplitRe = regexp.MustCompile(`[，。、]`)
)

// Extract scans text for data-change intent and returns the corresponding
// descriptors, in detection order: create-trip, edit-trip, add-expense,
// add-note. Multiple descriptors may be emitted from one text; none is ever
// emitted twice within one call, but no de-duplication happens across calls.
// Extract never fails: unrecognized or partial input yields an empty list.
func (x *KeywordExtractor) Extract(text string, snap Snapshot) []domain.ChangeDescriptor {
	suggestions := []domain.ChangeDescriptor{}

	// Creation detection: a create verb plus a trip noun.
	if containsAny(text, createGateKeywords) &&
		containsAny(text, tripNounKeywords) && containsAny(text, createVerbKeywords) {
		suggestions = append(suggestions, domain.ChangeDescriptor{
			ID:          domain.NewID("change"),
			Type:        domain.ChangeCreate,
			Category:    domain.CategoryTrip,
			Field:       "trip",
			NewValue:    x.extractTripData(text),
			Description: "AI建議建立新的行程",
		})
	}

	if containsAny(text, modifyGateKeywords) {
		// Edit detection. A placeholder branch: it always proposes a
		// destination edit against the current trip. The target id is
		// captured now, at suggestion-creation time, so a later change of
		// trip selection cannot redirect the edit.
		if strings.Contains(text, "行程") && strings.Contains(text, "修改") {
			change := domain.ChangeDescriptor{
				ID:          domain.NewID("change"),
				Type:        domain.ChangeEdit,
				Category:    domain.CategoryTrip,
				Field:       "destination",
				OldValue:    "未知",
				NewValue:    "建議的新目的地",
				Description: "AI建議修改行程目的地",
			}
			if snap.CurrentTrip != nil {
				change.OldValue = snap.CurrentTrip.Destination
				change.TargetID = snap.CurrentTrip.ID
			}
			suggestions = append(suggestions, change)
		}

		// Add-expense detection.
		if strings.Contains(text, "費用") && (strings.Contains(text, "新增") || strings.Contains(text, "添加")) {
			suggestions = append(suggestions, domain.ChangeDescriptor{
				ID:       domain.NewID("change"),
				Type:     domain.ChangeAdd,
				Category: domain.CategoryExpense,
				Field:    "expense",
				NewValue: domain.Expense{
					Amount:      100,
					Description: "AI建議的新費用項目",
					Category:    "餐飲",
					Date:        x.today(),
				},
				Description: "AI建議新增一筆費用記錄",
			})
		}

		// Add-note detection.
		if strings.Contains(text, "筆記") && strings.Contains(text, "新增") {
			suggestions = append(suggestions, domain.ChangeDescriptor{
				ID:       domain.NewID("change"),
				Type:     domain.ChangeAdd,
				Category: domain.CategoryNote,
				Field:    "note",
				NewValue: domain.Note{
					Title:    "AI建議的筆記",
					Content:  "這是AI根據對話內容建議添加的筆記",
					Category: "一般",
				},
				Description: "AI建議新增一條筆記",
			})
		}
	}

	return suggestions
}

// extractTripData builds the full trip payload for a create-trip suggestion.
// Every field the text does not mention falls back to a default — partial
// information never fails the extraction.
func (x *KeywordExtractor) extractTripData(text string) domain.Trip {
	now := x.now()

	trip := domain.Trip{
		ID:          domain.NewID("trip"),
		Destination: "台北",
		StartDate:   dateString(now),
		EndDate:     dateString(now.AddDate(0, 0, 2)),
		Budget:      0,
		Status:      "planning",
		Description: "",
		Itinerary:   []domain.ItineraryDay{},
		Hotels:      []domain.TripHotel{},
		Flights:     []domain.Flight{},
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}

	// Destination: first allow-list place name found in the text.
	for _, place := range knownDestinations {
		if strings.Contains(text, place) {
			trip.Destination = place
			break
		}
	}

	// Trip length: "<number>天" offsets the end date from today.
	if m := tripDaysRe.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil && days > 0 {
			trip.EndDate = dateString(now.AddDate(0, 0, days-1))
		}
	}

	trip.Itinerary = x.extractItinerary(text, now)
	return trip
}

// extractItinerary segments the text on "第N天：" markers and splits each
// day's content into discrete activities.
func (x *KeywordExtractor) extractItinerary(text string, now time.Time) []domain.ItineraryDay {
	markers := dayMarkerRe.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return []domain.ItineraryDay{}
	}

	days := make([]domain.ItineraryDay, 0, len(markers))
	for i, marker := range markers {
		// Content runs from the end of this marker to the start of the next
		// (or the end of the text).
		start := marker[1]
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		content := strings.TrimSpace(text[start:end])

		day := domain.ItineraryDay{
			ID:         "day_" + strconv.Itoa(i+1),
			Day:        i + 1,
			Date:       dateString(now.AddDate(0, 0, i)),
			Activities: []domain.Activity{},
		}

		for _, part := range activitySplitRe.Split(content, -1) {
			activity := strings.TrimSpace(part)
			if activity == "" {
				continue
			}
			day.Activities = append(day.Activities, domain.Activity{
				ID:       domain.NewID("activity"),
				Activity: activity,
			})
		}

		days = append(days, day)
	}

	return days
}

func (x *KeywordExtractor) today() string {
	return dateString(x.now())
}

// dateString formats t as the "YYYY-MM-DD" date string used everywhere in
// the stored documents.
func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// compile-time check: KeywordExtractor must satisfy IntentExtractor.
var _ IntentExtractor = (*KeywordExtractor)(nil)
