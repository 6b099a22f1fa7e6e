package ai

// Wire types for the Gemini generateContent REST API. Only the fields this
// client reads or writes are modelled.

type generateRequest struct {
	Contents         []geminiContent   `json:"contents"`
	Tools            []geminiTool      `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiTool enables the Google Search grounding tool when GoogleSearch is
// non-nil.
type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content           geminiContent      `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
}

// groundingMetadata is the raw search-grounding payload attached to a
// candidate. It is validated and converted before leaving this package.
type groundingMetadata struct {
	WebSearchQueries  []string           `json:"webSearchQueries"`
	GroundingChunks   []groundingChunk   `json:"groundingChunks"`
	GroundingSupports []groundingSupport `json:"groundingSupports"`
}

type groundingChunk struct {
	Web *groundingWeb `json:"web"`
}

type groundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type groundingSupport struct {
	Segment               *groundingSegment `json:"segment"`
	GroundingChunkIndices []int             `json:"groundingChunkIndices"`
}

type groundingSegment struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// geminiError is the error payload the API returns with non-2xx statuses.
type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
