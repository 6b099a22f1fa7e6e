package ai

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// validGrounding pulls the grounding metadata off the first candidate and
// drops malformed pieces: chunks without a web URI and supports without a
// segment or chunk indices. Returns nil when nothing usable remains.
func validGrounding(resp *generateResponse) *groundingMetadata {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	cleaned := &groundingMetadata{WebSearchQueries: meta.WebSearchQueries}

	// Index remap: supports reference chunks by position, so dropping a
	// chunk shifts every later index.
	remap := make(map[int]int, len(meta.GroundingChunks))
	for i, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		remap[i] = len(cleaned.GroundingChunks)
		cleaned.GroundingChunks = append(cleaned.GroundingChunks, chunk)
	}

	for _, sup := range meta.GroundingSupports {
		if sup.Segment == nil || len(sup.GroundingChunkIndices) == 0 {
			continue
		}
		var indices []int
		for _, idx := range sup.GroundingChunkIndices {
			if mapped, ok := remap[idx]; ok {
				indices = append(indices, mapped)
			}
		}
		if len(indices) == 0 {
			continue
		}
		cleaned.GroundingSupports = append(cleaned.GroundingSupports, groundingSupport{
			Segment:               sup.Segment,
			GroundingChunkIndices: indices,
		})
	}

	if len(cleaned.GroundingChunks) == 0 && len(cleaned.WebSearchQueries) == 0 {
		return nil
	}
	return cleaned
}

// convertGrounding turns validated metadata into the domain shape served to
// clients.
func convertGrounding(meta *groundingMetadata) *domain.Grounding {
	g := &domain.Grounding{
		HasGrounding:  len(meta.GroundingChunks) > 0,
		SearchQueries: meta.WebSearchQueries,
		CitationCount: len(meta.GroundingSupports),
	}
	for i, chunk := range meta.GroundingChunks {
		g.Sources = append(g.Sources, domain.GroundingSource{
			ID:     i + 1,
			Title:  chunk.Web.Title,
			URL:    chunk.Web.URI,
			Domain: extractDomain(chunk.Web.URI),
		})
	}
	return g
}

// addCitations inserts markdown citation links into text at the segment end
// offsets the metadata reports. Insertions run from the highest offset down
// so earlier offsets stay valid.
func addCitations(text string, meta *groundingMetadata) string {
	supports := make([]groundingSupport, len(meta.GroundingSupports))
	copy(supports, meta.GroundingSupports)
	sort.Slice(supports, func(i, j int) bool {
		return supports[i].Segment.EndIndex > supports[j].Segment.EndIndex
	})

	out := []byte(text)
	for _, sup := range supports {
		end := sup.Segment.EndIndex
		if end < 0 {
			continue
		}
		if end > len(out) {
			end = len(out)
		}

		var marks strings.Builder
		for _, idx := range sup.GroundingChunkIndices {
			if idx < 0 || idx >= len(meta.GroundingChunks) {
				continue
			}
			web := meta.GroundingChunks[idx].Web
			fmt.Fprintf(&marks, " [%d](%s \"%s\")", idx+1, web.URI, web.Title)
		}
		if marks.Len() == 0 {
			continue
		}
		out = append(out[:end], append([]byte(marks.String()), out[end:]...)...)
	}
	return string(out)
}

// sourcesList renders the numbered 參考來源 block appended after a grounded
// reply. Empty when there are no sources.
func sourcesList(meta *groundingMetadata) string {
	if len(meta.GroundingChunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n**參考來源：**\n")
	for i, chunk := range meta.GroundingChunks {
		title := chunk.Web.Title
		if title == "" {
			title = extractDomain(chunk.Web.URI)
		}
		fmt.Fprintf(&b, "%d. [%s](%s) - %s\n", i+1, title, chunk.Web.URI, extractDomain(chunk.Web.URI))
	}
	return strings.TrimRight(b.String(), "\n")
}

// extractDomain returns the host of a URL, or 未知域名 when it cannot be
// parsed.
func extractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "未知域名"
	}
	return u.Host
}
