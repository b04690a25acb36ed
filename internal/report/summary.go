package report

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitConfig carries the thresholds for reducing free text to bullet points.
// The values are empirically tuned; treat them as defaults, not semantics.
type SplitConfig struct {
	MinFragmentChars int
	ChunkChars       int
	MaxChunks        int
}

// DefaultSplitConfig returns the thresholds the backend's historical clients
// have always used.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		MinFragmentChars: 10,
		ChunkChars:       120,
		MaxChunks:        12,
	}
}

const maxSentencePoints = 10

func (c SplitConfig) sanitized() SplitConfig {
	def := DefaultSplitConfig()
	if c.MinFragmentChars <= 0 {
		c.MinFragmentChars = def.MinFragmentChars
	}
	if c.ChunkChars <= 0 {
		c.ChunkChars = def.ChunkChars
	}
	if c.MaxChunks <= 0 {
		c.MaxChunks = def.MaxChunks
	}
	return c
}

// NormalizeSummary reduces any summary payload the backend has ever produced
// to the canonical DocumentSummary. It never fails: unrecognized input
// degrades to an empty summary with a non-nil Points slice.
func NormalizeSummary(raw json.RawMessage, cfg SplitConfig) DocumentSummary {
	return normalizeSummaryValue(reparse(decodeAny(raw)), cfg.sanitized())
}

func normalizeSummaryValue(v any, cfg SplitConfig) DocumentSummary {
	out := DocumentSummary{Points: []string{}}

	switch t := v.(type) {
	case string:
		// A bare string payload is the executive summary itself.
		out.ExecutiveSummary = strings.TrimSpace(t)
	case []any:
		// A bare array is an already-split points list.
		out.Points = append(out.Points, stringList(t)...)
	case map[string]any:
		out = normalizeSummaryObject(t, cfg)
	}

	if len(out.Points) == 0 && strings.TrimSpace(out.ExecutiveSummary) != "" {
		out.Points = SplitPoints(out.ExecutiveSummary, cfg)
	}
	if out.Points == nil {
		out.Points = []string{}
	}
	return out
}

func normalizeSummaryObject(m map[string]any, cfg SplitConfig) DocumentSummary {
	out := DocumentSummary{Points: []string{}}
	out.DocumentID = pickString(m, "doc_id", "document_id", "documentId")
	out.Purpose = pickString(m, "purpose")
	out.CorpusReference = pickString(m, "corpus_reference", "corpusReference", "corpus_name")
	if b, ok := pickBool(m, "used_fallback_processing", "usedFallbackProcessing"); ok {
		out.UsedFallbackProcessing = b
	}
	out.KeyClauses = keyClauseList(pickAny(m, "key_clauses", "keyClauses"))

	var nestedPoints []string
	if v, ok := pick(m, "executive_summary", "executiveSummary"); ok {
		switch inner := reparse(v).(type) {
		case map[string]any:
			// Double-encoded structured summary: lift its fields.
			nested := normalizeSummaryObject(inner, cfg)
			out.ExecutiveSummary = nested.ExecutiveSummary
			nestedPoints = nested.Points
			if len(out.KeyClauses) == 0 {
				out.KeyClauses = nested.KeyClauses
			}
		default:
			out.ExecutiveSummary = coerceString(v)
		}
	}

	if points := stringList(pickAny(m, "points", "key_points", "keyPoints")); len(points) > 0 {
		out.Points = points
	} else if len(nestedPoints) > 0 {
		out.Points = nestedPoints
	}

	// Legacy flat shape: a single "summary" string.
	if out.ExecutiveSummary == "" {
		if s := pickString(m, "summary"); s != "" {
			out.ExecutiveSummary = s
		}
	}
	return out
}

func keyClauseList(v any) []KeyClause {
	items, ok := reparse(v).([]any)
	if !ok {
		return nil
	}
	clauses := make([]KeyClause, 0, len(items))
	for _, item := range items {
		m, ok := reparse(item).(map[string]any)
		if !ok {
			continue
		}
		clause := KeyClause{
			Title: pickString(m, "title", "name"),
			Text:  pickString(m, "text", "clause_text", "clauseText"),
		}
		if f, ok := pickNumber(m, "importance", "weight"); ok {
			clause.Importance = f
		}
		clause.Citation = citationFrom(pickAny(m, "citation"))
		if clause.Title == "" && clause.Text == "" {
			continue
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 0 {
		return nil
	}
	return clauses
}

// SplitPoints turns free text into bullet fragments. The ladder guarantees a
// non-empty result for any non-empty input: sentence boundaries first, then
// comma/semicolon splits, then fixed-size windows.
func SplitPoints(text string, cfg SplitConfig) []string {
	cfg = cfg.sanitized()
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	if points := splitSentences(text, cfg.MinFragmentChars); len(points) >= 2 {
		return capList(points, maxSentencePoints)
	}
	if points := splitDelimiters(text, cfg.MinFragmentChars); len(points) >= 2 {
		return capList(points, maxSentencePoints)
	}
	return chunkText(text, cfg.ChunkChars, cfg.MaxChunks)
}

// splitSentences cuts at ., ? or ! followed by whitespace (or end of text),
// discarding fragments shorter than minLen.
func splitSentences(text string, minLen int) []string {
	var sentences []string
	start := 0
	for idx, r := range text {
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		end := idx + utf8.RuneLen(r)
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				continue
			}
		}
		if segment := strings.TrimSpace(text[start:end]); len(segment) >= minLen {
			sentences = append(sentences, segment)
		}
		start = end
	}
	if start < len(text) {
		if segment := strings.TrimSpace(text[start:]); len(segment) >= minLen {
			sentences = append(sentences, segment)
		}
	}
	return sentences
}

func splitDelimiters(text string, minLen int) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var fragments []string
	for _, part := range parts {
		if segment := strings.TrimSpace(part); len(segment) >= minLen {
			fragments = append(fragments, segment)
		}
	}
	return fragments
}

func chunkText(text string, size, max int) []string {
	runes := []rune(text)
	chunks := make([]string, 0, max)
	for start := 0; start < len(runes) && len(chunks) < max; start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if segment := strings.TrimSpace(string(runes[start:end])); segment != "" {
			chunks = append(chunks, segment)
		}
	}
	return chunks
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
