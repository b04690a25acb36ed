package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// NormalizeRisks reduces any risk payload shape the backend has ever
// produced to the canonical RiskAssessment. Recognized variants: an object
// wrapping a "risks" list, a bare array (optionally with a trailing
// document_level sentinel), and a keyed map of risk objects. Anything else
// degrades to an empty assessment with a zero-score Low aggregate. It never
// fails.
func NormalizeRisks(raw json.RawMessage) RiskAssessment {
	return normalizeRisksValue(reparse(decodeAny(raw)))
}

func normalizeRisksValue(v any) RiskAssessment {
	var candidates []any
	var aggregate any

	switch t := v.(type) {
	case []any:
		candidates, aggregate = splitTrailingAggregate(t)
	case map[string]any:
		if dl, ok := pick(t, "document_level", "documentLevel"); ok {
			aggregate = dl
		}
		if list, ok := pick(t, "risks", "items"); ok {
			switch lt := reparse(list).(type) {
			case []any:
				var trailing any
				candidates, trailing = splitTrailingAggregate(lt)
				if aggregate == nil {
					aggregate = trailing
				}
			case map[string]any:
				candidates = keyedRiskValues(lt)
			}
		} else {
			// Keyed-map variant: each value is one risk object.
			candidates = keyedRiskValues(t)
		}
	}

	items := make([]RiskItem, 0, len(candidates))
	for _, candidate := range candidates {
		if item, ok := normalizeRiskItem(candidate, len(items)); ok {
			items = append(items, item)
		}
	}

	assessment := RiskAssessment{Items: items}
	if dl, ok := documentLevelFrom(aggregate); ok {
		assessment.DocumentLevel = dl
	} else {
		assessment.DocumentLevel = ComputeDocumentLevel(items)
	}
	return assessment
}

// splitTrailingAggregate peels a trailing sentinel element that carries the
// document_level aggregate off the item list.
func splitTrailingAggregate(list []any) ([]any, any) {
	if len(list) == 0 {
		return list, nil
	}
	last, ok := reparse(list[len(list)-1]).(map[string]any)
	if !ok {
		return list, nil
	}
	if dl, ok := pick(last, "document_level", "documentLevel"); ok {
		return list[:len(list)-1], dl
	}
	return list, nil
}

func keyedRiskValues(m map[string]any) []any {
	values := make([]any, 0, len(m))
	for _, key := range sortedKeys(m) {
		switch key {
		case "document_level", "documentLevel":
			continue
		}
		if _, ok := reparse(m[key]).(map[string]any); ok {
			values = append(values, m[key])
		}
	}
	return values
}

func normalizeRiskItem(v any, index int) (RiskItem, bool) {
	m, ok := reparse(v).(map[string]any)
	if !ok {
		return RiskItem{}, false
	}
	item := RiskItem{Recommendations: []string{}}

	item.ID = pickString(m, "id", "risk_id", "riskId")
	if item.ID == "" {
		item.ID = fmt.Sprintf("risk-%d", index+1)
	}

	label := pickString(m, "provided_severity", "severity_level", "severityLabel", "severity")
	item.SeverityLabel = canonicalLabel(label)
	if score, ok := pickNumber(m, "severity_score", "severityScore", "score"); ok {
		item.SeverityScore = clampScore(int(math.Round(score)))
	} else {
		item.SeverityScore = scoreForLabel(label)
	}

	item.Snippet = pickString(m, "snippet", "text", "originalText")
	item.ShortDescription = pickString(m, "short_description", "shortDescription", "title")
	item.Explanation = pickString(m, "explanation", "description")
	if recs := stringList(pickAny(m, "recommendations", "actions")); recs != nil {
		item.Recommendations = recs
	}
	if c := citationFrom(pickAny(m, "citation")); c != nil {
		item.Citation = *c
	}
	return item, true
}

// canonicalLabel maps any casing of the severity label to title case.
// Unrecognized or missing labels default to Low.
func canonicalLabel(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(lower, "high"):
		return TierHigh
	case strings.Contains(lower, "med"):
		return TierMedium
	default:
		return TierLow
	}
}

// scoreForLabel backfills a missing numeric score from the textual label.
func scoreForLabel(label string) int {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "high"):
		return scoreForHigh
	case strings.Contains(lower, "med"):
		return scoreForMedium
	default:
		return scoreForLow
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// documentLevelFrom extracts a backend-supplied aggregate. It is passed
// through as given, not recomputed from the items; only a missing tier is
// filled in from the score.
func documentLevelFrom(v any) (DocumentLevel, bool) {
	m, ok := reparse(v).(map[string]any)
	if !ok {
		return DocumentLevel{}, false
	}
	dl := DocumentLevel{}
	if score, ok := pickNumber(m, "computed_score", "computedScore", "score"); ok {
		dl.ComputedScore = clampScore(int(math.Round(score)))
	}
	dl.Tier = pickString(m, "tier", "level")
	if dl.Tier == "" {
		dl.Tier = TierForScore(dl.ComputedScore)
	}
	if counts, ok := reparse(pickAny(m, "counts")).(map[string]any); ok {
		if f, ok := pickNumber(counts, "high"); ok {
			dl.Counts.High = int(f)
		}
		if f, ok := pickNumber(counts, "medium"); ok {
			dl.Counts.Medium = int(f)
		}
		if f, ok := pickNumber(counts, "low"); ok {
			dl.Counts.Low = int(f)
		}
	}
	return dl, true
}

// ComputeDocumentLevel derives the aggregate from the item scores: the
// rounded mean (0 when empty), the tier bucket, and counts that always sum
// to len(items).
func ComputeDocumentLevel(items []RiskItem) DocumentLevel {
	if len(items) == 0 {
		return DocumentLevel{Tier: TierLow}
	}
	sum := 0
	counts := SeverityCounts{}
	for _, item := range items {
		sum += item.SeverityScore
		switch {
		case item.SeverityScore >= 67:
			counts.High++
		case item.SeverityScore >= 34:
			counts.Medium++
		default:
			counts.Low++
		}
	}
	score := int(math.Round(float64(sum) / float64(len(items))))
	return DocumentLevel{
		ComputedScore: score,
		Tier:          TierForScore(score),
		Counts:        counts,
	}
}

// TierForScore buckets a 0-100 score into Low/Medium/High.
func TierForScore(score int) string {
	switch {
	case score <= 33:
		return TierLow
	case score <= 66:
		return TierMedium
	default:
		return TierHigh
	}
}
