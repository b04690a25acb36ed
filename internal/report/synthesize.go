package report

import (
	"fmt"
	"strings"
)

// SynthesisConfig bounds the fallback generator.
type SynthesisConfig struct {
	// MaxItems caps the total number of fabricated findings.
	MaxItems int
}

// DefaultSynthesisConfig matches the historical client behavior.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{MaxItems: 8}
}

const (
	synthSnippetChars   = 300
	synthPointDescChars = 80
	genericFallbackText = "No obvious high-risk clauses detected"
)

// riskCategory pairs a keyword set with a fixed severity. The categories are
// intentionally coarse: first match wins and each category fires at most once
// per synthesis run, which keeps the fallback deterministic and explainable.
type riskCategory struct {
	name            string
	label           string
	score           int
	keywords        []string
	explanation     string
	recommendations []string
}

var riskCategories = []riskCategory{
	{
		name:     "eviction",
		label:    TierHigh,
		score:    85,
		keywords: []string{"evict", "vacate the premises", "remove the tenant", "writ of possession"},
		explanation: "The document references eviction or forced removal. These clauses often " +
			"allow the landlord to terminate occupancy on short notice.",
		recommendations: []string{
			"Verify the notice period and cure rights before any eviction can proceed.",
			"Check local tenant-protection law; eviction clauses frequently overreach it.",
		},
	},
	{
		name:     "late_payment",
		label:    TierMedium,
		score:    60,
		keywords: []string{"late fee", "late payment", "past due", "grace period", "penalty"},
		explanation: "The document references late-payment penalties. Stacked or compounding " +
			"fees can exceed what is legally enforceable.",
		recommendations: []string{
			"Confirm the fee amount and whether it compounds or is charged per occurrence.",
			"Compare the grace period against the statutory minimum in your jurisdiction.",
		},
	},
	{
		name:     "deposit",
		label:    TierMedium,
		score:    50,
		keywords: []string{"deposit", "non-refundable"},
		explanation: "The document references deposit terms. Non-refundable or loosely " +
			"conditioned deposits are a common source of disputes.",
		recommendations: []string{
			"Document the property condition in writing at move-in.",
			"Ask for the exact conditions under which the deposit is withheld.",
		},
	},
	{
		name:     "termination",
		label:    TierMedium,
		score:    55,
		keywords: []string{"terminat", "break the lease", "cancellation"},
		explanation: "The document references termination conditions. One-sided termination " +
			"rights shift most of the risk onto the tenant.",
		recommendations: []string{
			"Check whether termination rights are mutual and what notice each side owes.",
			"Look for early-termination fees and how they are calculated.",
		},
	},
	{
		name:     "subletting",
		label:    TierMedium,
		score:    40,
		keywords: []string{"sublet", "sublease", "assignment"},
		explanation: "The document restricts subletting or assignment, which limits your " +
			"options if circumstances change mid-term.",
		recommendations: []string{
			"Ask whether consent to sublet can be withheld unreasonably.",
			"Get any informal subletting permission added to the lease in writing.",
		},
	},
	{
		name:     "utilities",
		label:    TierLow,
		score:    25,
		keywords: []string{"utilit", "electricity", "water bill", "gas bill"},
		explanation: "The document assigns utility responsibilities. Ambiguity here usually " +
			"resolves against the tenant.",
		recommendations: []string{
			"List which utilities are included in rent and which are billed separately.",
			"Ask for historical utility costs for the unit.",
		},
	},
	{
		name:     "maintenance",
		label:    TierLow,
		score:    30,
		keywords: []string{"maintenance", "repair", "wear and tear", "upkeep"},
		explanation: "The document assigns maintenance duties. Broad tenant-side repair " +
			"obligations can cover structural issues that should be the landlord's.",
		recommendations: []string{
			"Clarify the boundary between ordinary wear and tenant-caused damage.",
			"Confirm response times for repairs the landlord is responsible for.",
		},
	},
}

// Synthesize fabricates a plausible assessment from summary text. It is
// invoked only when the backend reports zero risks, and its output is never
// empty: with no keyword matches at all it emits a single generic
// low-severity item advising manual review.
func Synthesize(summary DocumentSummary, cfg SynthesisConfig) RiskAssessment {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultSynthesisConfig().MaxItems
	}

	used := make(map[string]bool, len(riskCategories))
	items := []RiskItem{}

	// Pass 1: the full executive summary. Matches here take priority over
	// point-level matches for the same category.
	fullText := summary.ExecutiveSummary
	lowerFull := strings.ToLower(fullText)
	for _, cat := range riskCategories {
		if len(items) >= cfg.MaxItems {
			break
		}
		if !cat.matches(lowerFull) {
			continue
		}
		items = append(items, cat.itemFromSummary(fullText))
		used[cat.name] = true
	}

	// Pass 2: each summary point in order, one item per still-unused category.
	for _, point := range summary.Points {
		if len(items) >= cfg.MaxItems {
			break
		}
		lowerPoint := strings.ToLower(point)
		for _, cat := range riskCategories {
			if len(items) >= cfg.MaxItems {
				break
			}
			if used[cat.name] || !cat.matches(lowerPoint) {
				continue
			}
			items = append(items, cat.itemFromPoint(point))
			used[cat.name] = true
		}
	}

	if len(items) == 0 {
		items = append(items, genericRiskItem())
	}

	return RiskAssessment{
		Items:         items,
		DocumentLevel: ComputeDocumentLevel(items),
	}
}

func (c riskCategory) matches(lowerText string) bool {
	if lowerText == "" {
		return false
	}
	for _, keyword := range c.keywords {
		if strings.Contains(lowerText, keyword) {
			return true
		}
	}
	return false
}

func (c riskCategory) itemFromSummary(fullText string) RiskItem {
	return RiskItem{
		ID:               "synth-" + c.name,
		SeverityLabel:    c.label,
		SeverityScore:    c.score,
		Snippet:          truncateRunes(fullText, synthSnippetChars),
		ShortDescription: c.title(),
		Explanation:      c.explanation,
		Recommendations:  append([]string(nil), c.recommendations...),
	}
}

func (c riskCategory) itemFromPoint(point string) RiskItem {
	return RiskItem{
		ID:               "synth-" + c.name,
		SeverityLabel:    c.label,
		SeverityScore:    c.score,
		Snippet:          point,
		ShortDescription: ellipsize(point, synthPointDescChars),
		Explanation:      c.explanation,
		Recommendations:  append([]string(nil), c.recommendations...),
	}
}

func (c riskCategory) title() string {
	label := strings.ReplaceAll(c.name, "_", " ")
	return fmt.Sprintf("Potential %s clause", label)
}

func genericRiskItem() RiskItem {
	return RiskItem{
		ID:               "synth-generic",
		SeverityLabel:    TierLow,
		SeverityScore:    10,
		ShortDescription: genericFallbackText,
		Explanation: "Keyword screening found nothing noteworthy in the summary text. That " +
			"is not a clean bill of health; review the full document manually.",
		Recommendations: []string{
			"Read the original document in full rather than relying on this summary.",
			"Have a qualified professional review any clause you are unsure about.",
		},
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func ellipsize(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
