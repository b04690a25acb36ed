package report

// DocumentSummary is the canonical shape every summary payload is reduced to.
// Points is never nil after normalization, so callers can iterate it without
// guarding.
type DocumentSummary struct {
	DocumentID             string      `json:"documentId,omitempty"`
	ExecutiveSummary       string      `json:"executiveSummary"`
	Points                 []string    `json:"points"`
	KeyClauses             []KeyClause `json:"keyClauses,omitempty"`
	Purpose                string      `json:"purpose,omitempty"`
	UsedFallbackProcessing bool        `json:"usedFallbackProcessing,omitempty"`
	CorpusReference        string      `json:"corpusReference,omitempty"`
}

// KeyClause is one clause the backend singled out, with a relative importance
// weight and an optional citation back into the document.
type KeyClause struct {
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Importance float64   `json:"importance"`
	Citation   *Citation `json:"citation,omitempty"`
}

// RiskItem is one flagged clause. SeverityLabel and SeverityScore are both
// always populated after normalization; the score is derived from the label
// only when the payload did not carry one.
type RiskItem struct {
	ID               string   `json:"id"`
	SeverityLabel    string   `json:"severityLabel"`
	SeverityScore    int      `json:"severityScore"`
	Snippet          string   `json:"snippet"`
	ShortDescription string   `json:"shortDescription"`
	Explanation      string   `json:"explanation"`
	Recommendations  []string `json:"recommendations"`
	Citation         Citation `json:"citation"`
}

// Citation locates a finding inside the source document. Every field is
// independently optional.
type Citation struct {
	Page        *int `json:"page,omitempty"`
	StartOffset *int `json:"startOffset,omitempty"`
	EndOffset   *int `json:"endOffset,omitempty"`
}

// RiskAssessment aggregates all risk items for one document. DocumentLevel is
// always present after normalization.
type RiskAssessment struct {
	Items         []RiskItem    `json:"items"`
	DocumentLevel DocumentLevel `json:"documentLevel"`
}

// DocumentLevel is the overall verdict: a 0-100 score, a tier bucket, and
// per-tier counts. When computed locally the counts sum to len(Items);
// backend-supplied aggregates pass through without that guarantee.
type DocumentLevel struct {
	ComputedScore int            `json:"computedScore"`
	Tier          string         `json:"tier"`
	Counts        SeverityCounts `json:"counts"`
}

// SeverityCounts buckets risk items by score band.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Severity tiers and label defaults shared by the normalizer and synthesizer.
const (
	TierLow    = "Low"
	TierMedium = "Medium"
	TierHigh   = "High"
)

const (
	scoreForHigh   = 85
	scoreForMedium = 50
	scoreForLow    = 15
)
