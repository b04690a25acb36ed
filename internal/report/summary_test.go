package report

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeSummaryLegacyFlatString(t *testing.T) {
	t.Parallel()

	text := "Tenant must pay rent by the 1st. Late fees apply after a 5-day grace period. Deposit is non-refundable."
	payload := json.RawMessage(`{"summary": "` + text + `"}`)

	got := NormalizeSummary(payload, SplitConfig{})
	if got.ExecutiveSummary != text {
		t.Fatalf("executive summary mutated: %q", got.ExecutiveSummary)
	}
	if len(got.Points) != 3 {
		t.Fatalf("expected 3 sentence points, got %d: %#v", len(got.Points), got.Points)
	}
	if got.Points[0] != "Tenant must pay rent by the 1st." {
		t.Fatalf("unexpected first point: %q", got.Points[0])
	}
}

func TestNormalizeSummaryEmptyObject(t *testing.T) {
	t.Parallel()

	got := NormalizeSummary(json.RawMessage(`{}`), SplitConfig{})
	if got.ExecutiveSummary != "" {
		t.Fatalf("expected empty executive summary, got %q", got.ExecutiveSummary)
	}
	if got.Points == nil || len(got.Points) != 0 {
		t.Fatalf("points must be an empty non-nil slice, got %#v", got.Points)
	}
}

func TestNormalizeSummaryNeverPanics(t *testing.T) {
	t.Parallel()

	payloads := []json.RawMessage{
		nil,
		json.RawMessage(``),
		json.RawMessage(`null`),
		json.RawMessage(`42`),
		json.RawMessage(`true`),
		json.RawMessage(`not even json`),
		json.RawMessage(`{"points": 7, "executive_summary": {"weird": []}}`),
		json.RawMessage(`[[["nested"]]]`),
	}
	for _, payload := range payloads {
		got := NormalizeSummary(payload, SplitConfig{})
		if got.Points == nil {
			t.Fatalf("points nil for payload %s", payload)
		}
	}
}

func TestNormalizeSummaryBareString(t *testing.T) {
	t.Parallel()

	got := NormalizeSummary(json.RawMessage(`"This lease covers a 12-month term. Rent is due monthly."`), SplitConfig{})
	if got.ExecutiveSummary != "This lease covers a 12-month term. Rent is due monthly." {
		t.Fatalf("unexpected executive summary: %q", got.ExecutiveSummary)
	}
	if len(got.Points) != 2 {
		t.Fatalf("expected sentence-derived points, got %#v", got.Points)
	}
}

func TestNormalizeSummaryStructuredPassThrough(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"doc_id": "doc-7",
		"executive_summary": "A commercial lease with unusual indemnity terms.",
		"key_points": ["Indemnity is one-sided.", "Insurance minimums are high."],
		"key_clauses": [{"title": "Indemnity", "text": "Tenant indemnifies landlord.", "importance": 0.9}],
		"purpose": "lease review",
		"used_fallback_processing": true,
		"corpus_name": "leases-v2"
	}`)

	got := NormalizeSummary(payload, SplitConfig{})
	if got.DocumentID != "doc-7" {
		t.Fatalf("document id: %q", got.DocumentID)
	}
	if len(got.Points) != 2 || got.Points[0] != "Indemnity is one-sided." {
		t.Fatalf("points not passed through: %#v", got.Points)
	}
	if len(got.KeyClauses) != 1 || got.KeyClauses[0].Title != "Indemnity" || got.KeyClauses[0].Importance != 0.9 {
		t.Fatalf("key clauses not passed through: %#v", got.KeyClauses)
	}
	if !got.UsedFallbackProcessing || got.CorpusReference != "leases-v2" || got.Purpose != "lease review" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestNormalizeSummaryDoubleEncodedExecutive(t *testing.T) {
	t.Parallel()

	inner := `{"executive_summary": "Short-term rental agreement.", "key_points": ["Nightly rate applies."]}`
	payload, err := json.Marshal(map[string]any{"executive_summary": inner})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	got := NormalizeSummary(payload, SplitConfig{})
	if got.ExecutiveSummary != "Short-term rental agreement." {
		t.Fatalf("embedded summary not lifted: %q", got.ExecutiveSummary)
	}
	if len(got.Points) != 1 || got.Points[0] != "Nightly rate applies." {
		t.Fatalf("embedded points not lifted: %#v", got.Points)
	}
}

func TestNormalizeSummaryKeepsUnparseableStrings(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"executive_summary": "{broken json but long enough to keep"}`)
	got := NormalizeSummary(payload, SplitConfig{})
	if got.ExecutiveSummary != "{broken json but long enough to keep" {
		t.Fatalf("raw string should be kept verbatim, got %q", got.ExecutiveSummary)
	}
}

func TestNormalizeSummaryIdempotent(t *testing.T) {
	t.Parallel()

	first := NormalizeSummary(json.RawMessage(`{"summary": "Rent escalates annually. Renewal is automatic unless notice is given."}`), SplitConfig{})
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal normalized summary: %v", err)
	}
	second := NormalizeSummary(data, SplitConfig{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization drifted:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestSplitPointsDelimiterFallback(t *testing.T) {
	t.Parallel()

	got := SplitPoints("monthly rent of $2000, security deposit of $4000; utilities not included", SplitConfig{})
	if len(got) != 3 {
		t.Fatalf("expected delimiter split, got %#v", got)
	}
}

func TestSplitPointsChunksUnbrokenText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 500)
	got := SplitPoints(text, SplitConfig{})
	if len(got) != 5 {
		t.Fatalf("expected 5 chunks of 120, got %d", len(got))
	}
	if len(got[0]) != 120 {
		t.Fatalf("chunk width: %d", len(got[0]))
	}

	long := strings.Repeat("y", 10_000)
	capped := SplitPoints(long, SplitConfig{})
	if len(capped) != 12 {
		t.Fatalf("chunk cap violated: %d", len(capped))
	}
}

func TestSplitPointsDiscardsShortFragments(t *testing.T) {
	t.Parallel()

	got := SplitPoints("Ok. No. The tenant waives the right to a jury trial. Fees compound monthly.", SplitConfig{})
	for _, point := range got {
		if len(point) < 10 {
			t.Fatalf("short fragment survived: %q", point)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 qualifying sentences, got %#v", got)
	}
}

func TestSplitPointsHonorsCustomThresholds(t *testing.T) {
	t.Parallel()

	cfg := SplitConfig{MinFragmentChars: 1, ChunkChars: 5, MaxChunks: 2}
	got := SplitPoints("abcdefghij", cfg)
	if len(got) != 2 || got[0] != "abcde" {
		t.Fatalf("custom chunking ignored: %#v", got)
	}
}
