package report

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeRisksWrappedList(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"risks": [
		{"id": "r1", "provided_severity": "HIGH", "severity_score": 90, "snippet": "Landlord may enter at any time."},
		{"severity_level": "medium", "text": "Late fee of 10% per day."}
	]}`)

	got := NormalizeRisks(payload)
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].SeverityLabel != "High" || got.Items[0].SeverityScore != 90 {
		t.Fatalf("severity not normalized: %+v", got.Items[0])
	}
	if got.Items[1].ID != "risk-2" {
		t.Fatalf("missing id not generated: %q", got.Items[1].ID)
	}
	if got.Items[1].Snippet != "Late fee of 10% per day." {
		t.Fatalf("snippet fallback key ignored: %q", got.Items[1].Snippet)
	}
	if got.DocumentLevel.ComputedScore != 70 {
		t.Fatalf("aggregate score: %d", got.DocumentLevel.ComputedScore)
	}
}

func TestNormalizeRisksScoreDefaultsFromLabel(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"risks": [{"provided_severity": "Medium", "snippet": "s"}]}`)
	got := NormalizeRisks(payload)
	if len(got.Items) != 1 || got.Items[0].SeverityScore != 50 {
		t.Fatalf("expected label-derived score 50, got %+v", got.Items)
	}

	payload = json.RawMessage(`{"risks": [{"snippet": "no severity at all"}]}`)
	got = NormalizeRisks(payload)
	if got.Items[0].SeverityScore != 15 || got.Items[0].SeverityLabel != "Low" {
		t.Fatalf("expected Low/15 default, got %+v", got.Items[0])
	}
}

func TestNormalizeRisksTrailingAggregateSentinel(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`[
		{"severity_score": 90},
		{"severity_score": 30},
		{"document_level": {"computed_score": 12, "tier": "Low", "counts": {"high": 5, "medium": 0, "low": 0}}}
	]`)

	got := NormalizeRisks(payload)
	if len(got.Items) != 2 {
		t.Fatalf("sentinel leaked into items: %d", len(got.Items))
	}
	// The supplied aggregate wins verbatim, even when inconsistent with items.
	if got.DocumentLevel.ComputedScore != 12 || got.DocumentLevel.Tier != "Low" || got.DocumentLevel.Counts.High != 5 {
		t.Fatalf("aggregate recomputed instead of passed through: %+v", got.DocumentLevel)
	}
}

func TestNormalizeRisksKeyedMap(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"b": {"snippet": "second", "severity_score": 20},
		"a": {"snippet": "first", "severity_score": 80}
	}`)

	got := NormalizeRisks(payload)
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Snippet != "first" || got.Items[1].Snippet != "second" {
		t.Fatalf("keyed map order not deterministic: %+v", got.Items)
	}
}

func TestNormalizeRisksUnrecognizedInput(t *testing.T) {
	t.Parallel()

	payloads := []json.RawMessage{
		nil,
		json.RawMessage(`null`),
		json.RawMessage(`"nothing to see"`),
		json.RawMessage(`12.5`),
		json.RawMessage(`garbage`),
		json.RawMessage(`{"risks": "oops"}`),
	}
	for _, payload := range payloads {
		got := NormalizeRisks(payload)
		if got.Items == nil || len(got.Items) != 0 {
			t.Fatalf("expected empty items for %s, got %#v", payload, got.Items)
		}
		if got.DocumentLevel.ComputedScore != 0 || got.DocumentLevel.Tier != "Low" {
			t.Fatalf("expected zero-score Low aggregate for %s, got %+v", payload, got.DocumentLevel)
		}
	}
}

func TestNormalizeRisksCountsSumToItems(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"risks": [
		{"severity_score": 90}, {"severity_score": 67}, {"severity_score": 66},
		{"severity_score": 34}, {"severity_score": 33}, {"severity_score": 0}
	]}`)

	got := NormalizeRisks(payload)
	counts := got.DocumentLevel.Counts
	if counts.High != 2 || counts.Medium != 2 || counts.Low != 2 {
		t.Fatalf("band boundaries off: %+v", counts)
	}
	if counts.High+counts.Medium+counts.Low != len(got.Items) {
		t.Fatalf("counts do not sum to item count: %+v vs %d", counts, len(got.Items))
	}
	// mean of 90,67,66,34,33,0 is 48.33 -> 48, Medium.
	if got.DocumentLevel.ComputedScore != 48 || got.DocumentLevel.Tier != "Medium" {
		t.Fatalf("aggregate formula off: %+v", got.DocumentLevel)
	}
}

func TestNormalizeRisksClampsScores(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"risks": [{"severity_score": 900}, {"severity_score": -5}]}`)
	got := NormalizeRisks(payload)
	if got.Items[0].SeverityScore != 100 || got.Items[1].SeverityScore != 0 {
		t.Fatalf("scores not clamped: %+v", got.Items)
	}
}

func TestNormalizeRisksCitation(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"risks": [
		{"snippet": "s", "citation": {"page": 3, "start_offset": 120}}
	]}`)
	got := NormalizeRisks(payload)
	c := got.Items[0].Citation
	if c.Page == nil || *c.Page != 3 {
		t.Fatalf("citation page lost: %+v", c)
	}
	if c.StartOffset == nil || *c.StartOffset != 120 || c.EndOffset != nil {
		t.Fatalf("citation offsets wrong: %+v", c)
	}
}

func TestNormalizeRisksIdempotent(t *testing.T) {
	t.Parallel()

	first := NormalizeRisks(json.RawMessage(`{"risks": [
		{"id": "r1", "provided_severity": "High", "severity_score": 88, "snippet": "clause",
		 "recommendations": ["check it"], "citation": {"page": 1}}
	]}`))
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal normalized assessment: %v", err)
	}
	second := NormalizeRisks(data)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization drifted:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestComputeDocumentLevelEmpty(t *testing.T) {
	t.Parallel()

	got := ComputeDocumentLevel(nil)
	if got.ComputedScore != 0 || got.Tier != "Low" {
		t.Fatalf("empty aggregate should be zero-score Low, got %+v", got)
	}
}
