package tui

import "time"

type stage int

const (
	stageInput stage = iota
	stageLoading
	stageDashboard
	stageChat
)

// Pipeline steps, in execution order. The loading screen renders them as a
// checklist while the jobs run.
type pipelineStep int

const (
	stepLoad pipelineStep = iota
	stepUpload
	stepSummarize
	stepRisks
)

var stepLabels = map[pipelineStep]string{
	stepLoad:      "Read document",
	stepUpload:    "Upload to analysis service",
	stepSummarize: "Summarize",
	stepRisks:     "Extract risk clauses",
}

var stepSequence = []pipelineStep{stepLoad, stepUpload, stepSummarize, stepRisks}

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

const heroTagline = "Read the fine print before you sign."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	gaugeWidth                = 30
	activityLogLimit          = 3
)

type chatExchange struct {
	Question string
	Answer   string
	Error    string
	Pending  bool
	AskedAt  time.Time
}

const (
	pathPlaceholder = "Path to a lease, contract, or terms document…"
	chatPlaceholder = "Ask about the analyzed document…"
)
