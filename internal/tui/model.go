// Package tui is the interactive dashboard: document intake, staged pipeline
// progress, the risk gauge with expandable clause cards, and a follow-up chat.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/Codewiz19/legallens/internal/backend"
	"github.com/Codewiz19/legallens/internal/config"
	"github.com/Codewiz19/legallens/internal/document"
	"github.com/Codewiz19/legallens/internal/report"
	"github.com/Codewiz19/legallens/internal/session"
)

// Options wires runtime dependencies into the TUI program.
type Options struct {
	Backend      backend.Client
	Config       config.Config
	Store        *session.Store
	DocumentPath string
	Resume       *session.Snapshot
}

// Run mounts the model into a Program and blocks until exit.
func Run(opts Options, altScreen bool) error {
	progOpts := []tea.ProgramOption{}
	if altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(New(opts), progOpts...)
	_, err := program.Run()
	return err
}

// New returns a tea.Model ready to be mounted into a Program.
func New(opts Options) tea.Model {
	pathInput := textinput.New()
	pathInput.Placeholder = pathPlaceholder
	pathInput.Focus()
	pathInput.CharLimit = 250
	pathInput.Width = 70

	chatInput := textinput.New()
	chatInput.Placeholder = chatPlaceholder
	chatInput.CharLimit = 250
	chatInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	m := &model{
		opts:          opts,
		stage:         stageInput,
		pathInput:     pathInput,
		chatInput:     chatInput,
		spinner:       spin,
		viewport:      vp,
		jobs:          newJobBus(opts.Config.Timeout()),
		steps:         map[pipelineStep]stepStatus{},
		expanded:      map[int]bool{},
		viewportDirty: true,
		infoMessage:   "Enter the path of a document to analyze.",
	}
	if opts.Resume != nil {
		m.restoreSnapshot(opts.Resume)
	}
	return m
}

type model struct {
	opts  Options
	stage stage

	pathInput textinput.Model
	chatInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model

	jobs *jobBus

	doc         *document.Document
	docID       string
	displayName string
	analyzedAt  time.Time
	summary     *report.DocumentSummary
	assessment  *report.RiskAssessment

	steps map[pipelineStep]stepStatus

	cursor   int
	expanded map[int]bool

	chatSessionID string
	chatHistory   []chatExchange
	chatPending   bool

	activity []string

	infoMessage   string
	errorMessage  string
	helpVisible   bool
	viewportDirty bool
}

type docResultMsg struct {
	doc *document.Document
	err error
}

type uploadResultMsg struct {
	result backend.UploadResult
	err    error
}

type summaryResultMsg struct {
	docID   string
	summary report.DocumentSummary
	err     error
}

type risksResultMsg struct {
	docID      string
	assessment report.RiskAssessment
	err        error
}

type chatResultMsg struct {
	docID  string
	index  int
	answer string
	err    error
}

type persistResultMsg struct {
	err error
}

type exportResultMsg struct {
	path string
	err  error
}

func (m *model) Init() tea.Cmd {
	if m.stage == stageDashboard {
		return nil
	}
	if m.opts.DocumentPath != "" {
		return tea.Batch(textinput.Blink, m.startPipeline(m.opts.DocumentPath))
	}
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.chatPending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			switch m.stage {
			case stageChat:
				m.stage = stageDashboard
				m.chatInput.Blur()
				m.markViewportDirty()
				return m, nil
			case stageDashboard:
				if m.helpVisible {
					m.helpVisible = false
					return m, nil
				}
				return m, tea.Quit
			default:
				return m, tea.Quit
			}
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageDashboard {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobStartedMsg:
		m.logActivity(fmt.Sprintf("%s started", msg.Kind))
		return m, nil
	case jobDoneMsg:
		if msg.Err != "" {
			m.logActivity(fmt.Sprintf("%s failed after %s", msg.Kind, msg.Duration.Round(time.Millisecond)))
		} else {
			m.logActivity(fmt.Sprintf("%s done in %s", msg.Kind, msg.Duration.Round(time.Millisecond)))
		}
		if msg.Payload != nil {
			return m.Update(msg.Payload)
		}
		return m, nil
	case docResultMsg:
		if msg.err != nil {
			return m.failPipeline(stepLoad, msg.err)
		}
		m.doc = msg.doc
		m.displayName = msg.doc.DisplayName
		m.steps[stepLoad] = stepDone
		m.steps[stepUpload] = stepRunning
		return m, m.jobs.Start(jobKindUpload, uploadJob(m.opts.Backend, msg.doc))
	case uploadResultMsg:
		if msg.err != nil {
			return m.failPipeline(stepUpload, msg.err)
		}
		m.docID = msg.result.DocID
		m.steps[stepUpload] = stepDone
		m.steps[stepSummarize] = stepRunning
		return m, m.jobs.Start(jobKindSummarize, summarizeJob(m.opts.Backend, m.opts.Config, m.docID, m.displayName))
	case summaryResultMsg:
		if msg.docID != m.docID {
			return m, nil
		}
		if msg.err != nil {
			return m.failPipeline(stepSummarize, msg.err)
		}
		summary := msg.summary
		m.summary = &summary
		m.steps[stepSummarize] = stepDone
		m.steps[stepRisks] = stepRunning
		return m, m.jobs.Start(jobKindRisks, risksJob(m.opts.Backend, m.docID))
	case risksResultMsg:
		if msg.docID != m.docID {
			return m, nil
		}
		assessment := msg.assessment
		if msg.err != nil {
			// The summary is already in hand; degrade to the heuristic
			// synthesizer rather than dropping the whole analysis.
			m.errorMessage = fmt.Sprintf("risk extraction failed: %v", msg.err)
			m.infoMessage = "Showing heuristic assessment derived from the summary."
			assessment = report.Synthesize(*m.summary, m.opts.Config.SynthesisConfig())
		} else if len(assessment.Items) == 0 {
			m.infoMessage = "Backend flagged no clauses; showing heuristic assessment."
			assessment = report.Synthesize(*m.summary, m.opts.Config.SynthesisConfig())
		} else {
			m.errorMessage = ""
			m.infoMessage = fmt.Sprintf("Analysis of %s complete. Press enter to expand a clause.", m.displayName)
		}
		m.steps[stepRisks] = stepDone
		m.assessment = &assessment
		m.analyzedAt = time.Now()
		m.stage = stageDashboard
		m.cursor = 0
		m.expanded = map[int]bool{}
		m.viewport.SetYOffset(0)
		m.markViewportDirty()
		return m, m.jobs.Start(jobKindPersist, persistJob(m.opts.Store, m.snapshot()))
	case chatResultMsg:
		if msg.docID != m.docID {
			return m, nil
		}
		m.chatPending = false
		if msg.index >= 0 && msg.index < len(m.chatHistory) {
			entry := &m.chatHistory[msg.index]
			entry.Pending = false
			if msg.err != nil {
				entry.Error = msg.err.Error()
				m.errorMessage = entry.Error
				m.infoMessage = "Question failed. Ask again with c."
			} else {
				entry.Answer = msg.answer
				m.errorMessage = ""
				m.infoMessage = "Answer ready. Ask another or press Esc."
			}
		}
		m.markViewportDirty()
		return m, nil
	case persistResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("session not saved: %v", msg.err)
		}
		return m, nil
	case exportResultMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			m.infoMessage = "Export failed."
		} else {
			m.errorMessage = ""
			m.infoMessage = fmt.Sprintf("Report written to %s", msg.path)
		}
		return m, nil
	case tea.WindowSizeMsg:
		newWidth := msg.Width - viewportHorizontalPadding
		if newWidth < minViewportWidth {
			newWidth = minViewportWidth
		}
		m.viewport.Width = newWidth
		height := msg.Height - 8
		if height < 5 {
			height = 5
		}
		m.viewport.Height = height
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageInput:
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(key)
		if key.Type == tea.KeyEnter {
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.errorMessage = "Enter a document path."
				return m, cmd
			}
			return m, tea.Batch(cmd, m.startPipeline(path))
		}
		return m, cmd
	case stageLoading:
		return m, nil
	case stageDashboard:
		return m.handleDashboardKey(key)
	case stageChat:
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(key)
		if key.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.chatInput.Value())
			if question == "" || m.chatPending {
				return m, cmd
			}
			m.chatInput.SetValue("")
			return m, tea.Batch(cmd, m.spinner.Tick, m.askQuestion(question))
		}
		return m, cmd
	}
	return m, nil
}

func (m *model) handleDashboardKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.markViewportDirty()
		}
		return m, nil
	case "down", "j":
		if m.assessment != nil && m.cursor < len(m.assessment.Items)-1 {
			m.cursor++
			m.markViewportDirty()
		}
		return m, nil
	case "enter", " ":
		m.expanded[m.cursor] = !m.expanded[m.cursor]
		m.markViewportDirty()
		return m, nil
	case "e":
		return m, m.jobs.Start(jobKindExport, exportJob(m.snapshot(), m.exportPath()))
	case "c":
		m.stage = stageChat
		m.chatInput.Focus()
		m.markViewportDirty()
		return m, textinput.Blink
	case "n":
		m.resetForNewDocument()
		return m, textinput.Blink
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "q":
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
}

// startPipeline resets all per-document state and kicks off the strictly
// ordered load, upload, summarize, risks sequence. Each stage starts the
// next from its result message; nothing runs concurrently against the
// backend.
func (m *model) startPipeline(path string) tea.Cmd {
	m.stage = stageLoading
	m.doc = nil
	m.docID = ""
	m.displayName = filepath.Base(path)
	m.summary = nil
	m.assessment = nil
	m.cursor = 0
	m.expanded = map[int]bool{}
	m.chatHistory = nil
	m.chatSessionID = ""
	m.chatPending = false
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Analyzing %s…", m.displayName)
	m.steps = map[pipelineStep]stepStatus{stepLoad: stepRunning}
	if m.opts.Store != nil {
		// The slot holds one analysis at a time; the old one is gone the
		// moment a new run starts.
		_ = m.opts.Store.Clear()
	}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindLoad, loadDocumentJob(path)))
}

func (m *model) failPipeline(step pipelineStep, err error) (tea.Model, tea.Cmd) {
	m.steps[step] = stepFailed
	m.stage = stageInput
	m.pathInput.Focus()
	m.errorMessage = err.Error()
	m.infoMessage = "Fix the problem and try again."
	return m, nil
}

func (m *model) askQuestion(question string) tea.Cmd {
	if m.chatSessionID == "" {
		m.chatSessionID = uuid.NewString()
	}
	index := len(m.chatHistory)
	m.chatHistory = append(m.chatHistory, chatExchange{
		Question: question,
		Pending:  true,
		AskedAt:  time.Now(),
	})
	m.chatPending = true
	m.infoMessage = "Waiting for an answer…"
	m.markViewportDirty()
	return m.jobs.Start(jobKindChat, chatJob(m.opts.Backend, m.docID, m.chatSessionID, m.chatMessages(), index))
}

// chatMessages rebuilds the full turn history so the backend sees the whole
// conversation each time.
func (m *model) chatMessages() []backend.ChatMessage {
	messages := make([]backend.ChatMessage, 0, len(m.chatHistory)*2)
	for _, exchange := range m.chatHistory {
		messages = append(messages, backend.ChatMessage{Role: "user", Content: exchange.Question})
		if exchange.Answer != "" {
			messages = append(messages, backend.ChatMessage{Role: "assistant", Content: exchange.Answer})
		}
	}
	return messages
}

func (m *model) resetForNewDocument() {
	m.stage = stageInput
	m.pathInput.SetValue("")
	m.pathInput.Focus()
	m.errorMessage = ""
	m.infoMessage = "Enter the path of a document to analyze."
	m.markViewportDirty()
}

func (m *model) restoreSnapshot(snapshot *session.Snapshot) {
	m.stage = stageDashboard
	m.docID = snapshot.DocumentID
	m.displayName = snapshot.DisplayName
	m.analyzedAt = snapshot.SavedAt
	m.summary = snapshot.Summary
	m.assessment = snapshot.Assessment
	m.infoMessage = fmt.Sprintf("Resumed analysis of %s from %s.", snapshot.DisplayName, snapshot.SavedAt.Format("Jan 2 15:04"))
	m.markViewportDirty()
}

func (m *model) snapshot() session.Snapshot {
	return session.Snapshot{
		DocumentID:  m.docID,
		DisplayName: m.displayName,
		SavedAt:     m.analyzedAt,
		Summary:     m.summary,
		Assessment:  m.assessment,
	}
}

func (m *model) exportPath() string {
	base := strings.TrimSuffix(m.displayName, filepath.Ext(m.displayName))
	if base == "" {
		base = "legallens"
	}
	return base + "-report.json"
}

func (m *model) logActivity(line string) {
	m.activity = append(m.activity, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), line))
	if len(m.activity) > 20 {
		m.activity = m.activity[len(m.activity)-20:]
	}
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor = lipgloss.Color("#2ec4b6")
	heroTextColor   = lipgloss.Color("#eaf9f7")

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Padding(0, 2)
	taglineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ad9d2")).Italic(true)

	severityHighStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#e63946")).Padding(0, 1)
	severityMediumStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffb703")).Padding(0, 1)
	severityLowStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)

	gaugeHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e63946"))
	gaugeMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb703"))
	gaugeLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a9d8f"))
	gaugeEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	cardCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	fallbackTagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb703")).Italic(true)
	stepDoneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a9d8f"))
	stepFailedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	chatAnswerStyle   = lipgloss.NewStyle().PaddingLeft(2)
	chatQuestionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
)
