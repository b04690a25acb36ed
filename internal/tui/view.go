package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Codewiz19/legallens/internal/report"
)

func (m *model) View() string {
	switch m.stage {
	case stageInput:
		return m.viewInput()
	case stageLoading:
		return m.viewLoading()
	case stageDashboard, stageChat:
		return m.viewDashboard()
	default:
		return ""
	}
}

func (m *model) viewInput() string {
	parts := []string{
		m.heroView(),
		sectionHeaderStyle.Render("Document"),
		m.pathInput.View(),
		helperStyle.Render("Enter to analyze, Esc to quit."),
	}
	parts = append(parts, m.messageLines()...)
	return joinNonEmpty(parts)
}

func (m *model) viewLoading() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Analyzing %s", m.displayName)))
	b.WriteRune('\n')
	for _, step := range stepSequence {
		b.WriteString(m.stepLine(step))
		b.WriteRune('\n')
	}
	parts := []string{m.heroView(), b.String()}
	parts = append(parts, m.messageLines()...)
	parts = append(parts, m.activityView())
	return joinNonEmpty(parts)
}

func (m *model) stepLine(step pipelineStep) string {
	label := stepLabels[step]
	switch m.steps[step] {
	case stepDone:
		return stepDoneStyle.Render("  ✓ " + label)
	case stepRunning:
		return fmt.Sprintf("  %s %s", m.spinner.View(), label)
	case stepFailed:
		return stepFailedStyle.Render("  ✗ " + label)
	default:
		return helperStyle.Render("  · " + label)
	}
}

func (m *model) viewDashboard() string {
	if m.summary == nil && m.assessment == nil {
		return m.viewInput()
	}
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.viewport.View()}
	if m.stage == stageChat {
		parts = append(parts,
			sectionHeaderStyle.Render("Ask"),
			m.chatInput.View(),
			helperStyle.Render("Enter to send, Esc to return to the dashboard."))
	}
	parts = append(parts, m.messageLines()...)
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	parts = append(parts, m.activityView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render("LegalLens")
	line := fmt.Sprintf("%s  %s", title, taglineStyle.Render(heroTagline))
	if m.displayName != "" && m.stage != stageInput {
		line += helperStyle.Render(fmt.Sprintf("  ·  %s", m.displayName))
	}
	return heroBoxStyle.Render(line)
}

func (m *model) messageLines() []string {
	lines := []string{}
	if m.errorMessage != "" {
		lines = append(lines, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.chatPending {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		lines = append(lines, helperStyle.Render(message))
	}
	return lines
}

func (m *model) activityView() string {
	if len(m.activity) == 0 {
		return ""
	}
	start := len(m.activity) - activityLogLimit
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, activityLogLimit+1)
	lines = append(lines, sectionHeaderStyle.Render("Activity"))
	for _, entry := range m.activity[start:] {
		lines = append(lines, helperStyle.Render("  "+entry))
	}
	return strings.Join(lines, "\n")
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewportDirty = false
	m.viewport.SetContent(m.dashboardContent())
}

func (m *model) dashboardContent() string {
	width := m.viewport.Width
	if width < minViewportWidth {
		width = minViewportWidth
	}
	sections := []string{}
	if m.assessment != nil {
		sections = append(sections, m.gaugeSection())
	}
	if m.summary != nil {
		sections = append(sections, m.summarySection(width))
	}
	if m.assessment != nil {
		sections = append(sections, m.riskSection(width))
	}
	if len(m.chatHistory) > 0 {
		sections = append(sections, m.chatSection(width))
	}
	return strings.Join(sections, "\n\n")
}

func (m *model) gaugeSection() string {
	level := m.assessment.DocumentLevel
	filled := level.ComputedScore * gaugeWidth / 100
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := gaugeStyleForTier(level.Tier).Render(strings.Repeat("█", filled)) +
		gaugeEmptyStyle.Render(strings.Repeat("░", gaugeWidth-filled))
	counts := fmt.Sprintf("%d high · %d medium · %d low",
		level.Counts.High, level.Counts.Medium, level.Counts.Low)
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Overall Risk"),
		fmt.Sprintf("%s %s %d/100", bar, severityBadge(level.Tier), level.ComputedScore),
		helperStyle.Render(counts),
	})
}

func (m *model) summarySection(width int) string {
	lines := []string{sectionHeaderStyle.Render("Summary")}
	if m.summary.UsedFallbackProcessing {
		lines = append(lines, fallbackTagStyle.Render("generated with fallback processing"))
	}
	if m.summary.ExecutiveSummary != "" {
		lines = append(lines, wordwrap.String(m.summary.ExecutiveSummary, width))
	}
	if len(m.summary.Points) > 0 {
		lines = append(lines, "")
		for i, point := range m.summary.Points {
			lines = append(lines, wordwrap.String(fmt.Sprintf("%2d. %s", i+1, point), width))
		}
	}
	if len(m.summary.KeyClauses) > 0 {
		lines = append(lines, "", sectionHeaderStyle.Render("Key Clauses"))
		for _, clause := range m.summary.KeyClauses {
			lines = append(lines, wordwrap.String(fmt.Sprintf("  • %s: %s", clause.Title, clause.Text), width))
		}
	}
	return joinNonEmpty(lines)
}

func (m *model) riskSection(width int) string {
	lines := []string{sectionHeaderStyle.Render(fmt.Sprintf("Risk Clauses (%d)", len(m.assessment.Items)))}
	for i, item := range m.assessment.Items {
		lines = append(lines, m.riskCard(i, item, width)...)
	}
	return joinNonEmpty(lines)
}

// riskCard renders one clause: a single header line, plus the detail block
// when expanded. The cursor row is highlighted across the whole line.
func (m *model) riskCard(index int, item report.RiskItem, width int) []string {
	marker := "  "
	if index == m.cursor {
		marker = "▸ "
	}
	header := fmt.Sprintf("%s%s %s (%d)", marker, severityBadge(item.SeverityLabel), item.ShortDescription, item.SeverityScore)
	if index == m.cursor && m.stage == stageDashboard {
		header = cardCursorStyle.Render(header)
	}
	lines := []string{header}
	if !m.expanded[index] {
		return lines
	}
	indent := "      "
	if item.Snippet != "" {
		lines = append(lines, wordwrap.String(indent+"“"+item.Snippet+"”", width))
	}
	if item.Explanation != "" {
		lines = append(lines, wordwrap.String(indent+item.Explanation, width))
	}
	for _, rec := range item.Recommendations {
		lines = append(lines, wordwrap.String(indent+"→ "+rec, width))
	}
	if item.Citation.Page != nil {
		lines = append(lines, helperStyle.Render(fmt.Sprintf("%spage %d", indent, *item.Citation.Page)))
	}
	return lines
}

func (m *model) chatSection(width int) string {
	lines := []string{sectionHeaderStyle.Render("Conversation")}
	for _, exchange := range m.chatHistory {
		lines = append(lines, chatQuestionStyle.Render("You: ")+exchange.Question)
		switch {
		case exchange.Pending:
			lines = append(lines, chatAnswerStyle.Render(helperStyle.Render("thinking…")))
		case exchange.Error != "":
			lines = append(lines, chatAnswerStyle.Render(errorStyle.Render(exchange.Error)))
		default:
			lines = append(lines, chatAnswerStyle.Render(wordwrap.String(exchange.Answer, width-2)))
		}
	}
	return joinNonEmpty(lines)
}

func (m *model) helpView() string {
	rows := []string{
		"↑/↓, j/k   move between risk clauses",
		"enter      expand or collapse a clause",
		"c          ask a question about the document",
		"e          export the report as JSON",
		"n          analyze another document",
		"?          toggle this help",
		"q, Esc     quit",
	}
	return helpBoxStyle.Render(strings.Join(rows, "\n"))
}

func severityBadge(label string) string {
	switch label {
	case report.TierHigh:
		return severityHighStyle.Render("HIGH")
	case report.TierMedium:
		return severityMediumStyle.Render("MED")
	default:
		return severityLowStyle.Render("LOW")
	}
}

func gaugeStyleForTier(tier string) lipgloss.Style {
	switch tier {
	case report.TierHigh:
		return gaugeHighStyle
	case report.TierMedium:
		return gaugeMediumStyle
	default:
		return gaugeLowStyle
	}
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "\n")
}
