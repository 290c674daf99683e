package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"ragdesk/cmd/ragdesk/ui"
	"ragdesk/internal/api"
	"ragdesk/internal/history"
	"ragdesk/internal/logging"
	"ragdesk/internal/workflow"
)

// AssessModel submits text for grading and shows the result next to the
// most recent past assessments.
type AssessModel struct {
	styles ui.Styles
	client *api.Client
	hist   *history.Store
	limit  int

	input textarea.Model
	spin  spinner.Model

	status   workflow.Status
	result   *api.Assessment
	rendered string // glamour-rendered explanation
	entries  []history.Entry

	width  int
	height int
}

// NewAssessModel builds the assess screen. hist may be nil when local
// history is disabled.
func NewAssessModel(styles ui.Styles, client *api.Client, hist *history.Store, limit int) AssessModel {
	ta := textarea.New()
	ta.Placeholder = "Paste the text to assess..."
	ta.SetWidth(72)
	ta.SetHeight(8)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return AssessModel{
		styles: styles,
		client: client,
		hist:   hist,
		limit:  limit,
		input:  ta,
		spin:   sp,
	}
}

func (m AssessModel) mountCmd() tea.Cmd {
	return func() tea.Msg {
		return assessMountMsg{}
	}
}

func (m AssessModel) resize(w, h int) AssessModel {
	m.width, m.height = w, h
	if w > 8 {
		m.input.SetWidth(w - 8)
	}
	return m
}

func (m AssessModel) Update(msg tea.Msg) (AssessModel, tea.Cmd) {
	switch msg := msg.(type) {
	case assessMountMsg:
		return m, tea.Batch(textarea.Blink, m.loadHistoryCmd())

	case assessResultMsg:
		if msg.err != nil {
			m.status.Fail(workflow.Message(msg.err, workflow.FallbackAssess))
			return m, nil
		}
		m.status.Succeed()
		result := msg.result
		m.result = &result
		m.rendered = m.renderExplanation(result.Explanation)
		return m, m.recordCmd(msg.text, result)

	case historyLoadedMsg:
		if msg.err != nil {
			logging.History("failed to load history: %v", msg.err)
			return m, nil
		}
		m.entries = msg.entries
		return m, nil

	case spinner.TickMsg:
		if m.status.Busy() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+d":
			return m.submit()
		case "esc":
			return m, navigate(ScreenDashboard)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AssessModel) submit() (AssessModel, tea.Cmd) {
	// Empty text is a legal submission; the server grades it like any other.
	text := m.input.Value()

	if !m.status.Start() {
		return m, nil
	}
	// Each submission starts from a clean slate.
	m.result = nil
	m.rendered = ""

	client := m.client
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		a, err := client.Assess(context.Background(), text)
		return assessResultMsg{text: text, result: a, err: err}
	})
}

// recordCmd persists the assessment and reloads the recent entries.
func (m AssessModel) recordCmd(text string, a api.Assessment) tea.Cmd {
	hist := m.hist
	limit := m.limit
	if hist == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := hist.Add(text, a.Grade, a.Explanation); err != nil {
			logging.History("failed to record assessment: %v", err)
		}
		entries, err := hist.Recent(limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m AssessModel) loadHistoryCmd() tea.Cmd {
	hist := m.hist
	limit := m.limit
	if hist == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := hist.Recent(limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m AssessModel) renderExplanation(text string) string {
	width := m.width - 8
	if width < 40 {
		width = 72
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m AssessModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("ragdesk"))
	b.WriteString("  ")
	b.WriteString(m.styles.Badge.Render("assess"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.status.Busy():
		b.WriteString(m.spin.View() + m.styles.Muted.Render(" assessing..."))
	case m.status.Failed():
		b.WriteString(m.styles.Error.Render(m.status.Err()))
	case m.result != nil:
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("Grade: %.1f", m.result.Grade)))
		if m.rendered != "" {
			b.WriteString("\n")
			b.WriteString(m.rendered)
		}
	}

	if len(m.entries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Subtitle.Render("Recent assessments"))
		b.WriteString("\n")
		for _, e := range m.entries {
			preview := e.Text
			if len(preview) > 48 {
				preview = preview[:48] + "..."
			}
			preview = strings.ReplaceAll(preview, "\n", " ")
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %.1f  %s", e.Grade, preview)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("ctrl+d: assess • esc: back to dashboard • ctrl+c: quit"))
	return m.styles.Content.Render(b.String())
}
