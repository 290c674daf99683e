package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/cmd/ragdesk/ui"
	"ragdesk/internal/api"
	"ragdesk/internal/workflow"
)

// LoginModel is the email/password form for an existing account.
type LoginModel struct {
	styles ui.Styles
	client *api.Client

	email    textinput.Model
	password textinput.Model
	focus    int
	spin     spinner.Model

	status workflow.Status
	notice string

	width  int
	height int
}

func NewLoginModel(styles ui.Styles, client *api.Client) LoginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return LoginModel{
		styles:   styles,
		client:   client,
		email:    email,
		password: password,
		spin:     sp,
	}
}

func (m LoginModel) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) resize(w, h int) LoginModel {
	m.width, m.height = w, h
	return m
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m = m.cycleFocus()
			return m, nil
		case "enter":
			return m.submit()
		case "ctrl+s":
			return m, navigate(ScreenSignup)
		}

	case loginResultMsg:
		if msg.err != nil {
			m.status.Fail(workflow.Message(msg.err, workflow.FallbackLogin))
			m.notice = m.status.Err()
			return m, nil
		}
		m.status.Succeed()
		m.password.SetValue("")
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		if m.status.Busy() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m LoginModel) cycleFocus() LoginModel {
	m.focus = (m.focus + 1) % 2
	if m.focus == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.email.Blur()
		m.password.Focus()
	}
	return m
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.notice = "Email and password are required"
		return m, nil
	}

	if !m.status.Start() {
		return m, nil
	}
	m.notice = ""

	client := m.client
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		_, err := client.Login(context.Background(), email, password)
		return loginResultMsg{err: err}
	})
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("ragdesk"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Title.Render("Log in"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.status.Busy():
		b.WriteString(m.spin.View() + m.styles.Muted.Render(" logging in..."))
	case m.notice != "" && m.status.Failed():
		b.WriteString(m.styles.Error.Render(m.notice))
	case m.notice != "":
		b.WriteString(m.styles.Warning.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("enter: log in • tab: next field • ctrl+s: sign up • ctrl+c: quit"))
	return m.styles.Content.Render(b.String())
}
