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

// SignupModel is the account creation form. A successful submission
// registers the account and then logs in with the same credentials; the
// login step only runs when registration succeeded.
type SignupModel struct {
	styles ui.Styles
	client *api.Client

	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int
	spin     spinner.Model

	status workflow.Status
	notice string

	width  int
	height int
}

func NewSignupModel(styles ui.Styles, client *api.Client) SignupModel {
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

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 128
	confirm.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return SignupModel{
		styles:   styles,
		client:   client,
		email:    email,
		password: password,
		confirm:  confirm,
		spin:     sp,
	}
}

func (m SignupModel) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (m SignupModel) resize(w, h int) SignupModel {
	m.width, m.height = w, h
	return m
}

func (m SignupModel) Update(msg tea.Msg) (SignupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m = m.setFocus((m.focus + 1) % 3)
			return m, nil
		case "shift+tab", "up":
			m = m.setFocus((m.focus + 2) % 3)
			return m, nil
		case "enter":
			return m.submit()
		case "esc":
			return m, navigate(ScreenLogin)
		}

	case signupResultMsg:
		if msg.err != nil {
			m.status.Fail(workflow.Message(msg.err, msg.fallback))
			m.notice = m.status.Err()
			return m, nil
		}
		m.status.Succeed()
		m.password.SetValue("")
		m.confirm.SetValue("")
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
	m.confirm, cmd = m.confirm.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m SignupModel) setFocus(i int) SignupModel {
	m.focus = i
	inputs := []*textinput.Model{&m.email, &m.password, &m.confirm}
	for j, in := range inputs {
		if j == i {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	return m
}

func (m SignupModel) submit() (SignupModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.notice = "Email and password are required"
		return m, nil
	}
	if password != m.confirm.Value() {
		m.notice = "Passwords do not match"
		return m, nil
	}

	if !m.status.Start() {
		return m, nil
	}
	m.notice = ""

	client := m.client
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx := context.Background()
		if _, err := client.Register(ctx, email, password); err != nil {
			return signupResultMsg{err: err, fallback: workflow.FallbackSignup}
		}
		if _, err := client.Login(ctx, email, password); err != nil {
			return signupResultMsg{err: err, fallback: workflow.FallbackLogin}
		}
		return signupResultMsg{}
	})
}

func (m SignupModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("ragdesk"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Title.Render("Create an account"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")

	switch {
	case m.status.Busy():
		b.WriteString(m.spin.View() + m.styles.Muted.Render(" creating account..."))
	case m.notice != "" && m.status.Failed():
		b.WriteString(m.styles.Error.Render(m.notice))
	case m.notice != "":
		b.WriteString(m.styles.Warning.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("enter: sign up • tab: next field • esc: back to login • ctrl+c: quit"))
	return m.styles.Content.Render(b.String())
}
