package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/internal/api"
	"ragdesk/internal/history"
)

// Screen identifies one of the client's pages.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenSignup
	ScreenDashboard
	ScreenAssess
)

// Protected reports whether the screen requires a stored token.
func (s Screen) Protected() bool {
	return s == ScreenDashboard || s == ScreenAssess
}

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenSignup:
		return "signup"
	case ScreenDashboard:
		return "dashboard"
	case ScreenAssess:
		return "assess"
	default:
		return "unknown"
	}
}

// navigateMsg asks the app to switch screens. The app owns the guard that
// bounces unauthenticated visits to protected screens back to login.
type navigateMsg struct {
	to Screen
}

func navigate(to Screen) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{to: to}
	}
}

// Mount messages fire when a screen becomes active, so the screen's own
// update loop can kick off its initial loads under the busy gate.

type dashboardMountMsg struct{}

type assessMountMsg struct{}

// logoutRequestMsg asks the app to clear the session and return to login.
type logoutRequestMsg struct{}

func requestLogout() tea.Msg {
	return logoutRequestMsg{}
}

// Result messages carry the outcome of one server request. They are routed
// to the screen that owns the operation even when another screen is active,
// so an in-flight request can always settle its status.

type loginResultMsg struct {
	err error
}

type signupResultMsg struct {
	err      error
	fallback string // fallback for the step that failed
}

type filesLoadedMsg struct {
	files []api.FileRecord
	err   error
}

type uploadResultMsg struct {
	err error
}

type buildResultMsg struct {
	indexed string // file count as text, "?" when the response omits it
	err     error
}

type assessResultMsg struct {
	text   string
	result api.Assessment
	err    error
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}
