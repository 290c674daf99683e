// Package tui implements the ragdesk terminal interface: a small router
// over the login, signup, dashboard, and assess screens.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/cmd/ragdesk/ui"
	"ragdesk/internal/api"
	"ragdesk/internal/history"
	"ragdesk/internal/logging"
	"ragdesk/internal/session"
)

// App is the root model. It routes messages to screens and enforces the
// auth guard on navigation.
type App struct {
	styles ui.Styles
	client *api.Client
	creds  *session.Store
	hist   *history.Store

	active Screen

	// Where to go after a successful login, when the guard intercepted a
	// navigation to a protected screen.
	pending    Screen
	hasPending bool

	login     LoginModel
	signup    SignupModel
	dashboard DashboardModel
	assess    AssessModel

	width  int
	height int
}

// NewApp builds the root model. hist may be nil when local history is
// disabled.
func NewApp(client *api.Client, creds *session.Store, hist *history.Store, histLimit int) App {
	styles := ui.DefaultStyles()

	active := ScreenLogin
	if creds.Token() != "" {
		active = ScreenDashboard
	}

	return App{
		styles:    styles,
		client:    client,
		creds:     creds,
		hist:      hist,
		active:    active,
		login:     NewLoginModel(styles, client),
		signup:    NewSignupModel(styles, client),
		dashboard: NewDashboardModel(styles, client),
		assess:    NewAssessModel(styles, client, hist, histLimit),
	}
}

// Active returns the screen currently shown.
func (a App) Active() Screen {
	return a.active
}

func (a App) Init() tea.Cmd {
	logging.UI("starting on %s screen", a.active)
	if a.active == ScreenDashboard {
		return a.dashboard.mountCmd()
	}
	return a.login.focusCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.login = a.login.resize(msg.Width, msg.Height)
		a.signup = a.signup.resize(msg.Width, msg.Height)
		a.dashboard = a.dashboard.resize(msg.Width, msg.Height)
		a.assess = a.assess.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case navigateMsg:
		return a.goTo(msg.to)

	case logoutRequestMsg:
		if err := a.creds.Logout(); err != nil {
			logging.Session("logout failed: %v", err)
		}
		logging.Session("logged out")
		a.dashboard = NewDashboardModel(a.styles, a.client).resize(a.width, a.height)
		a.assess = NewAssessModel(a.styles, a.client, a.hist, a.assess.limit).resize(a.width, a.height)
		a.hasPending = false
		a.active = ScreenLogin
		return a, a.login.focusCmd()

	// Result messages go to their owning screen even when it is not the
	// active one, so an abandoned request can never leave a workflow busy.
	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err == nil {
			app, nav := a.afterAuth()
			return app, tea.Batch(cmd, nav)
		}
		return a, cmd

	case signupResultMsg:
		var cmd tea.Cmd
		a.signup, cmd = a.signup.Update(msg)
		if msg.err == nil {
			app, nav := a.afterAuth()
			return app, tea.Batch(cmd, nav)
		}
		return a, cmd

	case filesLoadedMsg, uploadResultMsg, buildResultMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case assessResultMsg, historyLoadedMsg:
		var cmd tea.Cmd
		a.assess, cmd = a.assess.Update(msg)
		return a, cmd
	}

	return a.updateActive(msg)
}

// goTo applies the auth guard and switches screens.
func (a App) goTo(to Screen) (App, tea.Cmd) {
	if to.Protected() && a.creds.Token() == "" {
		logging.UI("guard: %s requires auth, redirecting to login", to)
		a.pending = to
		a.hasPending = true
		a.active = ScreenLogin
		return a, a.login.focusCmd()
	}

	a.active = to
	switch to {
	case ScreenLogin:
		return a, a.login.focusCmd()
	case ScreenSignup:
		return a, a.signup.focusCmd()
	case ScreenDashboard:
		return a, a.dashboard.mountCmd()
	case ScreenAssess:
		return a, a.assess.mountCmd()
	}
	return a, nil
}

// afterAuth resumes the navigation the guard intercepted, or lands on the
// dashboard.
func (a App) afterAuth() (App, tea.Cmd) {
	target := ScreenDashboard
	if a.hasPending {
		target = a.pending
		a.hasPending = false
	}
	logging.Session("authenticated as %s", a.creds.Email())
	return a.goTo(target)
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case ScreenLogin:
		a.login, cmd = a.login.Update(msg)
	case ScreenSignup:
		a.signup, cmd = a.signup.Update(msg)
	case ScreenDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case ScreenAssess:
		a.assess, cmd = a.assess.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	switch a.active {
	case ScreenLogin:
		return a.login.View()
	case ScreenSignup:
		return a.signup.View()
	case ScreenDashboard:
		return a.dashboard.View()
	case ScreenAssess:
		return a.assess.View()
	}
	return ""
}
