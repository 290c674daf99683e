package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragdesk/cmd/ragdesk/ui"
	"ragdesk/internal/api"
	"ragdesk/internal/logging"
	"ragdesk/internal/workflow"
)

// DashboardModel lists the corpus files and drives uploads and index
// builds. The three operations carry independent statuses so a slow build
// does not block a refresh.
type DashboardModel struct {
	styles ui.Styles
	client *api.Client

	tbl     table.Model
	picker  filepicker.Model
	picking bool
	spin    spinner.Model

	list   workflow.Status
	upload workflow.Status
	build  workflow.Status

	files  []api.FileRecord
	notice string // outcome of the last upload or build
	ok     bool   // notice is a success

	width  int
	height int
}

func NewDashboardModel(styles ui.Styles, client *api.Client) DashboardModel {
	tbl := table.New(
		table.WithColumns(fileColumns(72)),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Theme.Primary)
	ts.Selected = ts.Selected.
		Foreground(styles.Theme.Background).
		Background(styles.Theme.Accent).
		Bold(false)
	tbl.SetStyles(ts)

	picker := filepicker.New()
	picker.ShowHidden = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return DashboardModel{
		styles: styles,
		client: client,
		tbl:    tbl,
		picker: picker,
		spin:   sp,
	}
}

func fileColumns(width int) []table.Column {
	idW := 6
	dateW := 20
	nameW := width - idW - dateW - 6
	if nameW < 16 {
		nameW = 16
	}
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Filename", Width: nameW},
		{Title: "Uploaded", Width: dateW},
	}
}

func (m DashboardModel) mountCmd() tea.Cmd {
	return func() tea.Msg {
		return dashboardMountMsg{}
	}
}

func (m DashboardModel) resize(w, h int) DashboardModel {
	m.width, m.height = w, h
	m.tbl.SetColumns(fileColumns(w))
	if h > 14 {
		m.tbl.SetHeight(h - 12)
	}
	return m
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMountMsg:
		if m.list.Start() {
			return m, tea.Batch(m.spin.Tick, m.refreshCmd())
		}
		return m, nil

	case filesLoadedMsg:
		if msg.err != nil {
			m.list.Fail(workflow.Message(msg.err, workflow.FallbackList))
			return m, nil
		}
		m.list.Succeed()
		m.files = msg.files
		rows := make([]table.Row, 0, len(msg.files))
		for _, f := range msg.files {
			rows = append(rows, table.Row{
				strconv.FormatInt(f.ID, 10),
				f.Filename,
				f.CreatedAt,
			})
		}
		m.tbl.SetRows(rows)
		return m, nil

	case uploadResultMsg:
		if msg.err != nil {
			m.upload.Fail(workflow.Message(msg.err, workflow.FallbackUpload))
			m.notice, m.ok = m.upload.Err(), false
			return m, nil
		}
		m.upload.Succeed()
		m.notice, m.ok = "Upload complete", true
		if m.list.Start() {
			return m, tea.Batch(m.spin.Tick, m.refreshCmd())
		}
		return m, nil

	case buildResultMsg:
		if msg.err != nil {
			m.build.Fail(workflow.Message(msg.err, workflow.FallbackBuild))
			m.notice, m.ok = m.build.Err(), false
			return m, nil
		}
		m.build.Succeed()
		m.notice, m.ok = "RAG index built ("+msg.indexed+" files indexed)", true
		return m, nil

	case spinner.TickMsg:
		if m.list.Busy() || m.upload.Busy() || m.build.Busy() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		switch msg.String() {
		case "r":
			if m.list.Start() {
				return m, tea.Batch(m.spin.Tick, m.refreshCmd())
			}
			return m, nil
		case "u":
			if m.upload.Busy() {
				return m, nil
			}
			m.picking = true
			return m, m.picker.Init()
		case "b":
			if m.build.Start() {
				logging.UI("index build triggered")
				return m, tea.Batch(m.spin.Tick, m.buildCmd())
			}
			return m, nil
		case "a":
			return m, navigate(ScreenAssess)
		case "ctrl+l":
			return m, requestLogout
		case "q":
			return m, tea.Quit
		}
	}

	if m.picking {
		return m.updatePicker(msg)
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m DashboardModel) updatePicker(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if key, isKey := msg.(tea.KeyMsg); isKey && key.String() == "esc" {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if selected, path := m.picker.DidSelectFile(msg); selected {
		m.picking = false
		if !m.upload.Start() {
			return m, nil
		}
		m.notice, m.ok = "", false
		return m, tea.Batch(m.spin.Tick, m.uploadCmd(path))
	}
	if disabled, path := m.picker.DidSelectDisabledFile(msg); disabled {
		m.notice, m.ok = "Cannot upload "+path, false
	}
	return m, cmd
}

func (m DashboardModel) refreshCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		files, err := client.ListFiles(context.Background())
		return filesLoadedMsg{files: files, err: err}
	}
}

func (m DashboardModel) uploadCmd(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		f, err := api.OpenUploadFile(path)
		if err != nil {
			return uploadResultMsg{err: err}
		}
		_, err = client.Upload(context.Background(), []api.UploadFile{f})
		return uploadResultMsg{err: err}
	}
}

func (m DashboardModel) buildCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.BuildIndex(context.Background())
		if err != nil {
			return buildResultMsg{err: err}
		}
		indexed := "?"
		if n, isNum := resp["files_indexed"].(float64); isNum {
			indexed = strconv.FormatInt(int64(n), 10)
		}
		return buildResultMsg{indexed: indexed}
	}
}

func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("ragdesk"))
	b.WriteString("  ")
	b.WriteString(m.styles.Badge.Render("dashboard"))
	b.WriteString("\n\n")

	if m.picking {
		b.WriteString(m.styles.Title.Render("Pick a file to upload"))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("enter: upload • esc: cancel"))
		return m.styles.Content.Render(b.String())
	}

	b.WriteString(m.tbl.View())
	b.WriteString("\n\n")

	busy := m.list.Busy() || m.upload.Busy() || m.build.Busy()
	switch {
	case busy:
		b.WriteString(m.spin.View() + m.styles.Muted.Render(" "+m.busyLabel()))
	case m.list.Failed():
		b.WriteString(m.styles.Error.Render(m.list.Err()))
	case m.notice != "" && m.ok:
		b.WriteString(m.styles.Success.Render(m.notice))
	case m.notice != "":
		b.WriteString(m.styles.Error.Render(m.notice))
	default:
		b.WriteString(m.styles.Muted.Render(strconv.Itoa(len(m.files)) + " files"))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("r: refresh • u: upload • b: build index • a: assess • ctrl+l: log out • q: quit"))
	return m.styles.Content.Render(b.String())
}

func (m DashboardModel) busyLabel() string {
	switch {
	case m.upload.Busy():
		return "uploading..."
	case m.build.Busy():
		return "building index..."
	default:
		return "loading files..."
	}
}
