package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type DashboardModel struct {
	Session *Session
	Table   table.Model
	Backups []BackupEntry
	Status  string
	Err     error
}

func NewDashboardModel(s *Session, width, height int) DashboardModel {
	columns := []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Title", Width: 30},
		{Title: "Owner", Width: 36},
		{Title: "Created", Width: 20},
	}

	h := height - 10
	if h < 5 {
		h = 5
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(h),
	)

	sStyle := table.DefaultStyles()
	sStyle.Header = sStyle.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	sStyle.Selected = sStyle.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(sStyle)

	return DashboardModel{Session: s, Table: t}
}

type backupsLoadedMsg struct {
	entries []BackupEntry
	err     error
}

type backupCreatedMsg struct {
	fileURL string
	err     error
}

type backupDeletedMsg struct{ err error }

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd
}

func (m DashboardModel) refreshCmd() tea.Msg {
	entries, err := m.Session.ListBackups(true)
	return backupsLoadedMsg{entries: entries, err: err}
}

func (m DashboardModel) createCmd() tea.Msg {
	fileURL, err := m.Session.CreateFullBackup()
	return backupCreatedMsg{fileURL: fileURL, err: err}
}

func (m DashboardModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return backupDeletedMsg{err: m.Session.DeleteBackup(id)}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.Status = "refreshing..."
			return m, m.refreshCmd
		case "c":
			m.Status = "creating full backup..."
			return m, m.createCmd
		case "d":
			selected := m.Table.SelectedRow()
			if len(selected) > 0 {
				m.Status = "deleting " + selected[0]
				return m, m.deleteCmd(selected[0])
			}
		case "q":
			return m, tea.Quit
		}

	case backupsLoadedMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Backups = msg.entries
			rows := make([]table.Row, 0, len(msg.entries))
			for _, e := range msg.entries {
				created := time.Unix(e.CreatedAt, 0).Format("2006-01-02 15:04:05")
				rows = append(rows, table.Row{e.ID, e.Title, e.UserID, created})
			}
			m.Table.SetRows(rows)
			m.Status = ""
		}

	case backupCreatedMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Status = "backup written: " + msg.fileURL
			return m, m.refreshCmd
		}

	case backupDeletedMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Status = "backup deleted"
			return m, m.refreshCmd
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Structura - Backup Registry") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("'r' refresh, 'c' create full backup, 'd' delete, 'q' quit"))
	if m.Status != "" {
		b.WriteString("\n" + statusMessageStyle(m.Status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
