package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

const refreshInterval = time.Second

type tickMsg time.Time

// snapshotMsg carries a fresh view of the daemon.
type snapshotMsg struct {
	status *ipc.StatusData
	data   *ipc.WindowsData
	err    error
}

// actionMsg reports the outcome of a command sent to the daemon along with
// the state that followed it.
type actionMsg struct {
	note     string
	err      error
	snapshot snapshotMsg
}

// model is the root bubbletea model for the dashboard.
type model struct {
	client Client

	status   *ipc.StatusData
	desktops []ipc.DesktopInfo
	windows  []ipc.WindowInfo // active desktop only
	selected int

	note    string
	lastErr string

	width  int
	height int
}

func newModel(client Client) model {
	return model{client: client}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) refresh() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return fetch(client)
	}
}

func fetch(client Client) snapshotMsg {
	status, err := client.GetStatus()
	if err != nil {
		return snapshotMsg{err: err}
	}
	data, err := client.ListWindows()
	return snapshotMsg{status: status, data: data, err: err}
}

// act runs fn against the daemon and refreshes afterwards.
func (m model) act(fn func(Client) (string, error)) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		note, err := fn(client)
		return actionMsg{note: note, err: err, snapshot: fetch(client)}
	}
}

func (m model) selectedWindow() (ipc.WindowInfo, bool) {
	if m.selected < 0 || m.selected >= len(m.windows) {
		return ipc.WindowInfo{}, false
	}
	return m.windows[m.selected], true
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case snapshotMsg:
		m.apply(msg)
		return m, nil

	case actionMsg:
		m.apply(msg.snapshot)
		switch {
		case msg.err != nil:
			m.lastErr = msg.err.Error()
			m.note = ""
		case msg.snapshot.err == nil:
			m.lastErr = ""
			m.note = msg.note
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) apply(msg snapshotMsg) {
	if msg.err != nil {
		m.status = nil
		m.desktops = nil
		m.windows = nil
		m.lastErr = msg.err.Error()
		return
	}
	if m.status == nil {
		// Reconnected.
		m.lastErr = ""
	}
	m.status = msg.status
	m.desktops = msg.data.Desktops

	active := msg.status.ActiveDesktop
	windows := make([]ipc.WindowInfo, 0, len(msg.data.Windows))
	for _, w := range msg.data.Windows {
		if w.Desktop == active {
			windows = append(windows, w)
		}
	}
	m.windows = windows
	if m.selected >= len(m.windows) {
		m.selected = len(m.windows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.windows)-1 {
			m.selected++
		}
		return m, nil

	case "tab":
		return m, m.act(func(c Client) (string, error) {
			id, ok, err := c.CycleFocus()
			if err != nil || !ok {
				return "nothing to cycle", err
			}
			return fmt.Sprintf("focused window %d", id), nil
		})

	case "left", "h":
		return m, m.act(switchDesktop("previous"))

	case "right", "l":
		return m, m.act(switchDesktop("next"))

	case "n":
		return m, m.act(func(c Client) (string, error) {
			idx, err := c.AddDesktop()
			return fmt.Sprintf("added desktop %d", idx+1), err
		})

	case "t":
		return m, m.act(func(c Client) (string, error) {
			n, err := c.Tile()
			return fmt.Sprintf("tiled %d windows", n), err
		})

	case "s":
		return m, m.act(func(c Client) (string, error) {
			return "session saved", c.SaveSession()
		})

	case "enter":
		return m, m.onSelected("focused", Client.Focus)
	case "m":
		return m, m.onSelected("toggled maximize on", Client.Maximize)
	case "i":
		return m, m.onSelected("minimized", Client.Minimize)
	case "x":
		return m, m.onSelected("closed", Client.CloseWindow)
	}
	return m, nil
}

func switchDesktop(direction string) func(Client) (string, error) {
	return func(c Client) (string, error) {
		idx, err := c.SwitchDesktop(direction)
		return fmt.Sprintf("desktop %d", idx+1), err
	}
}

func (m model) onSelected(verb string, op func(Client, uint64) error) tea.Cmd {
	w, ok := m.selectedWindow()
	if !ok {
		return nil
	}
	return m.act(func(c Client) (string, error) {
		return fmt.Sprintf("%s window %d", verb, w.ID), op(c, w.ID)
	})
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	desktopBar := renderDesktopBar(m.desktops, m.width)
	helpBar := renderHelpBar(m.width)

	var msgLine string
	switch {
	case m.lastErr != "":
		msgLine = errorStyle.Render(m.lastErr)
	case m.note != "":
		msgLine = noteStyle.Render(m.note)
	}

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(desktopBar) + lipgloss.Height(helpBar) + 1
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		desktopBar,
		m.renderWindows(contentHeight),
		msgLine,
		helpBar,
	)
}

func (m model) renderWindows(height int) string {
	if m.status == nil {
		return dimStyle.Width(m.width).Height(height).Render("start the daemon with: berke0s daemon")
	}
	if len(m.windows) == 0 {
		return dimStyle.Width(m.width).Height(height).Render("no windows on this desktop")
	}

	rows := make([]string, 0, len(m.windows))
	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	for i := start; i < len(m.windows) && len(rows) < height; i++ {
		rows = append(rows, renderWindowRow(m.windows[i], i == m.selected, m.width))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(rows, "\n"))
}
