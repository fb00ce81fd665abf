package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

var (
	activeDesktopStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 2)

	inactiveDesktopStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	desktopBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	desktopGap = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			SetString(" ")

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("238"))

	rowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// renderDesktopBar renders one tab per desktop with the active one
// highlighted.
func renderDesktopBar(desktops []ipc.DesktopInfo, width int) string {
	tabs := make([]string, 0, len(desktops))
	for _, d := range desktops {
		label := fmt.Sprintf("%d:%s (%d)", d.Index+1, d.Name, d.WindowCount)
		if d.Active {
			tabs = append(tabs, activeDesktopStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveDesktopStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, desktopGap.Render())...)
	return desktopBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar shows daemon reachability and resource usage.
func renderStatusBar(status *ipc.StatusData, width int) string {
	var text string
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{
			dot + " daemon connected",
			fmt.Sprintf("windows:%d", status.WindowCount),
			fmt.Sprintf("screen:%dx%d", status.ScreenWidth, status.ScreenHeight),
			fmt.Sprintf("cpu:%.0f%%", status.CPUPercent),
			fmt.Sprintf("mem:%.0f%%", status.MemUsedPercent),
		}
		if status.SessionDirty {
			parts = append(parts, "unsaved")
		}
		text = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "tab: cycle focus  ←/→: desktops  ↑/↓: select  enter: focus  m: maximize  i: minimize  x: close  n: new desktop  t: tile  s: save  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func renderWindowRow(w ipc.WindowInfo, selected bool, width int) string {
	marker := " "
	if w.Focused {
		marker = "*"
	}
	line := fmt.Sprintf("%s %-6d %-28s %5d,%-5d %5dx%-5d %s",
		marker, w.ID, truncate(w.Title, 28), w.X, w.Y, w.Width, w.Height, w.State)
	style := rowStyle
	if selected {
		style = selectedRowStyle
	}
	return style.Width(width).Render(line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
