package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

// Client is the part of the IPC client the dashboard uses. *ipc.Client
// satisfies it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	CycleFocus() (id uint64, ok bool, err error)
	SwitchDesktop(direction string) (int, error)
	Focus(id uint64) error
	Maximize(id uint64) error
	Minimize(id uint64) error
	CloseWindow(id uint64) error
	AddDesktop() (int, error)
	Tile() (int, error)
	SaveSession() error
}

var _ Client = (*ipc.Client)(nil)

// Run starts the dashboard and blocks until the user quits.
func Run(client Client) error {
	if !isInteractive() {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(client), tea.WithAltScreen()).Run()
	return err
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
