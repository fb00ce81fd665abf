package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

const (
	ServerName    = "berke0s"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools call. *ipc.Client
// satisfies it.
type Daemon interface {
	ListWindows() (*ipc.WindowsData, error)
	CreateWindow(p ipc.CreateWindowPayload) (uint64, error)
	CloseWindow(id uint64) error
	Focus(id uint64) error
	CycleFocus() (id uint64, ok bool, err error)
	SwitchDesktop(direction string) (int, error)
	SwitchTo(index int) (int, error)
	Launch(app string, args []string) (uint64, error)
	SaveSession() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server exposes the running window manager as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows with their desktop, geometry, state and focus. Optionally filter by desktop index.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Open an empty window on the active desktop. Omit the geometry for a centered window of the default size. Sizes below the minimum are clamped.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window by id. Closing an unknown id is an error and changes nothing.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise and focus a window by id, switching to its desktop if needed.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_focus",
		Description: "Focus the next window on the active desktop (Alt+Tab). Does nothing with fewer than two windows.",
	}, s.handleCycleFocus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_desktop",
		Description: "Activate a virtual desktop by index, or move to the next/previous one. Switching never wraps around.",
	}, s.handleSwitchDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "launch_app",
		Description: "Start a configured application and wait for its window. Returns the new window id.",
	}, s.handleLaunchApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_session",
		Description: "Write the current windows to the session store so they are restored on the next start.",
	}, s.handleSaveSession)
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{
		DesktopCount: len(data.Desktops),
		Windows:      make([]WindowSummary, 0, len(data.Windows)),
	}
	for _, d := range data.Desktops {
		if d.Active {
			out.ActiveDesktop = d.Index
		}
	}
	for _, w := range data.Windows {
		if args.Desktop != nil && w.Desktop != *args.Desktop {
			continue
		}
		out.Windows = append(out.Windows, WindowSummary{
			ID:      w.ID,
			Title:   w.Title,
			Desktop: w.Desktop,
			X:       w.X,
			Y:       w.Y,
			Width:   w.Width,
			Height:  w.Height,
			State:   w.State,
			Focused: w.Focused,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	p := ipc.CreateWindowPayload{Title: args.Title}
	if args.X == nil && args.Y == nil && args.Width == nil && args.Height == nil {
		p.Centered = true
	} else {
		if args.Width == nil || args.Height == nil {
			return nil, WindowOutput{}, fmt.Errorf("width and height are required when a position is given")
		}
		p.X = intOr(args.X, 0)
		p.Y = intOr(args.Y, 0)
		p.Width = *args.Width
		p.Height = *args.Height
	}

	id, err := s.daemon.CreateWindow(p)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Info("mcp: window created", "window", id, "title", args.Title)
	return nil, WindowOutput{ID: id}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.CloseWindow(args.ID); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.Focus(args.ID); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleCycleFocus(_ context.Context, _ *mcpsdk.CallToolRequest, _ CycleFocusInput) (*mcpsdk.CallToolResult, CycleFocusOutput, error) {
	id, ok, err := s.daemon.CycleFocus()
	if err != nil {
		return nil, CycleFocusOutput{}, err
	}
	return nil, CycleFocusOutput{ID: id, Changed: ok}, nil
}

func (s *Server) handleSwitchDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchDesktopInput) (*mcpsdk.CallToolResult, SwitchDesktopOutput, error) {
	var (
		index int
		err   error
	)
	switch {
	case args.Index != nil:
		index, err = s.daemon.SwitchTo(*args.Index)
	case args.Direction == "next" || args.Direction == "previous":
		index, err = s.daemon.SwitchDesktop(args.Direction)
	default:
		return nil, SwitchDesktopOutput{}, fmt.Errorf("set index, or direction to next or previous")
	}
	if err != nil {
		return nil, SwitchDesktopOutput{}, err
	}
	return nil, SwitchDesktopOutput{ActiveDesktop: index}, nil
}

func (s *Server) handleLaunchApp(_ context.Context, _ *mcpsdk.CallToolRequest, args LaunchAppInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.App == "" {
		return nil, WindowOutput{}, fmt.Errorf("app is required")
	}
	id, err := s.daemon.Launch(args.App, args.Args)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Info("mcp: app launched", "app", args.App, "window", id)
	return nil, WindowOutput{ID: id}, nil
}

func (s *Server) handleSaveSession(_ context.Context, _ *mcpsdk.CallToolRequest, _ SaveSessionInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.SaveSession(); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
