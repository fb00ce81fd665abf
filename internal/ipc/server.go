package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/runtimepath"
	"github.com/BreDEVs/kontrol-sub000/internal/telemetry"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
	"github.com/samber/lo"
)

const requestTimeout = 30 * time.Second

// Runtime is what the server needs from the running daemon.
type Runtime interface {
	// Do runs fn on the event loop that owns the manager.
	Do(ctx context.Context, fn func(*wm.Manager) error) error
	Launch(ctx context.Context, app string, args []string) (wm.WindowID, error)
	Reload() error
	Telemetry() (telemetry.Snapshot, bool)
	InstanceID() string
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	rt           Runtime
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server on the default runtime socket path.
func NewServer(rt Runtime, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, rt, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, rt Runtime, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		socketPath: socketPath,
		rt:         rt,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket from a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc: listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("ipc: accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Expect one JSON request on a single line.
	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc: read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp = s.handleCommand(ctx, req)
		cancel()
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("ipc: failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("ipc: failed to send response", "error", err)
	}
}

type commandHandler func(s *Server, ctx context.Context, req *Request) *Response

var commandHandlers = map[CommandType]commandHandler{
	CommandGetStatus:     (*Server).handleGetStatus,
	CommandListWindows:   (*Server).handleListWindows,
	CommandCreateWindow:  (*Server).handleCreateWindow,
	CommandCloseWindow:   (*Server).handleCloseWindow,
	CommandDrag:          (*Server).handleDrag,
	CommandResize:        (*Server).handleResize,
	CommandMaximize:      (*Server).handleMaximize,
	CommandMinimize:      (*Server).handleMinimize,
	CommandFocus:         (*Server).handleFocus,
	CommandCycleFocus:    (*Server).handleCycleFocus,
	CommandSwitchDesktop: (*Server).handleSwitchDesktop,
	CommandAddDesktop:    (*Server).handleAddDesktop,
	CommandMoveToDesktop: (*Server).handleMoveToDesktop,
	CommandTile:          (*Server).handleTile,
	CommandLaunch:        (*Server).handleLaunch,
	CommandSaveSession:   (*Server).handleSaveSession,
	CommandReload:        (*Server).handleReload,
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	h, ok := commandHandlers[req.Command]
	if !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
	s.logger.Debug("ipc: command", "command", req.Command)
	return h(s, ctx, req)
}

// do runs fn on the event loop and turns its result into a response.
func (s *Server) do(ctx context.Context, fn func(*wm.Manager) (interface{}, error)) *Response {
	var data interface{}
	err := s.rt.Do(ctx, func(m *wm.Manager) error {
		var err error
		data, err = fn(m)
		return err
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		status := StatusData{
			InstanceID:    s.rt.InstanceID(),
			ActiveDesktop: m.ActiveDesktop(),
			DesktopCount:  m.DesktopCount(),
			WindowCount:   len(m.Windows()),
			ScreenWidth:   m.Screen().Width,
			ScreenHeight:  m.Screen().Height,
			SessionDirty:  m.Dirty(),
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}
		if rec, ok := m.Focused(); ok {
			status.FocusedWindow = uint64(rec.ID)
		}
		if snap, ok := s.rt.Telemetry(); ok {
			status.CPUPercent = snap.CPUPercent
			status.MemUsedPercent = snap.MemUsedPercent
		}
		return status, nil
	})
}

func (s *Server) handleListWindows(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return ListWindows(m), nil
	})
}

// ListWindows snapshots the manager for LIST_WINDOWS.
func ListWindows(m *wm.Manager) WindowsData {
	var focused wm.WindowID
	if rec, ok := m.Focused(); ok {
		focused = rec.ID
	}
	records := m.Windows()
	active := m.ActiveDesktop()

	return WindowsData{
		Windows: lo.Map(records, func(rec wm.WindowRecord, _ int) WindowInfo {
			return WindowInfo{
				ID:      uint64(rec.ID),
				Title:   rec.Title,
				X:       rec.Geometry.X,
				Y:       rec.Geometry.Y,
				Width:   rec.Geometry.Width,
				Height:  rec.Geometry.Height,
				Desktop: rec.Desktop,
				State:   rec.State.String(),
				ZRank:   rec.ZRank,
				Focused: rec.ID == focused,
				Content: uint64(rec.Content),
			}
		}),
		Desktops: lo.Map(m.Desktops(), func(d wm.Desktop, _ int) DesktopInfo {
			return DesktopInfo{
				Index: d.Index,
				Name:  d.Name,
				WindowCount: lo.CountBy(records, func(rec wm.WindowRecord) bool {
					return rec.Desktop == d.Index
				}),
				Active: d.Index == active,
			}
		}),
	}
}

func (s *Server) handleCreateWindow(ctx context.Context, req *Request) *Response {
	var p CreateWindowPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		var id wm.WindowID
		if p.Centered {
			id = m.CreateDefaultWindow(p.Title, wm.PlaceholderContent)
		} else {
			id = m.CreateWindow(p.Title, wm.PlaceholderContent, p.X, p.Y, p.Width, p.Height)
		}
		return WindowData{ID: uint64(id), OK: true}, nil
	})
}

func (s *Server) handleCloseWindow(ctx context.Context, req *Request) *Response {
	return s.windowOp(ctx, req, (*wm.Manager).CloseWindow)
}

func (s *Server) handleMaximize(ctx context.Context, req *Request) *Response {
	return s.windowOp(ctx, req, (*wm.Manager).MaximizeToggle)
}

func (s *Server) handleMinimize(ctx context.Context, req *Request) *Response {
	return s.windowOp(ctx, req, (*wm.Manager).Minimize)
}

func (s *Server) handleFocus(ctx context.Context, req *Request) *Response {
	return s.windowOp(ctx, req, (*wm.Manager).Focus)
}

func (s *Server) windowOp(ctx context.Context, req *Request, op func(*wm.Manager, wm.WindowID) error) *Response {
	var p WindowPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return nil, op(m, wm.WindowID(p.ID))
	})
}

func (s *Server) handleDrag(ctx context.Context, req *Request) *Response {
	var p DragPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return nil, m.Drag(wm.WindowID(p.ID), p.X, p.Y)
	})
}

func (s *Server) handleResize(ctx context.Context, req *Request) *Response {
	var p ResizePayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return nil, m.Resize(wm.WindowID(p.ID), p.Width, p.Height)
	})
}

func (s *Server) handleCycleFocus(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		id, ok := m.CycleFocus()
		return WindowData{ID: uint64(id), OK: ok}, nil
	})
}

func (s *Server) handleSwitchDesktop(ctx context.Context, req *Request) *Response {
	var p SwitchDesktopPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		if p.Index != nil {
			if err := m.SwitchTo(*p.Index); err != nil {
				return nil, err
			}
			return DesktopData{Index: m.ActiveDesktop()}, nil
		}
		switch p.Direction {
		case "next":
			return DesktopData{Index: m.SwitchDesktop(wm.Next)}, nil
		case "previous", "prev":
			return DesktopData{Index: m.SwitchDesktop(wm.Previous)}, nil
		default:
			return nil, fmt.Errorf("direction must be next or previous, got %q", p.Direction)
		}
	})
}

func (s *Server) handleAddDesktop(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return DesktopData{Index: m.AddDesktop()}, nil
	})
}

func (s *Server) handleMoveToDesktop(ctx context.Context, req *Request) *Response {
	var p MoveToDesktopPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return nil, m.MoveToDesktop(wm.WindowID(p.ID), p.Desktop)
	})
}

func (s *Server) handleTile(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return CountData{Count: m.Tile()}, nil
	})
}

// handleLaunch waits for the application outside the event loop.
func (s *Server) handleLaunch(ctx context.Context, req *Request) *Response {
	var p LaunchPayload
	if err := decodePayload(req.Payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if p.App == "" {
		return NewErrorResponse("app is required")
	}
	id, err := s.rt.Launch(ctx, p.App, p.Args)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(WindowData{ID: uint64(id), OK: true})
	return resp
}

func (s *Server) handleSaveSession(ctx context.Context, _ *Request) *Response {
	return s.do(ctx, func(m *wm.Manager) (interface{}, error) {
		return nil, m.SaveSession(ctx)
	})
}

func (s *Server) handleReload(context.Context, *Request) *Response {
	s.logger.Info("ipc: received RELOAD")
	if err := s.rt.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
