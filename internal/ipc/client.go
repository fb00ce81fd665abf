package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/runtimepath"
)

const (
	defaultClientTimeout = 5 * time.Second
	launchClientTimeout  = 60 * time.Second
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default runtime socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    defaultClientTimeout,
	}
}

func (c *Client) sendRequest(command CommandType, payload interface{}, timeout time.Duration) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	timeout := c.timeout
	if command == CommandLaunch {
		timeout = launchClientTimeout
	}
	resp, err := c.sendRequest(command, payload, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows returns every managed window and desktop.
func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateWindow opens a placeholder window at the given geometry.
func (c *Client) CreateWindow(p CreateWindowPayload) (uint64, error) {
	var data WindowData
	if err := c.call(CommandCreateWindow, p, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func (c *Client) CloseWindow(id uint64) error {
	return c.call(CommandCloseWindow, WindowPayload{ID: id}, nil)
}

func (c *Client) Drag(id uint64, x, y int) error {
	return c.call(CommandDrag, DragPayload{ID: id, X: x, Y: y}, nil)
}

func (c *Client) Resize(id uint64, width, height int) error {
	return c.call(CommandResize, ResizePayload{ID: id, Width: width, Height: height}, nil)
}

// Maximize toggles between maximized and the saved geometry.
func (c *Client) Maximize(id uint64) error {
	return c.call(CommandMaximize, WindowPayload{ID: id}, nil)
}

func (c *Client) Minimize(id uint64) error {
	return c.call(CommandMinimize, WindowPayload{ID: id}, nil)
}

func (c *Client) Focus(id uint64) error {
	return c.call(CommandFocus, WindowPayload{ID: id}, nil)
}

// CycleFocus raises the next window; ok is false with fewer than two
// windows on the active desktop.
func (c *Client) CycleFocus() (id uint64, ok bool, err error) {
	var data WindowData
	if err := c.call(CommandCycleFocus, nil, &data); err != nil {
		return 0, false, err
	}
	return data.ID, data.OK, nil
}

// SwitchDesktop moves to the "next" or "previous" desktop and returns the
// active index.
func (c *Client) SwitchDesktop(direction string) (int, error) {
	var data DesktopData
	if err := c.call(CommandSwitchDesktop, SwitchDesktopPayload{Direction: direction}, &data); err != nil {
		return 0, err
	}
	return data.Index, nil
}

// SwitchTo activates desktop index.
func (c *Client) SwitchTo(index int) (int, error) {
	var data DesktopData
	if err := c.call(CommandSwitchDesktop, SwitchDesktopPayload{Index: &index}, &data); err != nil {
		return 0, err
	}
	return data.Index, nil
}

func (c *Client) AddDesktop() (int, error) {
	var data DesktopData
	if err := c.call(CommandAddDesktop, nil, &data); err != nil {
		return 0, err
	}
	return data.Index, nil
}

func (c *Client) MoveToDesktop(id uint64, desktop int) error {
	return c.call(CommandMoveToDesktop, MoveToDesktopPayload{ID: id, Desktop: desktop}, nil)
}

// Tile arranges the active desktop in a grid and returns the window count.
func (c *Client) Tile() (int, error) {
	var data CountData
	if err := c.call(CommandTile, nil, &data); err != nil {
		return 0, err
	}
	return data.Count, nil
}

// Launch starts a configured application and returns its window id.
func (c *Client) Launch(app string, args []string) (uint64, error) {
	var data WindowData
	if err := c.call(CommandLaunch, LaunchPayload{App: app, Args: args}, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func (c *Client) SaveSession() error {
	return c.call(CommandSaveSession, nil, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
