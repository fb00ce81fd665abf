package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListWindows   CommandType = "LIST_WINDOWS"
	CommandCreateWindow  CommandType = "CREATE_WINDOW"
	CommandCloseWindow   CommandType = "CLOSE_WINDOW"
	CommandDrag          CommandType = "DRAG"
	CommandResize        CommandType = "RESIZE"
	CommandMaximize      CommandType = "MAXIMIZE"
	CommandMinimize      CommandType = "MINIMIZE"
	CommandFocus         CommandType = "FOCUS"
	CommandCycleFocus    CommandType = "CYCLE_FOCUS"
	CommandSwitchDesktop CommandType = "SWITCH_DESKTOP"
	CommandAddDesktop    CommandType = "ADD_DESKTOP"
	CommandMoveToDesktop CommandType = "MOVE_TO_DESKTOP"
	CommandTile          CommandType = "TILE"
	CommandLaunch        CommandType = "LAUNCH"
	CommandSaveSession   CommandType = "SAVE_SESSION"
	CommandReload        CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	InstanceID     string  `json:"instance_id"`
	ActiveDesktop  int     `json:"active_desktop"`
	DesktopCount   int     `json:"desktop_count"`
	WindowCount    int     `json:"window_count"`
	FocusedWindow  uint64  `json:"focused_window,omitempty"`
	ScreenWidth    int     `json:"screen_width"`
	ScreenHeight   int     `json:"screen_height"`
	SessionDirty   bool    `json:"session_dirty"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	DaemonRunning  bool    `json:"daemon_running"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Desktop int    `json:"desktop"`
	State   string `json:"state"`
	ZRank   uint64 `json:"z_rank"`
	Focused bool   `json:"focused"`
	Content uint64 `json:"content,omitempty"`
}

// DesktopInfo describes one virtual desktop.
type DesktopInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	WindowCount int    `json:"window_count"`
	Active      bool   `json:"active"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows  []WindowInfo  `json:"windows"`
	Desktops []DesktopInfo `json:"desktops"`
}

type CreateWindowPayload struct {
	Title  string `json:"title"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Centered ignores X/Y/Width/Height and uses the default window size.
	Centered bool `json:"centered,omitempty"`
}

type WindowPayload struct {
	ID uint64 `json:"id"`
}

type DragPayload struct {
	ID uint64 `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type ResizePayload struct {
	ID     uint64 `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type SwitchDesktopPayload struct {
	// Direction is "next" or "previous"; ignored when Index is set.
	Direction string `json:"direction,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

type MoveToDesktopPayload struct {
	ID      uint64 `json:"id"`
	Desktop int    `json:"desktop"`
}

type LaunchPayload struct {
	App  string   `json:"app"`
	Args []string `json:"args,omitempty"`
}

// WindowData carries a window id result. OK is false when nothing happened,
// as for a focus cycle with fewer than two windows.
type WindowData struct {
	ID uint64 `json:"id"`
	OK bool   `json:"ok"`
}

type DesktopData struct {
	Index int `json:"index"`
}

type CountData struct {
	Count int `json:"count"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
