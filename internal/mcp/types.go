package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Desktop *int `json:"desktop,omitempty" jsonschema:"Only list windows on this desktop index"`
}

// WindowSummary describes one managed window.
type WindowSummary struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	Desktop int    `json:"desktop"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	State   string `json:"state"`
	Focused bool   `json:"focused"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	ActiveDesktop int             `json:"active_desktop"`
	DesktopCount  int             `json:"desktop_count"`
	Windows       []WindowSummary `json:"windows"`
}

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	Title  string `json:"title" jsonschema:"Window title"`
	X      *int   `json:"x,omitempty" jsonschema:"Left edge in pixels; omit x/y/width/height for a centered default window"`
	Y      *int   `json:"y,omitempty" jsonschema:"Top edge in pixels"`
	Width  *int   `json:"width,omitempty" jsonschema:"Width in pixels (clamped to the minimum window size)"`
	Height *int   `json:"height,omitempty" jsonschema:"Height in pixels (clamped to the minimum window size)"`
}

// WindowOutput reports the window a tool acted on.
type WindowOutput struct {
	ID uint64 `json:"id"`
}

// WindowInput selects a window by id.
type WindowInput struct {
	ID uint64 `json:"id" jsonschema:"Window id from list_windows"`
}

// CycleFocusInput is the input for the cycle_focus tool.
type CycleFocusInput struct{}

// CycleFocusOutput is the output for the cycle_focus tool.
type CycleFocusOutput struct {
	ID      uint64 `json:"id,omitempty"`
	Changed bool   `json:"changed"`
}

// SwitchDesktopInput is the input for the switch_desktop tool.
type SwitchDesktopInput struct {
	Direction string `json:"direction,omitempty" jsonschema:"next or previous; ignored when index is set"`
	Index     *int   `json:"index,omitempty" jsonschema:"Desktop index to activate"`
}

// SwitchDesktopOutput is the output for the switch_desktop tool.
type SwitchDesktopOutput struct {
	ActiveDesktop int `json:"active_desktop"`
}

// LaunchAppInput is the input for the launch_app tool.
type LaunchAppInput struct {
	App  string   `json:"app" jsonschema:"Application id from the apps section of the config"`
	Args []string `json:"args,omitempty" jsonschema:"Extra command line arguments"`
}

// SaveSessionInput is the input for the save_session tool.
type SaveSessionInput struct{}

// OKOutput is returned by tools with no other result.
type OKOutput struct {
	OK bool `json:"ok"`
}
