package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Hotkeys maps shell actions to xgbutil key sequences (e.g. "Mod4-Right").
// An empty sequence leaves the action unbound.
type Hotkeys struct {
	CycleFocus      string `yaml:"cycle_focus"`
	NextDesktop     string `yaml:"next_desktop"`
	PreviousDesktop string `yaml:"previous_desktop"`
	Maximize        string `yaml:"maximize"`
	Minimize        string `yaml:"minimize"`
	Close           string `yaml:"close"`
	Tile            string `yaml:"tile"`
	AddDesktop      string `yaml:"add_desktop"`
}

// SessionConfig selects where the window session is persisted.
type SessionConfig struct {
	// Backend is "file" or "postgres".
	Backend        string `yaml:"backend"`
	File           string `yaml:"file"`
	DSN            string `yaml:"dsn,omitempty"`
	Autosave       bool   `yaml:"autosave"`
	RestoreOnStart bool   `yaml:"restore_on_start"`
}

// NotificationsConfig controls desktop notifications.
type NotificationsConfig struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMS int  `yaml:"timeout_ms"`
}

// TelemetryConfig controls the CPU/memory sampler.
type TelemetryConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMS int  `yaml:"interval_ms"`
}

// LoggingConfig configures the daemon log file.
type LoggingConfig struct {
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

type Config struct {
	MinWindowWidth  int     `yaml:"min_window_width"`
	MinWindowHeight int     `yaml:"min_window_height"`
	DefaultWindow   Size    `yaml:"default_window"`
	SnapEnabled     bool    `yaml:"snap_enabled"`
	SnapThreshold   int     `yaml:"snap_threshold"`
	TaskbarHeight   int     `yaml:"taskbar_height"`
	Transparency    float64 `yaml:"transparency"`
	IconGridSize    int     `yaml:"icon_grid_size"`
	InitialDesktops int     `yaml:"initial_desktops"`
	GapSize         int     `yaml:"gap_size"`
	FallbackScreen  Size    `yaml:"fallback_screen"`

	// Display overrides $DISPLAY for the X connection.
	Display string `yaml:"display,omitempty"`

	Hotkeys Hotkeys `yaml:"hotkeys"`

	// Apps maps an application id to the command that starts it.
	Apps          map[string]string `yaml:"apps"`
	LaunchTimeout int               `yaml:"launch_timeout"` // seconds

	Session       SessionConfig       `yaml:"session"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`

	ReconcileInterval int `yaml:"reconcile_interval"` // seconds, 0 disables

	LogLevel string        `yaml:"log_level"`
	Logging  LoggingConfig `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		MinWindowWidth:  200,
		MinWindowHeight: 150,
		DefaultWindow:   Size{Width: 400, Height: 300},
		SnapEnabled:     true,
		SnapThreshold:   10,
		TaskbarHeight:   40,
		Transparency:    0.95,
		IconGridSize:    48,
		InitialDesktops: 1,
		GapSize:         8,
		FallbackScreen:  Size{Width: 1024, Height: 768},
		Hotkeys: Hotkeys{
			CycleFocus:      "Mod1-Tab",
			NextDesktop:     "Mod4-Right",
			PreviousDesktop: "Mod4-Left",
			Maximize:        "Mod4-Up",
			Minimize:        "Mod4-Down",
			Close:           "Mod4-q",
			Tile:            "Mod4-t",
			AddDesktop:      "Mod4-n",
		},
		Apps: map[string]string{
			"terminal": "xterm",
			"editor":   "xterm -e nano",
			"monitor":  "xterm -e top",
		},
		LaunchTimeout: 10,
		Session: SessionConfig{
			Backend:        "file",
			File:           "~/.berke0s/session.json",
			Autosave:       true,
			RestoreOnStart: true,
		},
		Notifications: NotificationsConfig{
			Enabled:   true,
			TimeoutMS: 5000,
		},
		Telemetry: TelemetryConfig{
			Enabled:    true,
			IntervalMS: 2000,
		},
		ReconcileInterval: 5,
		LogLevel:          "info",
		Logging: LoggingConfig{
			File:      "~/.berke0s/berke0s.log",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// LaunchTimeoutDuration returns the launch timeout as a duration.
func (c *Config) LaunchTimeoutDuration() time.Duration {
	return time.Duration(c.LaunchTimeout) * time.Second
}

// ReconcileIntervalDuration returns the reconcile interval as a duration.
func (c *Config) ReconcileIntervalDuration() time.Duration {
	return time.Duration(c.ReconcileInterval) * time.Second
}

// TelemetryInterval returns the sampling interval as a duration.
func (c *Config) TelemetryInterval() time.Duration {
	return time.Duration(c.Telemetry.IntervalMS) * time.Millisecond
}

// SessionPath returns the session file with ~ expanded.
func (c *Config) SessionPath() (string, error) {
	return ExpandPath(c.Session.File)
}

// LogPath returns the log file with ~ expanded.
func (c *Config) LogPath() (string, error) {
	return ExpandPath(c.Logging.File)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.MinWindowWidth < 1 {
		return &ValidationError{Path: "min_window_width", Err: fmt.Errorf("min_window_width must be >= 1")}
	}
	if c.MinWindowHeight < 1 {
		return &ValidationError{Path: "min_window_height", Err: fmt.Errorf("min_window_height must be >= 1")}
	}
	if c.DefaultWindow.Width < 1 || c.DefaultWindow.Height < 1 {
		return &ValidationError{Path: "default_window", Err: fmt.Errorf("default_window width and height must be >= 1")}
	}
	if c.SnapThreshold < 0 {
		return &ValidationError{Path: "snap_threshold", Err: fmt.Errorf("snap_threshold must be >= 0")}
	}
	if c.TaskbarHeight < 0 || c.TaskbarHeight > 200 {
		return &ValidationError{Path: "taskbar_height", Err: fmt.Errorf("taskbar_height must be between 0 and 200")}
	}
	if c.Transparency < 0.1 || c.Transparency > 1.0 {
		return &ValidationError{Path: "transparency", Err: fmt.Errorf("transparency must be between 0.1 and 1.0")}
	}
	if c.IconGridSize < 16 {
		return &ValidationError{Path: "icon_grid_size", Err: fmt.Errorf("icon_grid_size must be >= 16")}
	}
	if c.InitialDesktops < 1 {
		return &ValidationError{Path: "initial_desktops", Err: fmt.Errorf("initial_desktops must be >= 1")}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.FallbackScreen.Width < 1 || c.FallbackScreen.Height <= c.TaskbarHeight {
		return &ValidationError{Path: "fallback_screen", Err: fmt.Errorf("fallback_screen must be larger than the taskbar")}
	}

	if c.Apps == nil {
		return &ValidationError{Path: "apps", Err: fmt.Errorf("apps must not be null")}
	}
	for name, cmd := range c.Apps {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "apps", Err: fmt.Errorf("apps contains an empty application id")}
		}
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: "apps." + name, Err: fmt.Errorf("command must not be empty")}
		}
	}
	if c.LaunchTimeout < 1 {
		return &ValidationError{Path: "launch_timeout", Err: fmt.Errorf("launch_timeout must be >= 1")}
	}

	switch c.Session.Backend {
	case "file":
		if strings.TrimSpace(c.Session.File) == "" {
			return &ValidationError{Path: "session.file", Err: fmt.Errorf("session.file is required for the file backend")}
		}
	case "postgres":
		if strings.TrimSpace(c.Session.DSN) == "" {
			return &ValidationError{Path: "session.dsn", Err: fmt.Errorf("session.dsn is required for the postgres backend")}
		}
	default:
		return &ValidationError{Path: "session.backend", Err: fmt.Errorf("session.backend must be one of: file, postgres")}
	}

	if c.Notifications.TimeoutMS < 0 {
		return &ValidationError{Path: "notifications.timeout_ms", Err: fmt.Errorf("timeout_ms must be >= 0")}
	}
	if c.Telemetry.Enabled && c.Telemetry.IntervalMS < 100 {
		return &ValidationError{Path: "telemetry.interval_ms", Err: fmt.Errorf("interval_ms must be >= 100")}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("logging limits must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string

	if c.MinWindowWidth > c.FallbackScreen.Width/2 {
		warnings = append(warnings, fmt.Sprintf("min_window_width %d is wider than a half-screen snap on the fallback screen", c.MinWindowWidth))
	}
	if !c.Session.Autosave && c.Session.RestoreOnStart {
		warnings = append(warnings, "session.restore_on_start is set but autosave is off; only explicit saves will be restored")
	}

	return warnings
}
