package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawHotkeys struct {
	CycleFocus      *string `yaml:"cycle_focus"`
	NextDesktop     *string `yaml:"next_desktop"`
	PreviousDesktop *string `yaml:"previous_desktop"`
	Maximize        *string `yaml:"maximize"`
	Minimize        *string `yaml:"minimize"`
	Close           *string `yaml:"close"`
	Tile            *string `yaml:"tile"`
	AddDesktop      *string `yaml:"add_desktop"`
}

type RawSessionConfig struct {
	Backend        *string `yaml:"backend"`
	File           *string `yaml:"file"`
	DSN            *string `yaml:"dsn"`
	Autosave       *bool   `yaml:"autosave"`
	RestoreOnStart *bool   `yaml:"restore_on_start"`
}

type RawNotificationsConfig struct {
	Enabled   *bool `yaml:"enabled"`
	TimeoutMS *int  `yaml:"timeout_ms"`
}

type RawTelemetryConfig struct {
	Enabled    *bool `yaml:"enabled"`
	IntervalMS *int  `yaml:"interval_ms"`
}

type RawLoggingConfig struct {
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors Config with optional fields so that a file only
// overrides the keys it sets.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	MinWindowWidth  *int     `yaml:"min_window_width"`
	MinWindowHeight *int     `yaml:"min_window_height"`
	DefaultWindow   *RawSize `yaml:"default_window"`
	SnapEnabled     *bool    `yaml:"snap_enabled"`
	SnapThreshold   *int     `yaml:"snap_threshold"`
	TaskbarHeight   *int     `yaml:"taskbar_height"`
	Transparency    *float64 `yaml:"transparency"`
	IconGridSize    *int     `yaml:"icon_grid_size"`
	InitialDesktops *int     `yaml:"initial_desktops"`
	GapSize         *int     `yaml:"gap_size"`
	FallbackScreen  *RawSize `yaml:"fallback_screen"`
	Display         *string  `yaml:"display"`

	Hotkeys *RawHotkeys `yaml:"hotkeys"`

	Apps          map[string]string `yaml:"apps"`
	LaunchTimeout *int              `yaml:"launch_timeout"`

	Session       *RawSessionConfig       `yaml:"session"`
	Notifications *RawNotificationsConfig `yaml:"notifications"`
	Telemetry     *RawTelemetryConfig     `yaml:"telemetry"`

	ReconcileInterval *int `yaml:"reconcile_interval"`

	LogLevel *string           `yaml:"log_level"`
	Logging  *RawLoggingConfig `yaml:"logging"`
}

// merge overlays other onto r; keys set in other win.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r

	setPtr(&out.MinWindowWidth, other.MinWindowWidth)
	setPtr(&out.MinWindowHeight, other.MinWindowHeight)
	out.DefaultWindow = mergeSize(out.DefaultWindow, other.DefaultWindow)
	setPtr(&out.SnapEnabled, other.SnapEnabled)
	setPtr(&out.SnapThreshold, other.SnapThreshold)
	setPtr(&out.TaskbarHeight, other.TaskbarHeight)
	setPtr(&out.Transparency, other.Transparency)
	setPtr(&out.IconGridSize, other.IconGridSize)
	setPtr(&out.InitialDesktops, other.InitialDesktops)
	setPtr(&out.GapSize, other.GapSize)
	out.FallbackScreen = mergeSize(out.FallbackScreen, other.FallbackScreen)
	setPtr(&out.Display, other.Display)

	if other.Hotkeys != nil {
		h := RawHotkeys{}
		if out.Hotkeys != nil {
			h = *out.Hotkeys
		}
		setPtr(&h.CycleFocus, other.Hotkeys.CycleFocus)
		setPtr(&h.NextDesktop, other.Hotkeys.NextDesktop)
		setPtr(&h.PreviousDesktop, other.Hotkeys.PreviousDesktop)
		setPtr(&h.Maximize, other.Hotkeys.Maximize)
		setPtr(&h.Minimize, other.Hotkeys.Minimize)
		setPtr(&h.Close, other.Hotkeys.Close)
		setPtr(&h.Tile, other.Hotkeys.Tile)
		setPtr(&h.AddDesktop, other.Hotkeys.AddDesktop)
		out.Hotkeys = &h
	}

	if other.Apps != nil {
		apps := make(map[string]string, len(out.Apps)+len(other.Apps))
		for k, v := range out.Apps {
			apps[k] = v
		}
		for k, v := range other.Apps {
			apps[k] = v
		}
		out.Apps = apps
	}
	setPtr(&out.LaunchTimeout, other.LaunchTimeout)

	if other.Session != nil {
		s := RawSessionConfig{}
		if out.Session != nil {
			s = *out.Session
		}
		setPtr(&s.Backend, other.Session.Backend)
		setPtr(&s.File, other.Session.File)
		setPtr(&s.DSN, other.Session.DSN)
		setPtr(&s.Autosave, other.Session.Autosave)
		setPtr(&s.RestoreOnStart, other.Session.RestoreOnStart)
		out.Session = &s
	}
	if other.Notifications != nil {
		n := RawNotificationsConfig{}
		if out.Notifications != nil {
			n = *out.Notifications
		}
		setPtr(&n.Enabled, other.Notifications.Enabled)
		setPtr(&n.TimeoutMS, other.Notifications.TimeoutMS)
		out.Notifications = &n
	}
	if other.Telemetry != nil {
		t := RawTelemetryConfig{}
		if out.Telemetry != nil {
			t = *out.Telemetry
		}
		setPtr(&t.Enabled, other.Telemetry.Enabled)
		setPtr(&t.IntervalMS, other.Telemetry.IntervalMS)
		out.Telemetry = &t
	}

	setPtr(&out.ReconcileInterval, other.ReconcileInterval)
	setPtr(&out.LogLevel, other.LogLevel)

	if other.Logging != nil {
		l := RawLoggingConfig{}
		if out.Logging != nil {
			l = *out.Logging
		}
		setPtr(&l.File, other.Logging.File)
		setPtr(&l.MaxSizeMB, other.Logging.MaxSizeMB)
		setPtr(&l.MaxFiles, other.Logging.MaxFiles)
		out.Logging = &l
	}

	return out
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeSize(base, other *RawSize) *RawSize {
	if other == nil {
		return base
	}
	s := RawSize{}
	if base != nil {
		s = *base
	}
	setPtr(&s.Width, other.Width)
	setPtr(&s.Height, other.Height)
	return &s
}
