package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig starts from DefaultConfig and applies every key set in
// raw.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	apply(&cfg.MinWindowWidth, raw.MinWindowWidth)
	apply(&cfg.MinWindowHeight, raw.MinWindowHeight)
	applySize(&cfg.DefaultWindow, raw.DefaultWindow)
	apply(&cfg.SnapEnabled, raw.SnapEnabled)
	apply(&cfg.SnapThreshold, raw.SnapThreshold)
	apply(&cfg.TaskbarHeight, raw.TaskbarHeight)
	apply(&cfg.Transparency, raw.Transparency)
	apply(&cfg.IconGridSize, raw.IconGridSize)
	apply(&cfg.InitialDesktops, raw.InitialDesktops)
	apply(&cfg.GapSize, raw.GapSize)
	applySize(&cfg.FallbackScreen, raw.FallbackScreen)
	apply(&cfg.Display, raw.Display)

	if h := raw.Hotkeys; h != nil {
		apply(&cfg.Hotkeys.CycleFocus, h.CycleFocus)
		apply(&cfg.Hotkeys.NextDesktop, h.NextDesktop)
		apply(&cfg.Hotkeys.PreviousDesktop, h.PreviousDesktop)
		apply(&cfg.Hotkeys.Maximize, h.Maximize)
		apply(&cfg.Hotkeys.Minimize, h.Minimize)
		apply(&cfg.Hotkeys.Close, h.Close)
		apply(&cfg.Hotkeys.Tile, h.Tile)
		apply(&cfg.Hotkeys.AddDesktop, h.AddDesktop)
	}

	for id, cmd := range raw.Apps {
		cfg.Apps[id] = cmd
	}
	apply(&cfg.LaunchTimeout, raw.LaunchTimeout)

	if s := raw.Session; s != nil {
		apply(&cfg.Session.Backend, s.Backend)
		apply(&cfg.Session.File, s.File)
		apply(&cfg.Session.DSN, s.DSN)
		apply(&cfg.Session.Autosave, s.Autosave)
		apply(&cfg.Session.RestoreOnStart, s.RestoreOnStart)
	}
	if n := raw.Notifications; n != nil {
		apply(&cfg.Notifications.Enabled, n.Enabled)
		apply(&cfg.Notifications.TimeoutMS, n.TimeoutMS)
	}
	if t := raw.Telemetry; t != nil {
		apply(&cfg.Telemetry.Enabled, t.Enabled)
		apply(&cfg.Telemetry.IntervalMS, t.IntervalMS)
	}

	apply(&cfg.ReconcileInterval, raw.ReconcileInterval)
	apply(&cfg.LogLevel, raw.LogLevel)
	if cfg.LogLevel == "warn" {
		cfg.LogLevel = "warning"
	}

	if l := raw.Logging; l != nil {
		apply(&cfg.Logging.File, l.File)
		apply(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		apply(&cfg.Logging.MaxFiles, l.MaxFiles)
	}

	return cfg, nil
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func applySize(dst *Size, src *RawSize) {
	if src == nil {
		return
	}
	apply(&dst.Width, src.Width)
	apply(&dst.Height, src.Height)
}
