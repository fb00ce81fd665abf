package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

// WindowForm holds the text fields of the new-window form.
type WindowForm struct {
	Title    string
	Centered bool
	X        string
	Y        string
	Width    string
	Height   string
}

// NewWindowForm returns form values seeded from cfg's default window size.
func NewWindowForm(cfg *config.Config) *WindowForm {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &WindowForm{
		Title:    "New Window",
		Centered: true,
		X:        "0",
		Y:        "0",
		Width:    strconv.Itoa(cfg.DefaultWindow.Width),
		Height:   strconv.Itoa(cfg.DefaultWindow.Height),
	}
}

// Build returns the huh form bound to f.
func (f *WindowForm) Build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Validate(validateTitle).
				Value(&f.Title),

			huh.NewConfirm().
				Key("centered").
				Title("Center on screen?").
				Description("Uses the default window size").
				Value(&f.Centered),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("x").
				Title("X").
				Validate(validateInt).
				Value(&f.X),
			huh.NewInput().
				Key("y").
				Title("Y").
				Validate(validateInt).
				Value(&f.Y),
			huh.NewInput().
				Key("width").
				Title("Width").
				Description("Clamped to the minimum window width").
				Validate(validateInt).
				Value(&f.Width),
			huh.NewInput().
				Key("height").
				Title("Height").
				Description("Clamped to the minimum window height").
				Validate(validateInt).
				Value(&f.Height),
		).WithHideFunc(func() bool { return f.Centered }),
	).WithShowHelp(true).WithShowErrors(true)
}

// Payload converts the form values into a CREATE_WINDOW payload.
func (f *WindowForm) Payload() (ipc.CreateWindowPayload, error) {
	p := ipc.CreateWindowPayload{Title: strings.TrimSpace(f.Title), Centered: f.Centered}
	if err := validateTitle(p.Title); err != nil {
		return p, err
	}
	if f.Centered {
		return p, nil
	}

	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"x", f.X, &p.X},
		{"y", f.Y, &p.Y},
		{"width", f.Width, &p.Width},
		{"height", f.Height, &p.Height},
	}
	for _, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field.raw))
		if err != nil {
			return p, fmt.Errorf("%s must be a whole number, got %q", field.name, field.raw)
		}
		*field.dst = v
	}
	return p, nil
}

// PromptNewWindow runs the form on the terminal.
func PromptNewWindow(cfg *config.Config) (ipc.CreateWindowPayload, error) {
	if !isInteractive() {
		return ipc.CreateWindowPayload{}, fmt.Errorf("interactive mode requires a terminal")
	}
	f := NewWindowForm(cfg)
	if err := f.Build().Run(); err != nil {
		return ipc.CreateWindowPayload{}, err
	}
	return f.Payload()
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}
