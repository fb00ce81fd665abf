package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
	"github.com/BreDEVs/kontrol-sub000/internal/tui"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  berke0s window list [--json] [--desktop N]")
	fmt.Fprintln(w, "  berke0s window new [-i] [--title T] [--x X --y Y --width W --height H]")
	fmt.Fprintln(w, "  berke0s window close <id>")
	fmt.Fprintln(w, "  berke0s window drag <id> <x> <y>")
	fmt.Fprintln(w, "  berke0s window resize <id> <width> <height>")
	fmt.Fprintln(w, "  berke0s window max <id>")
	fmt.Fprintln(w, "  berke0s window min <id>")
	fmt.Fprintln(w, "  berke0s window focus <id>")
	fmt.Fprintln(w, "  berke0s window cycle")
	fmt.Fprintln(w, "  berke0s window move <id> <desktop>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Desktops are numbered from 1.")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "list":
		return runWindowList(client, args[1:])
	case "new":
		return runWindowNew(client, args[1:])
	case "close":
		return withID("close", args[1:], client.CloseWindow)
	case "max":
		return withID("max", args[1:], client.Maximize)
	case "min":
		return withID("min", args[1:], client.Minimize)
	case "focus":
		return withID("focus", args[1:], client.Focus)
	case "drag":
		return withIDAndPair("drag", "<x> <y>", args[1:], client.Drag)
	case "resize":
		return withIDAndPair("resize", "<width> <height>", args[1:], client.Resize)
	case "cycle":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "cycle takes no arguments")
			return 2
		}
		id, ok, err := client.CycleFocus()
		if err != nil {
			return fail(err)
		}
		if !ok {
			infoColor.Println("nothing to cycle")
			return 0
		}
		fmt.Println(id)
		return 0
	case "move":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: berke0s window move <id> <desktop>")
			return 2
		}
		id, err := parseID(args[1])
		if err != nil {
			return fail(err)
		}
		desktop, err := parseDesktop(args[2])
		if err != nil {
			return fail(err)
		}
		if err := client.MoveToDesktop(id, desktop); err != nil {
			return fail(err)
		}
		return 0
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func runWindowList(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON")
	desktop := fs.Int("desktop", 0, "Only list windows on desktop N")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := client.ListWindows()
	if err != nil {
		return fail(err)
	}
	windows := data.Windows
	if *desktop > 0 {
		windows = filterDesktop(windows, *desktop-1)
	}
	if *asJSON {
		return printJSON(windows)
	}

	if len(windows) == 0 {
		infoColor.Println("no windows")
		return 0
	}
	for _, w := range windows {
		marker := " "
		if w.Focused {
			marker = okColor.Sprint("*")
		}
		fmt.Printf("%s %s  %-24s %4d,%-4d %4dx%-4d desktop %d  %s\n",
			marker,
			keyColor.Sprintf("%-10d", w.ID),
			truncate(w.Title, 24),
			w.X, w.Y, w.Width, w.Height,
			w.Desktop+1,
			w.State,
		)
	}
	return 0
}

func filterDesktop(windows []ipc.WindowInfo, desktop int) []ipc.WindowInfo {
	out := make([]ipc.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if w.Desktop == desktop {
			out = append(out, w)
		}
	}
	return out
}

func runWindowNew(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	interactive := fs.Bool("i", false, "Prompt for title and geometry")
	title := fs.String("title", "New Window", "Window title")
	x := fs.Int("x", 0, "Left edge")
	y := fs.Int("y", 0, "Top edge")
	width := fs.Int("width", 0, "Width (0 centers with the default size)")
	height := fs.Int("height", 0, "Height (0 centers with the default size)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	var payload ipc.CreateWindowPayload
	if *interactive {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
		payload, err = tui.PromptNewWindow(cfg)
		if err != nil {
			return fail(err)
		}
	} else {
		payload = newWindowPayload(*title, *x, *y, *width, *height)
	}

	id, err := client.CreateWindow(payload)
	if err != nil {
		return fail(err)
	}
	fmt.Println(id)
	return 0
}

// newWindowPayload centers the window unless a size is given.
func newWindowPayload(title string, x, y, width, height int) ipc.CreateWindowPayload {
	if width == 0 && height == 0 {
		return ipc.CreateWindowPayload{Title: title, Centered: true}
	}
	return ipc.CreateWindowPayload{Title: title, X: x, Y: y, Width: width, Height: height}
}

func withID(name string, args []string, op func(uint64) error) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: berke0s window %s <id>\n", name)
		return 2
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	if err := op(id); err != nil {
		return fail(err)
	}
	return 0
}

func withIDAndPair(name, pair string, args []string, op func(uint64, int, int) error) int {
	if len(args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: berke0s window %s <id> %s\n", name, pair)
		return 2
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(err)
	}
	a, err := strconv.Atoi(args[1])
	if err != nil {
		return fail(fmt.Errorf("invalid number %q", args[1]))
	}
	b, err := strconv.Atoi(args[2])
	if err != nil {
		return fail(fmt.Errorf("invalid number %q", args[2]))
	}
	if err := op(id, a, b); err != nil {
		return fail(err)
	}
	return 0
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return id, nil
}

// parseDesktop converts a 1-based desktop number to an index.
func parseDesktop(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid desktop %q (desktops start at 1)", s)
	}
	return n - 1, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printDesktopUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  berke0s desktop add")
	fmt.Fprintln(w, "  berke0s desktop next")
	fmt.Fprintln(w, "  berke0s desktop prev")
	fmt.Fprintln(w, "  berke0s desktop switch <n>")
}

func runDesktop(args []string) int {
	if len(args) == 0 {
		printDesktopUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	var (
		idx int
		err error
	)
	switch args[0] {
	case "add":
		idx, err = client.AddDesktop()
	case "next":
		idx, err = client.SwitchDesktop("next")
	case "prev", "previous":
		idx, err = client.SwitchDesktop("previous")
	case "switch":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: berke0s desktop switch <n>")
			return 2
		}
		target, perr := parseDesktop(args[1])
		if perr != nil {
			return fail(perr)
		}
		idx, err = client.SwitchTo(target)
	case "help", "-h", "--help":
		printDesktopUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown desktop command: %s\n\n", args[0])
		printDesktopUsage(os.Stderr)
		return 2
	}
	if err != nil {
		return fail(err)
	}
	fmt.Printf("desktop %d\n", idx+1)
	return 0
}

func runTile(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: berke0s tile")
		return 2
	}
	n, err := ipc.NewClient().Tile()
	if err != nil {
		return fail(err)
	}
	okColor.Printf("tiled %d windows\n", n)
	return 0
}

func runLaunch(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: berke0s launch <app> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Apps are configured under 'apps' in the config file.")
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	id, err := ipc.NewClient().Launch(args[0], args[1:])
	if err != nil {
		return fail(err)
	}
	fmt.Println(id)
	return 0
}

func runSession(args []string) int {
	if len(args) != 1 || args[0] != "save" {
		fmt.Fprintln(os.Stderr, "Usage: berke0s session save")
		return 2
	}
	if err := ipc.NewClient().SaveSession(); err != nil {
		return fail(err)
	}
	okColor.Println("session saved")
	return 0
}
