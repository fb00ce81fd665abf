package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/daemon"
	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
	"github.com/BreDEVs/kontrol-sub000/internal/logging"
	"github.com/BreDEVs/kontrol-sub000/internal/platform"
	"github.com/BreDEVs/kontrol-sub000/internal/runtimepath"
	"github.com/BreDEVs/kontrol-sub000/internal/tui"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	keyColor  = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "desktop":
		os.Exit(runDesktop(os.Args[2:]))
	case "tile":
		os.Exit(runTile(os.Args[2:]))
	case "launch":
		os.Exit(runLaunch(os.Args[2:]))
	case "session":
		os.Exit(runSession(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: berke0s <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the window manager daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List managed windows")
	fmt.Fprintln(w, "  window new          Open a placeholder window")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window drag         Move a window (snaps to edges)")
	fmt.Fprintln(w, "  window resize       Resize a window")
	fmt.Fprintln(w, "  window max          Toggle maximize")
	fmt.Fprintln(w, "  window min          Minimize a window")
	fmt.Fprintln(w, "  window focus        Focus a window")
	fmt.Fprintln(w, "  window cycle        Focus the next window")
	fmt.Fprintln(w, "  window move         Move a window to another desktop")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  desktop add         Add a virtual desktop")
	fmt.Fprintln(w, "  desktop next        Switch to the next desktop")
	fmt.Fprintln(w, "  desktop prev        Switch to the previous desktop")
	fmt.Fprintln(w, "  desktop switch      Switch to a desktop by number")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tile                Tile the active desktop")
	fmt.Fprintln(w, "  launch              Launch a configured application")
	fmt.Fprintln(w, "  session save        Save the window session now")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config init         Write the default config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  tui                 Open interactive dashboard")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'berke0s <command> --help' for command-specific options.")
}

// parseFlags parses args and reports the exit code to use when parsing
// stops the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func fail(err error) int {
	errColor.Fprint(os.Stderr, "error: ")
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(data))
	return 0
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/berke0s/config.yaml)")
	headless := fs.Bool("headless", false, "Run without an X display")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: berke0s daemon [--config PATH] [--headless]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground. SIGHUP reloads the config.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfgPath := *path
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return fail(err)
		}
		cfgPath = p
	}
	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		return fail(fmt.Errorf("failed to load configuration: %w", err))
	}
	cfg := res.Config

	logPath, err := cfg.LogPath()
	if err != nil {
		return fail(err)
	}
	logger, logCloser, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		FilePath:  logPath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Stderr:    true,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to open log: %w", err))
	}
	defer logCloser.Close()

	if daemon.IsRunning(ipc.NewClient()) {
		return fail(daemon.ErrAlreadyRunning)
	}

	var backend platform.Backend
	if *headless {
		backend = platform.NewHeadlessBackend(cfg.FallbackScreen.Width, cfg.FallbackScreen.Height)
		logger.Info("running headless", "width", cfg.FallbackScreen.Width, "height", cfg.FallbackScreen.Height)
	} else {
		lb, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
		if err != nil {
			logger.Error("failed to connect to display", "error", err)
			fmt.Fprintln(os.Stderr, "hint: run with --headless to manage windows without X")
			return 1
		}
		defer lb.Disconnect()
		backend = lb
	}

	pidFile, err := runtimepath.PIDPath()
	if err != nil {
		logger.Warn("no pid file", "error", err)
		pidFile = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := daemon.New(ctx, cfg, backend, daemon.Options{
		ConfigPath: cfgPath,
		PIDFile:    pidFile,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					if err := d.Reload(); err != nil {
						logger.Warn("config reload failed", "error", err)
					}
					continue
				}
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	logger.Info("berke0s daemon started", "instance", d.InstanceID(), "config", cfgPath)
	if err := d.Run(ctx); err != nil {
		logger.Error("daemon stopped with error", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: berke0s status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		return fail(err)
	}
	if *asJSON {
		return printJSON(status)
	}

	okColor.Println("daemon running")
	printField("instance", status.InstanceID)
	printField("desktop", fmt.Sprintf("%d/%d", status.ActiveDesktop+1, status.DesktopCount))
	printField("windows", fmt.Sprint(status.WindowCount))
	if status.FocusedWindow != 0 {
		printField("focused", fmt.Sprint(status.FocusedWindow))
	}
	printField("screen", fmt.Sprintf("%dx%d", status.ScreenWidth, status.ScreenHeight))
	printField("cpu", fmt.Sprintf("%.1f%%", status.CPUPercent))
	printField("memory", fmt.Sprintf("%.1f%%", status.MemUsedPercent))
	printField("uptime", fmt.Sprintf("%ds", status.UptimeSeconds))
	if status.SessionDirty {
		infoColor.Println("session has unsaved changes")
	}
	return 0
}

func printField(key, value string) {
	keyColor.Printf("  %-9s", key+":")
	fmt.Println(" " + value)
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: berke0s tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the interactive dashboard.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		fs.Usage()
		return 2
	}
	if err := tui.Run(ipc.NewClient()); err != nil {
		return fail(err)
	}
	return 0
}
