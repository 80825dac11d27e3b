package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jkl-dev/jkl/internal/config"
	"github.com/jkl-dev/jkl/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "0.3.0"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var cliLog = logging.ForComponent(logging.CompCLI)

// errMissingArgument is returned when a command is invoked without a
// required positional argument.
var errMissingArgument = errors.New("missing argument")

func init() {
	initColorProfile()
}

// initColorProfile picks the lipgloss color profile.
// JKL_COLOR: truecolor, 256, 16, none
func initColorProfile() {
	switch strings.ToLower(os.Getenv("JKL_COLOR")) {
	case "truecolor", "true", "24bit":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	case "256", "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "16", "ansi", "basic":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "none", "off", "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	switch term := os.Getenv("TERM"); {
	case strings.Contains(term, "256color"), strings.Contains(term, "kitty"),
		strings.Contains(term, "alacritty"), strings.Contains(term, "direct"):
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command line and returns the process exit code.
func run(args []string) int {
	debugMode := os.Getenv(config.EnvDebug) != ""
	logDir := setupLogging(debugMode)
	defer logging.Shutdown()

	err := dispatch(args)
	if err == nil {
		return 0
	}

	cliLog.Error("command_failed", slog.String("error", err.Error()))
	if debugMode && logDir != "" {
		dumpPath := filepath.Join(logDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
		if dumpErr := logging.DumpRingBuffer(dumpPath); dumpErr == nil {
			fmt.Fprintf(stderr, "Debug log dumped to %s\n", dumpPath)
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func dispatch(args []string) error {
	if len(args) == 0 {
		return handleNavigate(nil)
	}
	switch args[0] {
	case "navigate", "nav":
		return handleNavigate(args[1:])
	case "pane-status":
		return handlePaneStatus(args[1:])
	case "upsert":
		return handleUpsert(args[1:])
	case "rename":
		return handleRename(args[1:])
	case "prune":
		return handlePrune(args[1:])
	case "list", "ls":
		return handleList(args[1:])
	case "config":
		return handleConfig(args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "jkl v%s\n", Version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	}
	printHelp(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

// setupLogging initializes logging from config.toml. Logs go to debug.log in
// the config dir when JKL_DEBUG is set and are discarded otherwise. Returns
// the log dir, or "" when logging is off.
func setupLogging(debugMode bool) string {
	if !debugMode {
		logging.Init(logging.Config{})
		return ""
	}
	dir, err := config.Dir()
	if err != nil {
		logging.Init(logging.Config{})
		return ""
	}

	logCfg := logging.Config{
		Debug:          true,
		LogDir:         dir,
		Level:          "debug",
		Format:         "json",
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     10,
		RingBufferSize: 256 * 1024,
	}
	if userCfg, err := config.LoadUserConfig(); err == nil {
		ls := userCfg.Logs
		if ls.DebugLevel != "" {
			logCfg.Level = ls.DebugLevel
		}
		if ls.DebugFormat != "" {
			logCfg.Format = ls.DebugFormat
		}
		if ls.DebugMaxMB > 0 {
			logCfg.MaxSizeMB = ls.DebugMaxMB
		}
		if ls.DebugBackups > 0 {
			logCfg.MaxBackups = ls.DebugBackups
		}
		if ls.DebugRetentionDays > 0 {
			logCfg.MaxAgeDays = ls.DebugRetentionDays
		}
		if ls.DebugCompress {
			logCfg.Compress = true
		}
		if ls.RingBufferKB > 0 {
			logCfg.RingBufferSize = ls.RingBufferKB * 1024
		}
	}

	logging.Init(logCfg)
	cliLog.Info("jkl_started", slog.Int("pid", os.Getpid()), slog.String("version", Version))
	return dir
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "jkl v%s\n", Version)
	fmt.Fprintln(w, "Status and notes for tmux sessions, with a fuzzy session navigator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: jkl [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none), navigate                 Browse, filter and switch sessions")
	fmt.Fprintln(w, "  pane-status <session> <pane>     Pick a status for one pane")
	fmt.Fprintln(w, "  upsert <session> [options]       Record id, status or context for a session")
	fmt.Fprintln(w, "  rename <old-id> <new-name>       Carry metadata across a tmux rename")
	fmt.Fprintln(w, "  prune                            Drop metadata of panes tmux no longer reports")
	fmt.Fprintln(w, "  list, ls [--json]                Print stored metadata")
	fmt.Fprintln(w, "  config init                      Write an example config.toml")
	fmt.Fprintln(w, "  version                          Show version")
	fmt.Fprintln(w, "  help                             Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Statuses: idle, working, waiting, done, unset")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %-16s Config directory (default ~/.config/jkl)\n", config.EnvConfigDir)
	fmt.Fprintf(w, "  %-16s Write debug.log to the config directory\n", config.EnvDebug)
	fmt.Fprintf(w, "  %-16s Color profile: truecolor, 256, 16, none\n", "JKL_COLOR")
}
