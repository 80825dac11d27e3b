package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jkl-dev/jkl/internal/config"
	"github.com/jkl-dev/jkl/internal/filter"
	"github.com/jkl-dev/jkl/internal/store"
	"github.com/jkl-dev/jkl/internal/tmux"
	"github.com/jkl-dev/jkl/internal/ui"
)

// Collaborator constructors, replaced in tests.
var (
	newSessionSource = func(cfg config.UserConfig) ui.SessionSource {
		return tmux.NewClient(cfg.Tmux.GetBinary())
	}
	newFilter = func(cfg config.UserConfig) (filter.Filter, error) {
		return filter.New(cfg.Filter.GetBackend(), cfg.Filter.GetFzfPath())
	}
	runProgram = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
)

// loadSettings returns the user config. A broken config.toml is reported
// and the defaults are used.
func loadSettings() config.UserConfig {
	if _, err := config.LoadUserConfig(); err != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cliLog.Warn("config_load_failed", slog.String("error", err.Error()))
	}
	return config.Settings()
}

func openStore() (*store.Store, error) {
	path, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	return store.New(path), nil
}

// parseFlags parses args into fs. -h yields flag.ErrHelp, which callers
// treat as success.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(stderr)
	return fs.Parse(normalizeArgs(fs, args))
}

func handleNavigate(args []string) error {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl [navigate]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Browse tmux sessions, filter them and switch the client.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Keys: j/k move, l/h expand/collapse panes, / search, r refresh, enter switch, q quit")
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if !isTerminal() {
		return errors.New("navigate needs an interactive terminal")
	}

	cfg := loadSettings()
	ui.InitTheme(config.ResolveTheme())

	st, err := openStore()
	if err != nil {
		return err
	}
	f, err := newFilter(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	nav := ui.NewNavigator(newSessionSource(cfg), st, f, cfg.Display.GetPlaceholder())
	if err := nav.Refresh(ctx); err != nil {
		return err
	}

	home := ui.NewHome(ctx, nav, cfg.Display.GetShowPaneCount())
	if err := runProgram(home); err != nil {
		return err
	}
	if target := home.Switched(); target != "" {
		cliLog.Info("navigate_switched", slog.String("target", target))
	}
	return home.Err()
}

func handlePaneStatus(args []string) error {
	fs := flag.NewFlagSet("pane-status", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl pane-status <session-name> <pane-id>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Pick a status for one pane. Bind it in tmux, e.g.:")
		fmt.Fprintln(stderr, `  bind S display-popup -E "jkl pane-status '#{session_name}' '#{pane_id}'"`)
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("%w: pane-status needs <session-name> <pane-id>", errMissingArgument)
	}
	sessionName, paneID := fs.Arg(0), fs.Arg(1)

	if !isTerminal() {
		return errors.New("pane-status needs an interactive terminal")
	}
	ui.InitTheme(config.ResolveTheme())

	st, err := openStore()
	if err != nil {
		return err
	}
	records, err := st.Load()
	if err != nil {
		return err
	}

	selector := ui.NewPaneStatusSelector(sessionName, paneID, records.Get(sessionName).PaneStatus(paneID))
	dialog := ui.NewPaneStatusDialog(selector, st)
	if err := runProgram(dialog); err != nil {
		return err
	}
	return dialog.Err()
}

func handleUpsert(args []string) error {
	fs := flag.NewFlagSet("upsert", flag.ContinueOnError)
	id := fs.String("id", "", "tmux session id (e.g. $3)")
	pane := fs.String("pane", "", "pane id (e.g. %7); --status then applies to the pane")
	statusFlag := fs.String("status", "", "idle, working, waiting, done or unset")
	contextFlag := fs.String("context", "", "free-text note for the session")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl upsert <session-name> [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Record metadata for a session. Omitted options leave fields as they are.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, `  jkl upsert build --status working --context "release build"`)
		fmt.Fprintln(stderr, `  jkl upsert build --pane %7 --status waiting`)
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("%w: upsert needs <session-name>", errMissingArgument)
	}
	name := fs.Arg(0)

	var status *store.AgentStatus
	if flagWasSet(fs, "status") {
		parsed, err := store.ParseStatus(*statusFlag)
		if err != nil {
			return err
		}
		status = &parsed
	}

	var update store.SessionUpdate
	if flagWasSet(fs, "id") {
		update.SessionID = id
	}
	if flagWasSet(fs, "context") {
		update.Context = contextFlag
	}
	if *pane == "" {
		update.Status = status
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if _, err := st.UpsertSession(name, update); err != nil {
		return err
	}
	if *pane == "" {
		return nil
	}

	if status == nil {
		// No --status: keep whatever the pane already has.
		records, err := st.Load()
		if err != nil {
			return err
		}
		status = records.Get(name).PaneStatus(*pane)
	}
	return st.UpsertPane(name, *pane, status)
}

func handleRename(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl rename <old-session-id> <new-name>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Move a session's metadata to its new name. Hook it up in tmux with:")
		fmt.Fprintln(stderr, `  set-hook -g session-renamed "run-shell 'jkl rename #{session_id} #{session_name}'"`)
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("%w: rename needs <old-session-id> <new-name>", errMissingArgument)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	return st.RenameSession(fs.Arg(0), fs.Arg(1))
}

func handlePrune(args []string) error {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl prune")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Drop pane metadata for panes tmux no longer reports.")
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := loadSettings()
	panes, err := newSessionSource(cfg).ListPanes(context.Background())
	if err != nil {
		return err
	}
	live := make(store.LivePanes)
	for _, p := range panes {
		live.Add(p.SessionName, p.PaneID)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	return st.Prune(live)
}

// listedSession is one entry of `jkl list --json`.
type listedSession struct {
	Key       string            `json:"key"`
	Name      string            `json:"session_name,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Status    string            `json:"status,omitempty"`
	Context   string            `json:"context,omitempty"`
	Panes     map[string]string `json:"panes,omitempty"`
}

const (
	listColName   = 24
	listColID     = 6
	listColStatus = 8
	listColPanes  = 28
)

func handleList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jkl list [--json]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Print stored session and pane metadata.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	records, err := st.Load()
	if err != nil {
		return err
	}
	sessions := listSessions(records)

	if *jsonOutput {
		if sessions == nil {
			sessions = []listedSession{}
		}
		output, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %w", err)
		}
		fmt.Fprintln(stdout, string(output))
		return nil
	}

	if len(sessions) == 0 {
		fmt.Fprintln(stdout, "No session metadata recorded.")
		return nil
	}

	placeholder := config.Settings().Display.GetPlaceholder()
	orDash := func(s string) string {
		if s == "" {
			return placeholder
		}
		return s
	}

	fmt.Fprintf(stdout, "%s %s %s %s %s\n",
		padRight("NAME", listColName), padRight("ID", listColID),
		padRight("STATUS", listColStatus), padRight("PANES", listColPanes), "CONTEXT")
	fmt.Fprintln(stdout, strings.Repeat("-", listColName+listColID+listColStatus+listColPanes+12))
	for _, s := range sessions {
		paneIDs := make([]string, 0, len(s.Panes))
		for id := range s.Panes {
			paneIDs = append(paneIDs, id)
		}
		sort.Slice(paneIDs, func(i, j int) bool { return store.ComparePaneIDs(paneIDs[i], paneIDs[j]) < 0 })
		panes := make([]string, 0, len(paneIDs))
		for _, id := range paneIDs {
			panes = append(panes, id+"="+orDash(s.Panes[id]))
		}

		fmt.Fprintf(stdout, "%s %s %s %s %s\n",
			padRight(orDash(s.Name), listColName),
			padRight(orDash(s.SessionID), listColID),
			padRight(orDash(s.Status), listColStatus),
			padRight(orDash(strings.Join(panes, " ")), listColPanes),
			orDash(filter.SanitizeField(strings.TrimSpace(s.Context))))
	}
	fmt.Fprintf(stdout, "\nTotal: %d sessions\n", len(sessions))
	return nil
}

// listSessions flattens records, sorted by name then key.
func listSessions(records store.Records) []listedSession {
	var out []listedSession
	for key, rec := range records {
		if rec == nil {
			continue
		}
		ls := listedSession{
			Key:       key,
			Name:      rec.Name(),
			SessionID: rec.ID(),
			Context:   rec.ContextText(),
		}
		if rec.Status != nil {
			ls.Status = rec.Status.String()
		}
		if len(rec.Panes) > 0 {
			ls.Panes = make(map[string]string, len(rec.Panes))
			for _, id := range rec.PaneIDs() {
				if st := rec.PaneStatus(id); st != nil {
					ls.Panes[id] = st.String()
				} else {
					ls.Panes[id] = ""
				}
			}
		}
		out = append(out, ls)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func handleConfig(args []string) error {
	if len(args) == 0 || args[0] != "init" {
		fmt.Fprintln(stderr, "Usage: jkl config init")
		if len(args) == 0 {
			return fmt.Errorf("%w: config needs a subcommand", errMissingArgument)
		}
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}

	path, written, err := config.CreateExampleConfig()
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(stdout, "Created %s\n", path)
	} else {
		fmt.Fprintf(stdout, "Config already exists at %s\n", path)
	}
	return nil
}
