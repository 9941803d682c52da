// Package main provides the CLI entrypoint for kanadrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kanadrill/internal/config"
	"github.com/verte-zerg/kanadrill/internal/kana"
	"github.com/verte-zerg/kanadrill/internal/listing"
	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/scheduler"
	"github.com/verte-zerg/kanadrill/internal/selection"
	"github.com/verte-zerg/kanadrill/internal/store"
	"github.com/verte-zerg/kanadrill/internal/tui"
)

const defaultStore = model.StoreFile

var (
	storeKind     string
	selectionPath string
	dbPath        string
	practiceSeed  int64
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kanadrill",
		Short:         "Katakana flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&storeKind, "store", defaultStore, "selection store: file or sqlite")
	rootCmd.PersistentFlags().StringVar(&selectionPath, "selection", config.DefaultSelectionPath(), "selection file path (file store)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "database path (sqlite store)")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "shuffle seed (0 seeds from the clock)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newToggleCmd("enable", "Enable groups or characters", true))
	rootCmd.AddCommand(newToggleCmd("disable", "Disable groups or characters", false))
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "store", &storeKind, fileCfg.Practice.Store)
	applyStringConfig(cmd, "selection", &selectionPath, fileCfg.Practice.Selection)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Practice.DB)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)

	cfg := model.Config{
		Store:         strings.ToLower(strings.TrimSpace(storeKind)),
		SelectionPath: selectionPath,
		DBPath:        dbPath,
		Seed:          practiceSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// openSelection builds the selection store for cfg. The returned closer must
// be called once the store is no longer needed.
func openSelection(cfg model.Config, logger *slog.Logger) (*selection.Store, func(), error) {
	switch cfg.Store {
	case model.StoreSQLite:
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		closer := func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("failed to close db", "err", cerr)
			}
		}
		return selection.NewStore(st, logger), closer, nil
	default:
		return selection.NewStore(selection.NewFilePersister(cfg.SelectionPath), logger), func() {}, nil
	}
}

// openLogFile returns a logger appending to path and a closer for the file.
func openLogFile(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	closer := func() {
		if cerr := f.Close(); cerr != nil {
			logErrln("failed to close log file:", cerr)
		}
	}
	return logger, closer, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal, so the trainer logs to a file.
	logger, closeLog, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer closeLog()
	sel, closeStore, err := openSelection(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	state := sel.Load(context.Background())
	if enabled, _ := state.Count(); enabled == 0 {
		logErrln("no characters selected; press tab in the trainer to choose some")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sched := scheduler.New(state.EnabledCharacters, scheduler.WithRand(rand.New(rand.NewSource(seed))))
	m := tui.NewModel(state, sel, sched, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List character groups and the current selection",
		Args:  cobra.NoArgs,
		RunE:  runGroupsCmd,
	}
}

func runGroupsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sel, closeStore, err := openSelection(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer closeStore()

	state := sel.Load(cmd.Context())
	if err := listing.RenderGroups(cmd.OutOrStdout(), state, listing.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newToggleCmd(use, short string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group|character>...",
		Short: short,
		Long:  "Groups are named by key (a, k, s, ...) or full name (\"K Group\"); characters by glyph.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggleCmd(cmd, args, on)
		},
	}
}

func runToggleCmd(cmd *cobra.Command, args []string, on bool) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sel, closeStore, err := openSelection(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer closeStore()

	state := sel.Load(cmd.Context())
	if err := applySelection(state, args, on); err != nil {
		return err
	}
	if err := sel.Save(cmd.Context(), state); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return reportCount(cmd.OutOrStdout(), state)
}

// applySelection resolves each argument as a group first, then as a glyph.
func applySelection(state *selection.State, args []string, on bool) error {
	var errs []error
	for _, arg := range args {
		if g, ok := kana.FindGroup(arg); ok {
			state.SetGroup(g, on)
			continue
		}
		if err := state.Set(strings.TrimSpace(arg), on); err != nil {
			errs = append(errs, fmt.Errorf("%q is neither a group nor a character: %w", arg, err))
		}
	}
	return errors.Join(errs...)
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Enable every character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			sel, closeStore, err := openSelection(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer closeStore()

			state := selection.NewState()
			if err := sel.Save(cmd.Context(), state); err != nil {
				return fmt.Errorf("failed to save selection: %w", err)
			}
			return reportCount(cmd.OutOrStdout(), state)
		},
	}
}

func reportCount(w io.Writer, state *selection.State) error {
	enabled, total := state.Count()
	if _, err := fmt.Fprintf(w, "%d of %d characters selected\n", enabled, total); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kanadrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# store = %q                # Selection store: "file" or "sqlite"
# selection = %q            # Selection file (file store)
# db = %q                   # Database path (sqlite store)
# seed = 0                  # Shuffle seed, 0 seeds from the clock
`,
		defaultStore,
		config.DefaultSelectionPath(),
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	switch cfg.Store {
	case model.StoreFile:
		if cfg.SelectionPath == "" {
			return fmt.Errorf("--selection must not be empty")
		}
	case model.StoreSQLite:
		if cfg.DBPath == "" {
			return fmt.Errorf("--db must not be empty")
		}
	default:
		return fmt.Errorf("--store must be %q or %q, got %q", model.StoreFile, model.StoreSQLite, cfg.Store)
	}
	return nil
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
