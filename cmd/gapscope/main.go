// Package main provides the CLI entrypoint for gapscope.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gapscope/internal/aggregate"
	"gapscope/internal/api"
	"gapscope/internal/config"
	"gapscope/internal/dashui"
	"gapscope/internal/model"
	"gapscope/internal/sample"
	"gapscope/internal/session"
	"gapscope/internal/store"
	"gapscope/internal/tui"
	"gapscope/internal/wizard"
)

const (
	defaultServerURL  = "http://localhost:8000"
	defaultLimit      = 10
	defaultThreshold  = 0.7
	defaultSampleRows = 200
	defaultSamplePct  = 0.15
)

var (
	exploreServer  string
	exploreLimit   int
	explorePearson float64
	exploreCramerV float64
	exploreEta     float64
	exploreFresh   bool

	historyLast int

	sampleRows    int
	sampleMissing float64
	sampleOut     string
	sampleSeed    int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gapscope <dataset.csv|xlsx>",
		Short:         "TUI missing-data explorer",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runExploreCmd,
	}

	rootCmd.Flags().StringVar(&exploreServer, "server", defaultServerURL, "analysis service base URL")
	rootCmd.Flags().IntVar(&exploreLimit, "limit", defaultLimit, "features per dashboard page")
	rootCmd.Flags().Float64Var(&explorePearson, "pearson-threshold", defaultThreshold, "Pearson |r| cutoff (0-1)")
	rootCmd.Flags().Float64Var(&exploreCramerV, "cramer-v-threshold", defaultThreshold, "Cramer's V cutoff (0-1)")
	rootCmd.Flags().Float64Var(&exploreEta, "eta-threshold", defaultThreshold, "eta squared cutoff (0-1)")
	rootCmd.Flags().BoolVar(&exploreFresh, "fresh", false, "ignore remembered answers for this file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSampleCmd())

	return rootCmd
}

func runExploreCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &exploreServer, fileCfg.Server.URL)
	applyIntConfig(cmd, "limit", &exploreLimit, fileCfg.Dashboard.Limit)
	applyFloatConfig(cmd, "pearson-threshold", &explorePearson, fileCfg.Dashboard.PearsonThreshold)
	applyFloatConfig(cmd, "cramer-v-threshold", &exploreCramerV, fileCfg.Dashboard.CramerVThreshold)
	applyFloatConfig(cmd, "eta-threshold", &exploreEta, fileCfg.Dashboard.EtaThreshold)

	thresholds := model.Thresholds{
		Pearson: explorePearson,
		CramerV: exploreCramerV,
		Eta:     exploreEta,
	}
	if err := validateSettings(exploreServer, exploreLimit, thresholds); err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	client := api.New(exploreServer, api.DefaultTimeouts())

	machine := wizard.NewMachine(client)
	if !exploreFresh {
		prefillMachine(machine, st, path)
	}

	wizModel := tui.NewModel(machine, client, st, path)
	program := tea.NewProgram(wizModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run wizard: %w", err)
	}
	if !wizModel.Completed() {
		return nil
	}

	bus := session.NewBus()
	changes, release := bus.Subscribe()
	defer release()

	agg := aggregate.New(client, bus, exploreLimit)
	if thresholds != model.DefaultThresholds() {
		agg.SetThresholds(context.Background(), thresholds)
	}

	dashModel := dashui.NewModel(agg, client, changes)
	dashboard := tea.NewProgram(dashModel, tea.WithAltScreen())
	if _, err := dashboard.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// prefillMachine seeds the wizard with the answers from the last run
// against the same file.
func prefillMachine(machine *wizard.Machine, st *store.Store, path string) {
	cfg, found, err := st.LastConfigForPath(context.Background(), path)
	if err != nil {
		logErrf("failed to load remembered answers: %v\n", err)
		return
	}
	if !found {
		return
	}
	if cfg.HeaderRow != model.HeaderUnset {
		machine.SetHeaderRow(cfg.HeaderRow)
	}
	if cfg.Indicators != (model.MissingIndicators{}) {
		machine.SetIndicators(cfg.Indicators)
	}
	if cfg.TargetFeature != "" && cfg.TargetType != "" {
		machine.SetTarget(cfg.TargetFeature, cfg.TargetType)
	}
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

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List explored datasets",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 20, "limit to last N uploads")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	uploads, err := st.ListUploads(context.Background(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}
	if len(uploads) == 0 {
		logErrln("No uploads recorded yet.")
		return nil
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	for _, upload := range uploads {
		target := "-"
		if upload.Config.TargetFeature != "" {
			target = fmt.Sprintf("%s (%s)", upload.Config.TargetFeature, upload.Config.TargetType)
		}
		line := fmt.Sprintf("%s  %-24s target=%s  %s",
			upload.UploadedAt.Format("2006-01-02 15:04"),
			upload.Filename,
			target,
			upload.Path,
		)
		if len([]rune(line)) > width {
			line = string([]rune(line)[:width])
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a sample dataset with mixed missing values",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}
	cmd.Flags().IntVar(&sampleRows, "rows", defaultSampleRows, "number of data rows")
	cmd.Flags().Float64Var(&sampleMissing, "missing", defaultSamplePct, "missing value probability per cell (0-1)")
	cmd.Flags().StringVar(&sampleOut, "out", "sample_data.csv", "output CSV path")
	cmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (0 for random)")
	return cmd
}

func runSampleCmd(_ *cobra.Command, _ []string) error {
	if sampleRows <= 0 {
		return fmt.Errorf("--rows must be greater than 0")
	}
	if sampleMissing < 0 || sampleMissing > 1 {
		return fmt.Errorf("--missing must be between 0 and 1")
	}
	gen := sample.New()
	if sampleSeed != 0 {
		gen = sample.NewSeeded(sampleSeed)
	}
	rows := gen.Dataset(sampleRows, sampleMissing)
	if err := sample.WriteCSV(sampleOut, rows); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	logErrf("Wrote %s (%d rows)\n", sampleOut, sampleRows)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# gapscope configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# url = %q    # Analysis service base URL

[dashboard]
# limit = %d                  # Features per page
# pearson-threshold = %.1f    # Pearson |r| cutoff (0-1)
# cramer-v-threshold = %.1f   # Cramer's V cutoff (0-1)
# eta-threshold = %.1f        # Eta squared cutoff (0-1)
`,
		defaultServerURL,
		defaultLimit,
		defaultThreshold,
		defaultThreshold,
		defaultThreshold,
	)
}

func validateSettings(server string, limit int, t model.Thresholds) error {
	if strings.TrimSpace(server) == "" {
		return fmt.Errorf("--server must not be empty")
	}
	if limit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	for _, v := range []float64{t.Pearson, t.CramerV, t.Eta} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds must be between 0 and 1")
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
