// Package main provides the CLI entrypoint for noisetui.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/noisetui/internal/config"
	"github.com/verte-zerg/noisetui/internal/ingest"
	"github.com/verte-zerg/noisetui/internal/model"
	"github.com/verte-zerg/noisetui/internal/render"
	"github.com/verte-zerg/noisetui/internal/store"
	"github.com/verte-zerg/noisetui/internal/tui"
	"github.com/verte-zerg/noisetui/internal/view"
)

const (
	defaultPeriod      = 15
	defaultUnit        = "min"
	defaultHistoryLast = 20
	reportWidth        = 100
	reportPlotHeight   = 10
)

var (
	dashPeriod  int
	dashUnit    string
	dashHistory bool

	historyLast int

	reportPeriod int
	reportUnit   string
	reportApply  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "noisetui [log.csv ...]",
		Short:         "TUI noise survey explorer",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.Flags().IntVar(&dashPeriod, "period", defaultPeriod, "integration period value")
	rootCmd.Flags().StringVar(&dashUnit, "unit", defaultUnit, "integration period unit (s/min/h)")
	rootCmd.Flags().BoolVar(&dashHistory, "history", true, "record loaded surveys in the history database")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd, dashPeriod, dashUnit)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("no survey logs provided (usage: noisetui <log.csv> ...)")
	}

	files, err := readUploads(args)
	if err != nil {
		return err
	}
	res := ingest.LoadAll(files)
	if opts.History {
		recordHistory(args, res)
	}

	dashboard := tui.NewModel(res, opts)
	program := tea.NewProgram(dashboard, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadOptions(cmd *cobra.Command, period int, unit string) (model.Options, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Options{}, fmt.Errorf("failed to load config: %w", err)
	}
	history := dashHistory
	applyIntConfig(cmd, "period", &period, fileCfg.Dashboard.Period)
	applyStringConfig(cmd, "unit", &unit, fileCfg.Dashboard.Unit)
	applyBoolConfig(cmd, "history", &history, fileCfg.Dashboard.History)

	if period <= 0 {
		return model.Options{}, fmt.Errorf("--period must be > 0")
	}
	shortUnit, err := model.NormalizeUnit(unit)
	if err != nil {
		return model.Options{}, err
	}
	return model.Options{Period: period, Unit: shortUnit, History: history}, nil
}

// readUploads loads each log into memory under its base name, matching
// the display names the tabs will carry.
func readUploads(paths []string) ([]ingest.UploadedFile, error) {
	files := make([]ingest.UploadedFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, ingest.UploadedFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

// recordHistory writes one row per parsed log, best-effort: a history
// failure never blocks the dashboard.
func recordHistory(paths []string, res ingest.Result) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	pathByName := make(map[string]string, len(paths))
	for _, path := range paths {
		pathByName[filepath.Base(path)] = path
	}
	now := time.Now()
	records := make([]model.SurveyRecord, 0, len(res.Order))
	for _, name := range res.Order {
		log := res.Logs[name]
		if len(log.Times) == 0 {
			continue
		}
		leq, l90, lmax := log.OverallStats()
		records = append(records, model.SurveyRecord{
			LoadedAt:    now,
			FileName:    pathByName[name],
			Position:    name,
			FirstSample: log.Times[0],
			LastSample:  log.Times[len(log.Times)-1],
			Samples:     len(log.Times),
			Leq:         leq,
			L90:         l90,
			Lmax:        lmax,
		})
	}
	if err := st.InsertRecords(context.Background(), records); err != nil {
		logErrf("failed to record history: %v\n", err)
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
		Short: "List recently loaded surveys",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of entries to show")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	records, err := st.ListRecent(context.Background(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No surveys loaded yet.")
		return err
	}

	headers := []string{"Loaded", "Position", "First Sample", "Last Sample", "Samples", "Leq", "L90", "Lmax"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.LoadedAt.Format("2006-01-02 15:04"),
			r.Position,
			r.FirstSample.Format("2006-01-02 15:04"),
			r.LastSample.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Samples),
			render.FormatCell(r.Leq),
			render.FormatCell(r.L90),
			render.FormatCell(r.Lmax),
		})
	}
	rightAlign := map[int]bool{4: true, 5: true, 6: true, 7: true}
	for _, line := range render.FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [log.csv ...]",
		Short: "Print the survey summary and per-position charts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportPeriod, "period", defaultPeriod, "integration period value")
	cmd.Flags().StringVar(&reportUnit, "unit", defaultUnit, "integration period unit (s/min/h)")
	cmd.Flags().BoolVar(&reportApply, "apply", false, "report integrated data instead of raw")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd, reportPeriod, reportUnit)
	if err != nil {
		return err
	}

	files, err := readUploads(args)
	if err != nil {
		return err
	}
	res := ingest.LoadAll(files)
	out := cmd.OutOrStdout()
	for _, msg := range res.Errors {
		logErrf("%s\n", msg)
	}

	sum := ingest.BuildSummary(res)
	if err := view.RenderSummary(out, sum, reportWidth, reportPlotHeight, false); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	state := model.ViewState{
		ApplyAggregation: reportApply,
		LastPeriod:       model.PeriodString(opts.Period, opts.Unit),
	}
	for _, name := range res.Order {
		if _, err := fmt.Fprintf(out, "== %s ==\n", name); err != nil {
			return err
		}
		v := view.Build(res.Logs[name], state)
		if err := view.RenderCharts(out, v, reportWidth, reportPlotHeight, false); err != nil {
			return fmt.Errorf("failed to render %s: %w", name, err)
		}
		if err := render.Table(out, "", v.Table); err != nil {
			return fmt.Errorf("failed to render %s table: %w", name, err)
		}
	}
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# noisetui configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# period = %d            # Integration period value
# unit = %q            # Integration period unit (s, min, h)
# history = true         # Record loaded surveys in the history database
`,
		defaultPeriod,
		defaultUnit,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
