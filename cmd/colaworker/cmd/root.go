// Package cmd implements the colaworker CLI: the acquisition worker that
// drives Phase 1 link collection and Phase 2 detail scraping against one
// worker-local SQLite store.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/acquisition"
	"github.com/bevalc-intelligence/cola-engine/internal/acquisition/report"
	"github.com/bevalc-intelligence/cola-engine/internal/browser"
	"github.com/bevalc-intelligence/cola-engine/internal/browser/captchaconsole"
	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
)

var (
	dataDir        string
	configPath     string
	months         []string
	dateRangeArgs  []string
	yearArg        int
	dateArg        string
	datesArgs      []string
	linksOnly      bool
	detailsOnly    bool
	headless       bool
	statusOnly     bool
	consolePort    int
	requestsPerSec float64
)

var rootCmd = &cobra.Command{
	Use:   "colaworker WORKER_NAME",
	Short: "Acquisition worker for the COLA public registry",
	Long: `colaworker drives one worker-local SQLite store through Phase 1
(link collection) and Phase 2 (detail scraping) for a set of calendar
months or dates, resuming cleanly across interrupted runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorker,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory holding worker-local SQLite stores")
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional TOML/YAML settings file")

	rootCmd.Flags().StringSliceVar(&months, "months", nil, "one or more YYYY-MM months to acquire")
	rootCmd.Flags().StringSliceVar(&dateRangeArgs, "range", nil, "START END, both YYYY-MM, inclusive")
	rootCmd.Flags().IntVar(&yearArg, "year", 0, "acquire all twelve months of YYYY")
	rootCmd.Flags().StringVar(&dateArg, "date", "", "acquire a single YYYY-MM-DD day")
	rootCmd.Flags().StringSliceVar(&datesArgs, "dates", nil, "START END, both YYYY-MM-DD, inclusive")

	rootCmd.Flags().BoolVar(&linksOnly, "links-only", false, "run Phase 1 only")
	rootCmd.Flags().BoolVar(&detailsOnly, "details-only", false, "run Phase 2 only")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a visible window")
	rootCmd.Flags().BoolVar(&statusOnly, "status", false, "print per-month progress and exit, without scraping")
	rootCmd.Flags().IntVar(&consolePort, "captcha-console-port", 8787, "port the CAPTCHA console's websocket viewer endpoint listens on (prompts are sent only when stdin is a terminal)")
	rootCmd.Flags().Float64Var(&requestsPerSec, "requests-per-second", 1.0, "registry request rate limit")
}

func runWorker(cmd *cobra.Command, args []string) error {
	workerName := args[0]
	logger := log.New("colaworker." + workerName)

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	_ = settings // reserved for future per-worker overrides (e.g. rate limit, data dir)

	storePath := filepath.Join(dataDir, workerName+".db")
	store, err := localstore.Open(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if statusOnly {
		progressRows, err := store.AllMonthProgress(context.Background())
		if err != nil {
			return err
		}
		report.Render(os.Stdout, progressRows)
		return nil
	}

	sel, phase, err := resolveSelection()
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSec), 1)

	ctx := context.Background()
	console := captchaconsole.New(logger, bufio.NewReader(os.Stdin))
	go func() {
		addr := fmt.Sprintf(":%d", consolePort)
		if err := http.ListenAndServe(addr, console.Handler()); err != nil {
			logger.Warn("captcha console server stopped", "error", err.Error())
		}
	}()

	// Without a terminal there is nobody to answer a stdin prompt; a nil
	// prompter makes the driver poll the page for CAPTCHA clearance instead.
	var prompter browser.Prompter
	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompter = console
	}

	driver, err := browser.New(ctx, browser.Config{Headless: headless}, logger, prompter)
	if err != nil {
		return err
	}
	defer driver.Close()

	adapter := &acquisition.BrowserAdapter{Driver: driver}
	extract := browser.ExtractDetailFields

	results, err := acquisition.Run(ctx, logger, adapter, driver, extract, store, limiter, sel, phase)
	if err != nil {
		return err
	}

	report.Render(os.Stdout, results)
	return nil
}

// resolveSelection validates that exactly one selector flag group was used
// and translates it into an acquisition.Selector plus the requested phase.
func resolveSelection() (acquisition.Selector, acquisition.Phase, error) {
	if linksOnly && detailsOnly {
		return acquisition.Selector{}, 0, fmt.Errorf("--links-only and --details-only are mutually exclusive")
	}
	phase := acquisition.PhaseBoth
	if linksOnly {
		phase = acquisition.PhaseLinksOnly
	}
	if detailsOnly {
		phase = acquisition.PhaseDetailsOnly
	}

	groups := 0
	if len(months) > 0 {
		groups++
	}
	if len(dateRangeArgs) > 0 {
		groups++
	}
	if yearArg != 0 {
		groups++
	}
	if dateArg != "" {
		groups++
	}
	if len(datesArgs) > 0 {
		groups++
	}
	if groups != 1 {
		return acquisition.Selector{}, phase, fmt.Errorf("exactly one of --months, --range, --year, --date, --dates is required")
	}

	switch {
	case len(months) > 0:
		selected, err := parseMonths(months)
		return acquisition.Selector{Months: selected}, phase, err

	case len(dateRangeArgs) > 0:
		if len(dateRangeArgs) != 2 {
			return acquisition.Selector{}, phase, fmt.Errorf("--range requires exactly two YYYY-MM values")
		}
		selected, err := expandMonthRange(dateRangeArgs[0], dateRangeArgs[1])
		return acquisition.Selector{Months: selected}, phase, err

	case yearArg != 0:
		var selected []acquisition.MonthSelector
		for m := 1; m <= 12; m++ {
			selected = append(selected, acquisition.MonthSelector{Year: yearArg, Month: m})
		}
		return acquisition.Selector{Months: selected}, phase, nil

	case dateArg != "":
		d, err := time.Parse("2006-01-02", dateArg)
		if err != nil {
			return acquisition.Selector{}, phase, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		return acquisition.Selector{Date: &d}, phase, nil

	default: // datesArgs
		if len(datesArgs) != 2 {
			return acquisition.Selector{}, phase, fmt.Errorf("--dates requires exactly two YYYY-MM-DD values")
		}
		from, err := time.Parse("2006-01-02", datesArgs[0])
		if err != nil {
			return acquisition.Selector{}, phase, fmt.Errorf("--dates start must be YYYY-MM-DD: %w", err)
		}
		to, err := time.Parse("2006-01-02", datesArgs[1])
		if err != nil {
			return acquisition.Selector{}, phase, fmt.Errorf("--dates end must be YYYY-MM-DD: %w", err)
		}
		return acquisition.Selector{Dates: &acquisition.DateSpan{From: from, To: to}}, phase, nil
	}
}

func parseMonths(raw []string) ([]acquisition.MonthSelector, error) {
	out := make([]acquisition.MonthSelector, 0, len(raw))
	for _, m := range raw {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			return nil, fmt.Errorf("invalid --months value %q: %w", m, err)
		}
		out = append(out, acquisition.MonthSelector{Year: t.Year(), Month: int(t.Month())})
	}
	return out, nil
}

func expandMonthRange(startStr, endStr string) ([]acquisition.MonthSelector, error) {
	start, err := time.Parse("2006-01", startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --range start %q: %w", startStr, err)
	}
	end, err := time.Parse("2006-01", endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --range end %q: %w", endStr, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--range end %q is before start %q", endStr, startStr)
	}

	var out []acquisition.MonthSelector
	cursor := start
	for !cursor.After(end) {
		out = append(out, acquisition.MonthSelector{Year: cursor.Year(), Month: int(cursor.Month())})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out, nil
}
