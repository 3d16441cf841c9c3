package acquisition

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// Phase selects which half of the two-phase scrape a worker run performs.
type Phase int

const (
	PhaseBoth Phase = iota
	PhaseLinksOnly
	PhaseDetailsOnly
)

// MonthSelector identifies one calendar month to acquire.
type MonthSelector struct {
	Year  int
	Month int
}

// RunMonth executes Phase 1 (unless details-only) followed by Phase 2
// (unless links-only) for one month, updating MonthProgress throughout so a
// subsequent run — whether resumed after a crash or re-invoked to verify —
// picks up exactly where this one left off.
func RunMonth(ctx context.Context, logger *log.Logger, search SearchDriver, detail DetailDriver, extract FieldExtractor,
	store *localstore.Store, limiter *rate.Limiter, ym MonthSelector, phase Phase) (record.MonthProgress, error) {

	progress, _, err := store.MonthProgress(ctx, ym.Year, ym.Month)
	if err != nil {
		return progress, err
	}
	progress.Year, progress.Month = ym.Year, ym.Month

	if phase != PhaseDetailsOnly && progress.LinksVerified {
		logger.Info("phase 1 already verified, skipping", "year", ym.Year, "month", ym.Month, "collected", progress.CollectedLinks)
	} else if phase != PhaseDetailsOnly {
		inserted, expected, err := CollectRange(ctx, logger, search, store, limiter, ym.Year, ym.Month)
		if err != nil {
			progress.LastError = err.Error()
			_ = store.UpsertMonthProgress(ctx, &progress)
			return progress, err
		}
		if expected > progress.ExpectedLinks {
			progress.ExpectedLinks = expected
		}

		canonical, err := VerifyMonthLinks(ctx, search, limiter, ym.Year, ym.Month)
		if err != nil {
			progress.LastError = err.Error()
			_ = store.UpsertMonthProgress(ctx, &progress)
			return progress, err
		}
		if canonical > progress.ExpectedLinks {
			progress.ExpectedLinks = canonical
		}

		collected, err := store.CountLinks(ctx, ym.Year, ym.Month)
		if err != nil {
			return progress, err
		}
		progress.CollectedLinks = collected
		progress.LinksVerified = progress.LinksComplete()
		if progress.LinksVerified {
			progress.LastError = ""
		} else {
			progress.LastError = fmt.Sprintf("link verification shortfall: collected %d of %d", collected, progress.ExpectedLinks)
		}
		logger.Info("phase 1 complete", "year", ym.Year, "month", ym.Month, "inserted", inserted, "collected", collected, "expected", progress.ExpectedLinks, "verified", progress.LinksVerified)
		if err := store.UpsertMonthProgress(ctx, &progress); err != nil {
			return progress, err
		}
	}

	if phase != PhaseLinksOnly {
		scraped, err := ScrapeDetails(ctx, logger, detail, extract, store, limiter, ym.Year, ym.Month)
		if err != nil {
			progress.LastError = err.Error()
			_ = store.UpsertMonthProgress(ctx, &progress)
			return progress, err
		}
		total, err := store.CountRecords(ctx, ym.Year, ym.Month)
		if err != nil {
			return progress, err
		}
		progress.ScrapedDetails = total
		progress.DetailsVerified = progress.DetailsComplete()
		logger.Info("phase 2 complete", "year", ym.Year, "month", ym.Month, "scraped_this_run", scraped, "total", total, "verified", progress.DetailsVerified)
		if err := store.UpsertMonthProgress(ctx, &progress); err != nil {
			return progress, err
		}
	}

	return progress, nil
}

// Selector describes one of the mutually exclusive ways an operator can
// name the work for a worker invocation.
type Selector struct {
	Months []MonthSelector // --months, --year (expanded to 12 entries), --range (expanded)
	Date   *time.Time      // --date
	Dates  *DateSpan       // --dates
}

// DateSpan is an inclusive day range, used by --dates.
type DateSpan struct {
	From, To time.Time
}

// Run executes a full worker invocation across every unit named by sel. Day
// selectors (Date/Dates) bypass RunMonth's month-level bookkeeping for
// Phase 1 and call CollectDateRange directly; Phase 2 still operates
// per-month since the local store's unscraped-link query is month-scoped.
func Run(ctx context.Context, logger *log.Logger, search SearchDriver, detail DetailDriver, extract FieldExtractor,
	store *localstore.Store, limiter *rate.Limiter, sel Selector, phase Phase) ([]record.MonthProgress, error) {

	var results []record.MonthProgress

	if sel.Date != nil {
		return runDateSpan(ctx, logger, search, detail, extract, store, limiter, *sel.Date, *sel.Date, phase)
	}
	if sel.Dates != nil {
		return runDateSpan(ctx, logger, search, detail, extract, store, limiter, sel.Dates.From, sel.Dates.To, phase)
	}

	for _, ym := range sel.Months {
		progress, err := RunMonth(ctx, logger, search, detail, extract, store, limiter, ym, phase)
		if err != nil {
			return results, err
		}
		results = append(results, progress)
	}
	return results, nil
}

func runDateSpan(ctx context.Context, logger *log.Logger, search SearchDriver, detail DetailDriver, extract FieldExtractor,
	store *localstore.Store, limiter *rate.Limiter, from, to time.Time, phase Phase) ([]record.MonthProgress, error) {

	touched := map[MonthSelector]bool{}

	if phase != PhaseDetailsOnly {
		if _, _, err := CollectDateRange(ctx, logger, search, store, limiter, from, to); err != nil {
			return nil, err
		}
	}

	cursor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		touched[MonthSelector{Year: cursor.Year(), Month: int(cursor.Month())}] = true
		cursor = cursor.AddDate(0, 0, 1)
	}

	var results []record.MonthProgress
	for ym := range touched {
		if phase == PhaseLinksOnly {
			collected, err := store.CountLinks(ctx, ym.Year, ym.Month)
			if err != nil {
				return results, err
			}
			progress, _, err := store.MonthProgress(ctx, ym.Year, ym.Month)
			if err != nil {
				return results, err
			}
			progress.Year, progress.Month, progress.CollectedLinks = ym.Year, ym.Month, collected
			results = append(results, progress)
			continue
		}
		scraped, err := ScrapeDetails(ctx, logger, detail, extract, store, limiter, ym.Year, ym.Month)
		if err != nil {
			return results, err
		}
		total, err := store.CountRecords(ctx, ym.Year, ym.Month)
		if err != nil {
			return results, err
		}
		progress, _, err := store.MonthProgress(ctx, ym.Year, ym.Month)
		if err != nil {
			return results, err
		}
		progress.Year, progress.Month = ym.Year, ym.Month
		progress.ScrapedDetails = total
		progress.DetailsVerified = progress.DetailsComplete()
		logger.Info("date-range phase 2 complete", "year", ym.Year, "month", ym.Month, "scraped_this_run", scraped, "total", total)
		if err := store.UpsertMonthProgress(ctx, &progress); err != nil {
			return results, err
		}
		results = append(results, progress)
	}
	return results, nil
}
