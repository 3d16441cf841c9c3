// Package acquisition drives the two-phase resumable scrape: Phase 1
// collects (ttb_id, detail_url) links for a date range via adaptive
// bisection around the registry's 1000-row result cap, and Phase 2 fetches
// and parses the detail page behind each collected link.
package acquisition

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// registryRowCap is the maximum number of rows the registry's search form
// will return for a single query; at or above this count the result set is
// truncated and must be split into narrower queries instead.
const registryRowCap = 1000

// maxPagesPerQuery aborts link collection for a single (date range, class
// code range) query if pagination runs past this many pages, which would
// indicate the result count exceeded registryRowCap without the caller
// recognizing it.
const maxPagesPerQuery = 100

// classCodeSplits divides the full class/type code space into five bands
// for the final split once a single calendar day still exceeds the
// registry's row cap.
var classCodeSplits = [][2]string{
	{"000", "299"},
	{"300", "499"},
	{"500", "699"},
	{"700", "899"},
	{"900", "999"},
}

// SearchDriver is the browser capability Phase 1 needs: submit a query and
// read total/first-page results, then page forward until exhausted.
type SearchDriver interface {
	SubmitSearch(ctx context.Context, dateFrom, dateTo, classCodeFrom, classCodeTo string) (SearchResult, error)
	NextPage(ctx context.Context) (SearchResult, error)
}

// SearchResult mirrors browser.SearchResult without importing the browser
// package, so acquisition stays testable with a scripted fake driver.
type SearchResult struct {
	TotalRecords int
	Links        []record.Link
	EndOfResults bool
}

// dateRange is a closed interval of calendar days, inclusive on both ends.
type dateRange struct {
	from, to time.Time
}

func (r dateRange) days() int {
	return int(r.to.Sub(r.from).Hours()/24) + 1
}

func (r dateRange) format() (string, string) {
	return r.from.Format("01/02/2006"), r.to.Format("01/02/2006")
}

// split halves the range at its midpoint day. The left half always gets the
// midpoint itself, so both halves are strictly smaller than the parent for
// any range of two or more days and the bisection terminates.
func (r dateRange) split() (dateRange, dateRange) {
	mid := r.from.AddDate(0, 0, (r.days()-1)/2)
	return dateRange{r.from, mid}, dateRange{mid.AddDate(0, 0, 1), r.to}
}

// CollectRange runs Phase 1 for one calendar month, recursively bisecting
// the date range (and, as a last resort, the class/type code range) around
// any query that reports at least registryRowCap total matches. Links are
// inserted into the local store as each leaf query is exhausted, so a
// cancelled run resumes from whatever was already inserted.
func CollectRange(ctx context.Context, logger *log.Logger, driver SearchDriver, store *localstore.Store, limiter *rate.Limiter, year, month int) (inserted, expected int, err error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return collectMonthBounded(ctx, logger, driver, store, limiter, year, month, dateRange{from, to})
}

// CollectDateRange runs Phase 1 for an arbitrary day range, used by the
// --date/--dates worker selectors. It clips the range to each calendar
// month it touches before bisecting, so every inserted link is tagged with
// an unambiguous (year, month) and MonthProgress stays keyed by month even
// when the operator asks for an odd number of days.
func CollectDateRange(ctx context.Context, logger *log.Logger, driver SearchDriver, store *localstore.Store, limiter *rate.Limiter, from, to time.Time) (inserted, expected int, err error) {
	cursor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	for !cursor.After(to) {
		monthEnd := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
		chunkEnd := monthEnd
		if to.Before(chunkEnd) {
			chunkEnd = to
		}

		n, e, err := collectMonthBounded(ctx, logger, driver, store, limiter, cursor.Year(), int(cursor.Month()), dateRange{cursor, chunkEnd})
		if err != nil {
			return inserted, expected, err
		}
		inserted += n
		expected += e

		cursor = chunkEnd.AddDate(0, 0, 1)
	}
	return inserted, expected, nil
}

func collectMonthBounded(ctx context.Context, logger *log.Logger, driver SearchDriver, store *localstore.Store, limiter *rate.Limiter, year, month int, dr dateRange) (inserted, expected int, err error) {
	maxDepth := int(math.Ceil(math.Log2(float64(dr.days())))) + 5
	err = collectBisect(ctx, logger, driver, store, limiter, year, month, dr, "", "", 0, maxDepth, &inserted, &expected)
	return inserted, expected, err
}

// collectBisect accumulates two running totals as it walks the recursion:
// inserted counts new rows actually written to the local store (post
// dedup), while expected sums the registry-declared total of every leaf
// query. Because each level of the recursion partitions its parent's date
// or class-code range into disjoint children, the sum of leaf totals equals
// the registry's true count for the range this call started with.
func collectBisect(ctx context.Context, logger *log.Logger, driver SearchDriver, store *localstore.Store, limiter *rate.Limiter,
	year, month int, dr dateRange, classFrom, classTo string, depth, maxDepth int, inserted, expected *int) error {

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	dateFrom, dateTo := dr.format()
	result, err := driver.SubmitSearch(ctx, dateFrom, dateTo, classFrom, classTo)
	if err != nil {
		return err
	}

	switch {
	case result.TotalRecords == 0:
		return nil

	case result.TotalRecords < registryRowCap:
		*expected += result.TotalRecords
		n, err := paginateAndInsert(ctx, driver, store, year, month, result)
		if err != nil {
			return err
		}
		*inserted += n
		return nil

	case dr.days() > 1 && depth < maxDepth:
		left, right := dr.split()
		if err := collectBisect(ctx, logger, driver, store, limiter, year, month, left, classFrom, classTo, depth+1, maxDepth, inserted, expected); err != nil {
			return err
		}
		return collectBisect(ctx, logger, driver, store, limiter, year, month, right, classFrom, classTo, depth+1, maxDepth, inserted, expected)

	case classFrom == "" && classTo == "":
		var firstErr error
		for _, band := range classCodeSplits {
			if err := collectBisect(ctx, logger, driver, store, limiter, year, month, dr, band[0], band[1], depth+1, maxDepth, inserted, expected); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr

	default:
		logger.Warn("single day and class band still exceeds registry cap, collecting only the capped result set",
			"year", year, "month", month, "date_from", dateFrom, "class_from", classFrom, "class_to", classTo,
			"reported_total", result.TotalRecords)
		*expected += result.TotalRecords
		n, err := paginateAndInsert(ctx, driver, store, year, month, result)
		if err != nil {
			return err
		}
		*inserted += n
		return nil
	}
}

// VerifyMonthLinks independently re-queries the whole month, unfiltered, and
// returns the registry's canonical total for it. CollectRange's sum of leaf
// totals can drift when a leaf overflowed the row cap or the registry's
// counts shifted mid-run, so month verification always goes back to one
// authoritative query.
func VerifyMonthLinks(ctx context.Context, driver SearchDriver, limiter *rate.Limiter, year, month int) (int, error) {
	if err := limiter.Wait(ctx); err != nil {
		return 0, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	dr := dateRange{from, from.AddDate(0, 1, -1)}
	dateFrom, dateTo := dr.format()
	result, err := driver.SubmitSearch(ctx, dateFrom, dateTo, "", "")
	if err != nil {
		return 0, err
	}
	return result.TotalRecords, nil
}

func paginateAndInsert(ctx context.Context, driver SearchDriver, store *localstore.Store, year, month int, first SearchResult) (int, error) {
	inserted := 0
	page := first
	for pageNum := 0; pageNum < maxPagesPerQuery; pageNum++ {
		if len(page.Links) > 0 {
			for i := range page.Links {
				page.Links[i].Year = year
				page.Links[i].Month = month
			}
			n, err := store.InsertLinks(ctx, page.Links)
			if err != nil {
				return inserted, err
			}
			inserted += n
		}
		if page.EndOfResults {
			return inserted, nil
		}
		next, err := driver.NextPage(ctx)
		if err != nil {
			return inserted, err
		}
		if len(next.Links) == 0 {
			return inserted, nil
		}
		page = next
	}
	return inserted, fmt.Errorf("acquisition: exceeded %d pages for a single query without reaching end of results", maxPagesPerQuery)
}
