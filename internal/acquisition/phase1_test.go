package acquisition

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// scriptedDriver answers SubmitSearch based on the (dateFrom, dateTo,
// classFrom, classTo) query it receives, looked up from a fixed table built
// by the test; it is blind to anything the production driver does.
type scriptedDriver struct {
	totals      map[string]int
	linksPerKey map[string][]record.Link
	pageCalls   int
}

func key(dateFrom, dateTo, classFrom, classTo string) string {
	return dateFrom + "|" + dateTo + "|" + classFrom + "|" + classTo
}

func (d *scriptedDriver) SubmitSearch(ctx context.Context, dateFrom, dateTo, classFrom, classTo string) (SearchResult, error) {
	k := key(dateFrom, dateTo, classFrom, classTo)
	total, ok := d.totals[k]
	if !ok {
		return SearchResult{}, fmt.Errorf("no script entry for %s", k)
	}
	return SearchResult{TotalRecords: total, Links: d.linksPerKey[k], EndOfResults: true}, nil
}

func (d *scriptedDriver) NextPage(ctx context.Context) (SearchResult, error) {
	d.pageCalls++
	return SearchResult{EndOfResults: true}, nil
}

func openAcqTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := localstore.Open(filepath.Join(dir, "worker.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCollectRangeBelowCapNoBisection(t *testing.T) {
	store := openAcqTestStore(t)
	driver := &scriptedDriver{
		totals: map[string]int{
			key("02/01/2021", "02/28/2021", "", ""): 3,
		},
		linksPerKey: map[string][]record.Link{
			key("02/01/2021", "02/28/2021", "", ""): {{TTBID: "1"}, {TTBID: "2"}, {TTBID: "3"}},
		},
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	inserted, expected, err := CollectRange(context.Background(), log.New("acq-test"), driver, store, limiter, 2021, 2)
	if err != nil {
		t.Fatalf("CollectRange: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("got %d inserted, want 3", inserted)
	}
	if expected != 3 {
		t.Fatalf("got %d expected, want 3", expected)
	}
	count, err := store.CountLinks(context.Background(), 2021, 2)
	if err != nil {
		t.Fatalf("CountLinks: %v", err)
	}
	if count != 3 {
		t.Fatalf("got %d persisted links, want 3", count)
	}
}

func TestCollectRangeZeroRecordsShortCircuits(t *testing.T) {
	store := openAcqTestStore(t)
	driver := &scriptedDriver{
		totals: map[string]int{
			key("02/01/2021", "02/28/2021", "", ""): 0,
		},
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	inserted, expected, err := CollectRange(context.Background(), log.New("acq-test"), driver, store, limiter, 2021, 2)
	if err != nil {
		t.Fatalf("CollectRange: %v", err)
	}
	if inserted != 0 || expected != 0 {
		t.Fatalf("got inserted=%d expected=%d, want 0,0", inserted, expected)
	}
}

func TestCollectRangeBisectsWhenAtCap(t *testing.T) {
	store := openAcqTestStore(t)
	// A two-day month: the full range reports >= cap, forcing a split into
	// two single-day queries that each report small counts.
	from := key("03/01/2021", "03/02/2021", "", "")
	day1 := key("03/01/2021", "03/01/2021", "", "")
	day2 := key("03/02/2021", "03/02/2021", "", "")

	driver := &scriptedDriver{
		totals: map[string]int{
			from: 1000,
			day1: 2,
			day2: 2,
		},
		linksPerKey: map[string][]record.Link{
			day1: {{TTBID: "d1a"}, {TTBID: "d1b"}},
			day2: {{TTBID: "d2a"}, {TTBID: "d2b"}},
		},
	}

	// Build a fake month with only these two days by calling collectBisect
	// directly through CollectRange would span a full month; instead drive
	// collectBisect with an explicit two-day range.
	limiter := rate.NewLimiter(rate.Inf, 1)
	var inserted, expected int
	dr := dateRangeFromStrings(t, "2021-03-01", "2021-03-02")
	err := collectBisect(context.Background(), log.New("acq-test"), driver, store, limiter, 2021, 3, dr, "", "", 0, 10, &inserted, &expected)
	if err != nil {
		t.Fatalf("collectBisect: %v", err)
	}
	if inserted != 4 {
		t.Fatalf("got %d inserted, want 4", inserted)
	}
	if expected != 4 {
		t.Fatalf("got %d expected, want 4", expected)
	}
}

func TestCollectDateRangeSplitsAcrossMonths(t *testing.T) {
	store := openAcqTestStore(t)
	driver := &scriptedDriver{
		totals: map[string]int{
			key("01/30/2021", "01/31/2021", "", ""): 1,
			key("02/01/2021", "02/01/2021", "", ""): 2,
		},
		linksPerKey: map[string][]record.Link{
			key("01/30/2021", "01/31/2021", "", ""): {{TTBID: "jan"}},
			key("02/01/2021", "02/01/2021", "", ""):  {{TTBID: "feb1"}, {TTBID: "feb2"}},
		},
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	from, _ := time.Parse("2006-01-02", "2021-01-30")
	to, _ := time.Parse("2006-01-02", "2021-02-01")

	inserted, expected, err := CollectDateRange(context.Background(), log.New("acq-test"), driver, store, limiter, from, to)
	if err != nil {
		t.Fatalf("CollectDateRange: %v", err)
	}
	if inserted != 3 || expected != 3 {
		t.Fatalf("got inserted=%d expected=%d, want 3,3", inserted, expected)
	}

	janCount, err := store.CountLinks(context.Background(), 2021, 1)
	if err != nil {
		t.Fatalf("CountLinks jan: %v", err)
	}
	febCount, err := store.CountLinks(context.Background(), 2021, 2)
	if err != nil {
		t.Fatalf("CountLinks feb: %v", err)
	}
	if janCount != 1 || febCount != 2 {
		t.Fatalf("got jan=%d feb=%d, want 1,2", janCount, febCount)
	}
}

func dateRangeFromStrings(t *testing.T, from, to string) dateRange {
	t.Helper()
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		t.Fatalf("parse %s: %v", from, err)
	}
	tt, err := time.Parse("2006-01-02", to)
	if err != nil {
		t.Fatalf("parse %s: %v", to, err)
	}
	return dateRange{f, tt}
}
