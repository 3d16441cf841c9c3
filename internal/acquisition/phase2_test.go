package acquisition

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

type fakeDetailDriver struct {
	html map[string]string
}

func (f *fakeDetailDriver) LoadDetail(ctx context.Context, ttbID string) (string, error) {
	return f.html[ttbID], nil
}

// flakyDetailDriver fails load for the first failUntilAttempt-1 calls to a
// given ttb_id, then succeeds, so tests can exercise the retry budget.
type flakyDetailDriver struct {
	html            map[string]string
	failUntilAttempt int
	attempts        map[string]int
}

func (f *flakyDetailDriver) LoadDetail(ctx context.Context, ttbID string) (string, error) {
	f.attempts[ttbID]++
	if f.attempts[ttbID] < f.failUntilAttempt {
		return "", errLoadTimeout
	}
	return f.html[ttbID], nil
}

var errLoadTimeout = context.DeadlineExceeded

func TestScrapeDetailsPersistsAndMarksScraped(t *testing.T) {
	store := openAcqTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertLinks(ctx, []record.Link{
		{TTBID: "1", DetailURL: "/a", Year: 2021, Month: 5},
	}); err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	driver := &fakeDetailDriver{html: map[string]string{"1": "<html>stub</html>"}}
	extract := func(html string) (map[string]string, error) {
		return map[string]string{
			"company_name":   "ACME LLC",
			"brand_name":     "Alpha",
			"class_type_code": "100",
			"approval_date":  "05/10/2021",
		}, nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	n, err := ScrapeDetails(ctx, log.New("acq-test"), driver, extract, store, limiter, 2021, 5)
	if err != nil {
		t.Fatalf("ScrapeDetails: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d scraped, want 1", n)
	}

	unscraped, err := store.UnscrapedLinks(ctx, 2021, 5)
	if err != nil {
		t.Fatalf("UnscrapedLinks: %v", err)
	}
	if len(unscraped) != 0 {
		t.Fatalf("expected link marked scraped, got %d unscraped", len(unscraped))
	}

	all, err := store.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0].Category != "Wine" {
		t.Fatalf("got category %q, want Wine", all[0].Category)
	}
	if all[0].Year == nil || *all[0].Year != 2021 {
		t.Fatalf("expected derived year 2021, got %+v", all[0].Year)
	}
}

func TestScrapeDetailsMarksLegacyWhenFieldsMissing(t *testing.T) {
	store := openAcqTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertLinks(ctx, []record.Link{
		{TTBID: "2", DetailURL: "/b", Year: 2021, Month: 5},
	}); err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	driver := &fakeDetailDriver{html: map[string]string{"2": "<html>stub</html>"}}
	extract := func(html string) (map[string]string, error) {
		return map[string]string{"approval_date": "05/10/2021"}, nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if _, err := ScrapeDetails(ctx, log.New("acq-test"), driver, extract, store, limiter, 2021, 5); err != nil {
		t.Fatalf("ScrapeDetails: %v", err)
	}

	all, err := store.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if all[0].Signal != record.SignalLegacy {
		t.Fatalf("got signal %q, want LEGACY", all[0].Signal)
	}
}

func TestScrapeDetailsRetriesWithinSessionBudget(t *testing.T) {
	store := openAcqTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertLinks(ctx, []record.Link{
		{TTBID: "3", DetailURL: "/c", Year: 2021, Month: 5},
	}); err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	driver := &flakyDetailDriver{
		html:             map[string]string{"3": "<html>stub</html>"},
		failUntilAttempt: 2,
		attempts:         map[string]int{},
	}
	extract := func(html string) (map[string]string, error) {
		return map[string]string{
			"company_name":   "ACME LLC",
			"brand_name":     "Alpha",
			"class_type_code": "100",
			"approval_date":  "05/10/2021",
		}, nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	n, err := ScrapeDetails(ctx, log.New("acq-test"), driver, extract, store, limiter, 2021, 5)
	if err != nil {
		t.Fatalf("ScrapeDetails: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d scraped, want 1 (should succeed on second attempt)", n)
	}
	if driver.attempts["3"] != 2 {
		t.Fatalf("got %d load attempts, want 2", driver.attempts["3"])
	}
}

func TestScrapeDetailsGivesUpAfterRetryBudgetExhausted(t *testing.T) {
	store := openAcqTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertLinks(ctx, []record.Link{
		{TTBID: "4", DetailURL: "/d", Year: 2021, Month: 5},
	}); err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	driver := &flakyDetailDriver{
		html:             map[string]string{"4": "<html>stub</html>"},
		failUntilAttempt: 100, // never succeeds within the retry budget
		attempts:         map[string]int{},
	}
	extract := func(html string) (map[string]string, error) {
		return map[string]string{"company_name": "ACME LLC", "brand_name": "Alpha"}, nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	n, err := ScrapeDetails(ctx, log.New("acq-test"), driver, extract, store, limiter, 2021, 5)
	if err != nil {
		t.Fatalf("ScrapeDetails: %v", err)
	}
	if n != 0 {
		t.Fatalf("got %d scraped, want 0", n)
	}
	if driver.attempts["4"] != maxExtractionAttemptsPerSession {
		t.Fatalf("got %d attempts, want %d", driver.attempts["4"], maxExtractionAttemptsPerSession)
	}

	unscraped, err := store.UnscrapedLinks(ctx, 2021, 5)
	if err != nil {
		t.Fatalf("UnscrapedLinks: %v", err)
	}
	if len(unscraped) != 1 {
		t.Fatalf("expected link still pending, got %d unscraped", len(unscraped))
	}
}
