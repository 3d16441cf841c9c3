package acquisition

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

func TestRunMonthBothPhases(t *testing.T) {
	store := openAcqTestStore(t)
	driver := &scriptedDriver{
		totals: map[string]int{
			key("04/01/2021", "04/30/2021", "", ""): 2,
		},
		linksPerKey: map[string][]record.Link{
			key("04/01/2021", "04/30/2021", "", ""): {{TTBID: "1"}, {TTBID: "2"}},
		},
	}
	detailDriver := &fakeDetailDriver{html: map[string]string{"1": "<html/>", "2": "<html/>"}}
	extract := func(html string) (map[string]string, error) {
		return map[string]string{"company_name": "ACME LLC", "brand_name": "Alpha", "approval_date": "04/15/2021"}, nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	progress, err := RunMonth(context.Background(), log.New("acq-test"), driver, detailDriver, extract, store, limiter,
		MonthSelector{Year: 2021, Month: 4}, PhaseBoth)
	if err != nil {
		t.Fatalf("RunMonth: %v", err)
	}
	if !progress.LinksVerified {
		t.Fatalf("expected links verified, got %+v", progress)
	}
	if !progress.DetailsVerified {
		t.Fatalf("expected details verified, got %+v", progress)
	}
	if progress.ScrapedDetails != 2 {
		t.Fatalf("got %d scraped details, want 2", progress.ScrapedDetails)
	}

	stored, ok, err := store.MonthProgress(context.Background(), 2021, 4)
	if err != nil {
		t.Fatalf("MonthProgress: %v", err)
	}
	if !ok || !stored.DetailsVerified {
		t.Fatalf("expected persisted progress to show details verified, got %+v ok=%v", stored, ok)
	}
}

func TestRunMonthShortCircuitsVerifiedPhase1(t *testing.T) {
	store := openAcqTestStore(t)
	ctx := context.Background()

	// Seed a month already marked verified; the driver has no script entries,
	// so any SubmitSearch would fail the test.
	if err := store.UpsertMonthProgress(ctx, &record.MonthProgress{
		Year: 2021, Month: 4, ExpectedLinks: 1, CollectedLinks: 1, LinksVerified: true,
	}); err != nil {
		t.Fatalf("UpsertMonthProgress: %v", err)
	}

	driver := &scriptedDriver{totals: map[string]int{}}
	limiter := rate.NewLimiter(rate.Inf, 1)
	progress, err := RunMonth(ctx, log.New("acq-test"), driver, nil, nil, store, limiter,
		MonthSelector{Year: 2021, Month: 4}, PhaseLinksOnly)
	if err != nil {
		t.Fatalf("RunMonth: %v", err)
	}
	if !progress.LinksVerified {
		t.Fatalf("expected verified state preserved, got %+v", progress)
	}
}

func TestRunMonthPersistsVerificationShortfall(t *testing.T) {
	store := openAcqTestStore(t)
	monthKey := key("04/01/2021", "04/30/2021", "", "")
	driver := &scriptedDriver{
		totals: map[string]int{monthKey: 3},
		linksPerKey: map[string][]record.Link{
			// Registry declares 3 but only ever serves 1 link.
			monthKey: {{TTBID: "1"}},
		},
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	progress, err := RunMonth(context.Background(), log.New("acq-test"), driver, nil, nil, store, limiter,
		MonthSelector{Year: 2021, Month: 4}, PhaseLinksOnly)
	if err != nil {
		t.Fatalf("RunMonth: %v", err)
	}
	if progress.LinksVerified {
		t.Fatalf("expected verification shortfall, got %+v", progress)
	}
	if progress.LastError == "" {
		t.Fatalf("expected descriptive shortfall error persisted")
	}

	stored, ok, err := store.MonthProgress(context.Background(), 2021, 4)
	if err != nil || !ok {
		t.Fatalf("MonthProgress: %v ok=%v", err, ok)
	}
	if stored.LastError == "" || stored.LinksVerified {
		t.Fatalf("shortfall not persisted: %+v", stored)
	}
}

func TestRunMonthLinksOnlySkipsPhase2(t *testing.T) {
	store := openAcqTestStore(t)
	driver := &scriptedDriver{
		totals: map[string]int{
			key("04/01/2021", "04/30/2021", "", ""): 1,
		},
		linksPerKey: map[string][]record.Link{
			key("04/01/2021", "04/30/2021", "", ""): {{TTBID: "1"}},
		},
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	progress, err := RunMonth(context.Background(), log.New("acq-test"), driver, nil, nil, store, limiter,
		MonthSelector{Year: 2021, Month: 4}, PhaseLinksOnly)
	if err != nil {
		t.Fatalf("RunMonth: %v", err)
	}
	if progress.ScrapedDetails != 0 {
		t.Fatalf("expected no details scraped, got %d", progress.ScrapedDetails)
	}
	if !progress.LinksVerified {
		t.Fatalf("expected links verified")
	}
}
