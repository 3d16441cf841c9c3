package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "worker.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertLinksDeduplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	links := []record.Link{
		{TTBID: "1", DetailURL: "/a", Year: 2021, Month: 3},
		{TTBID: "2", DetailURL: "/b", Year: 2021, Month: 3},
	}
	n, err := s.InsertLinks(ctx, links)
	if err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d inserted, want 2", n)
	}

	n, err = s.InsertLinks(ctx, links)
	if err != nil {
		t.Fatalf("InsertLinks (repeat): %v", err)
	}
	if n != 0 {
		t.Fatalf("got %d inserted on repeat, want 0", n)
	}

	count, err := s.CountLinks(ctx, 2021, 3)
	if err != nil {
		t.Fatalf("CountLinks: %v", err)
	}
	if count != 2 {
		t.Fatalf("got %d links, want 2", count)
	}
}

func TestUnscrapedLinksAndUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertLinks(ctx, []record.Link{
		{TTBID: "1", DetailURL: "/a", Year: 2021, Month: 3},
	}); err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	unscraped, err := s.UnscrapedLinks(ctx, 2021, 3)
	if err != nil {
		t.Fatalf("UnscrapedLinks: %v", err)
	}
	if len(unscraped) != 1 {
		t.Fatalf("got %d unscraped, want 1", len(unscraped))
	}

	y, m, d := 2021, 3, 14
	r := &record.Record{
		TTBID:        "1",
		ApprovalDate: "03/14/2021",
		Year:         &y, Month: &m, Day: &d,
		CompanyName: "ACME LLC",
		BrandName:   "Alpha",
		Signal:      record.SignalNewCompany,
	}
	if err := s.UpsertRecordAndMarkScraped(ctx, r); err != nil {
		t.Fatalf("UpsertRecordAndMarkScraped: %v", err)
	}

	unscraped, err = s.UnscrapedLinks(ctx, 2021, 3)
	if err != nil {
		t.Fatalf("UnscrapedLinks after upsert: %v", err)
	}
	if len(unscraped) != 0 {
		t.Fatalf("got %d unscraped after upsert, want 0", len(unscraped))
	}

	count, err := s.CountRecords(ctx, 2021, 3)
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d records, want 1", count)
	}

	all, err := s.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0].Signal != record.SignalNewCompany {
		t.Fatalf("got signal %q, want NEW_COMPANY", all[0].Signal)
	}
	if all[0].Year == nil || *all[0].Year != 2021 {
		t.Fatalf("year not round-tripped")
	}
}

func TestMonthProgressRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.MonthProgress(ctx, 2021, 3); err != nil {
		t.Fatalf("MonthProgress (missing): %v", err)
	} else if ok {
		t.Fatalf("expected no row for untracked month")
	}

	p := &record.MonthProgress{Year: 2021, Month: 3, ExpectedLinks: 500, CollectedLinks: 500, LinksVerified: true}
	if err := s.UpsertMonthProgress(ctx, p); err != nil {
		t.Fatalf("UpsertMonthProgress: %v", err)
	}

	got, ok, err := s.MonthProgress(ctx, 2021, 3)
	if err != nil {
		t.Fatalf("MonthProgress: %v", err)
	}
	if !ok {
		t.Fatalf("expected row to exist")
	}
	if !got.LinksVerified || got.CollectedLinks != 500 {
		t.Fatalf("got %+v", got)
	}
	if got.DetailsVerified {
		t.Fatalf("details should not be verified yet")
	}

	p.ScrapedDetails = 500
	p.DetailsVerified = true
	if err := s.UpsertMonthProgress(ctx, p); err != nil {
		t.Fatalf("UpsertMonthProgress (update): %v", err)
	}

	all, err := s.AllMonthProgress(ctx)
	if err != nil {
		t.Fatalf("AllMonthProgress: %v", err)
	}
	if len(all) != 1 || !all[0].DetailsVerified {
		t.Fatalf("got %+v", all)
	}
}
