package acquisition

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// DetailDriver is the browser capability Phase 2 needs: fetch the raw HTML
// of one detail page.
type DetailDriver interface {
	LoadDetail(ctx context.Context, ttbID string) (string, error)
}

// FieldExtractor parses a detail page's HTML into the canonical field map
// (see browser.ExtractDetailFields), kept as a function value so tests can
// substitute a fixed-output fake instead of a real goquery parse.
type FieldExtractor func(html string) (map[string]string, error)

// progressLogInterval controls how often Phase 2 logs a progress line while
// working through a month's unscraped links.
const progressLogInterval = 100

// maxExtractionAttemptsPerSession bounds how many times ScrapeDetails tries
// a single link's load-and-extract before giving up on it for this run. The
// link stays unscraped either way; a later run gets its own fresh budget.
const maxExtractionAttemptsPerSession = 3

// ScrapeDetails runs Phase 2 for one (year, month): loads every unscraped
// link's detail page, extracts its fields, derives the approval date, and
// persists the record with its owning link marked scraped. It resumes
// cleanly because UnscrapedLinks only ever returns links not yet recorded.
func ScrapeDetails(ctx context.Context, logger *log.Logger, driver DetailDriver, extract FieldExtractor, store *localstore.Store, limiter *rate.Limiter, year, month int) (int, error) {
	links, err := store.UnscrapedLinks(ctx, year, month)
	if err != nil {
		return 0, err
	}

	scraped, failed := 0, 0
	for _, link := range links {
		fields, ok, err := loadAndExtractWithRetry(ctx, logger, driver, extract, limiter, link.TTBID)
		if err != nil {
			return scraped, err
		}
		if !ok {
			failed++
			continue
		}

		r := fieldsToRecord(link.TTBID, fields)
		if err := store.UpsertRecordAndMarkScraped(ctx, r); err != nil {
			return scraped, err
		}
		scraped++

		if (scraped+failed)%progressLogInterval == 0 {
			logger.Info("detail scrape progress", "year", year, "month", month, "ok", scraped, "failed", failed, "of", len(links))
		}
	}

	return scraped, nil
}

// loadAndExtractWithRetry attempts to load and parse one link's detail page,
// making at most maxExtractionAttemptsPerSession attempts in all, retrying on
// either a load or an extraction failure, pacing every attempt through limiter. It reports
// ok=false (never an error) once the attempt budget is exhausted, so the
// caller leaves the link unscraped and moves on to the next one rather than
// aborting the whole month.
func loadAndExtractWithRetry(ctx context.Context, logger *log.Logger, driver DetailDriver, extract FieldExtractor, limiter *rate.Limiter, ttbID string) (map[string]string, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxExtractionAttemptsPerSession; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, false, err
		}

		html, err := driver.LoadDetail(ctx, ttbID)
		if err != nil {
			lastErr = err
			continue
		}

		fields, err := extract(html)
		if err != nil {
			lastErr = err
			continue
		}

		return fields, true, nil
	}

	logger.Warn("giving up on link for this session after repeated extraction failures",
		"ttb_id", ttbID, "attempts", maxExtractionAttemptsPerSession, "last_error", lastErr.Error())
	return nil, false, nil
}

func fieldsToRecord(ttbID string, fields map[string]string) *record.Record {
	r := &record.Record{
		TTBID:               ttbID,
		SerialNumber:        fields["serial_number"],
		VendorCode:          fields["vendor_code"],
		Status:              fields["status"],
		ClassTypeCode:       fields["class_type_code"],
		OriginCode:          fields["origin_code"],
		TypeOfApplication:   fields["type_of_application"],
		BrandName:           fields["brand_name"],
		FancifulName:        fields["fanciful_name"],
		Qualifications:      fields["qualifications"],
		Formula:             fields["formula"],
		ForSaleIn:           fields["for_sale_in"],
		TotalBottleCapacity: fields["total_bottle_capacity"],
		GrapeVarietal:       fields["grape_varietal"],
		WineVintage:         fields["wine_vintage"],
		Appellation:         fields["appellation"],
		AlcoholContent:      fields["alcohol_content"],
		PHLevel:             fields["ph_level"],
		CompanyName:         fields["company_name"],
		PlantRegistry:       fields["plant_registry"],
		Street:              fields["street"],
		State:               fields["state"],
		ContactPerson:       fields["contact_person"],
		PhoneNumber:         fields["phone_number"],
		ApprovalDate:        fields["approval_date"],
	}
	r.ApplyDerivedDate()
	r.Category = record.CategoryForClassCode(r.ClassTypeCode)
	if r.IsLegacy() {
		r.Signal = record.SignalLegacy
	}
	return r
}
