package acquisition

import (
	"context"

	"github.com/bevalc-intelligence/cola-engine/internal/browser"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

const detailURLPrefix = "https://ttbonline.gov/colasonline/viewColaDetails.do?action=publicDisplaySearchBasic&ttbid="

// BrowserAdapter adapts a *browser.Driver to the SearchDriver interface,
// turning raw result-page HTML into the (ttb_id, detail_url) links Phase 1
// persists.
type BrowserAdapter struct {
	Driver *browser.Driver
}

func (a *BrowserAdapter) SubmitSearch(ctx context.Context, dateFrom, dateTo, classCodeFrom, classCodeTo string) (SearchResult, error) {
	res, err := a.Driver.SubmitSearch(ctx, dateFrom, dateTo, classCodeFrom, classCodeTo)
	if err != nil {
		return SearchResult{}, err
	}
	return toSearchResult(res)
}

func (a *BrowserAdapter) NextPage(ctx context.Context) (SearchResult, error) {
	res, err := a.Driver.NextPage(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	if res.EndOfResults {
		return SearchResult{EndOfResults: true}, nil
	}
	return toSearchResult(res)
}

func toSearchResult(res browser.SearchResult) (SearchResult, error) {
	rows, err := browser.ExtractResultLinks(res.PageHTML)
	if err != nil {
		return SearchResult{}, err
	}
	links := make([]record.Link, 0, len(rows))
	for _, row := range rows {
		links = append(links, record.Link{
			TTBID:     row.TTBID,
			DetailURL: detailURLPrefix + row.TTBID,
		})
	}
	return SearchResult{TotalRecords: res.TotalRecords, Links: links}, nil
}
