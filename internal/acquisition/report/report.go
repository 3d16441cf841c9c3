// Package report renders the acquisition worker's progress summary, shared
// between the live end-of-phase printout and the --status inspection mode.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// Render writes a fixed-width table of every tracked month's progress to w,
// ordered chronologically, followed by a totals line.
func Render(w io.Writer, months []record.MonthProgress) {
	sorted := slicex.SortBy(months, func(a, b record.MonthProgress) bool {
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tMONTH\tLINKS\tEXPECTED\tLINKS_OK\tDETAILS\tDETAILS_OK\tLAST_ERROR")

	var totalLinks, totalExpected, totalDetails int
	for _, m := range sorted {
		fmt.Fprintf(tw, "%d\t%02d\t%d\t%d\t%s\t%d\t%s\t%s\n",
			m.Year, m.Month, m.CollectedLinks, m.ExpectedLinks, checkmark(m.LinksComplete()),
			m.ScrapedDetails, checkmark(m.DetailsComplete()), m.LastError)
		totalLinks += m.CollectedLinks
		totalExpected += m.ExpectedLinks
		totalDetails += m.ScrapedDetails
	}
	tw.Flush()

	fmt.Fprintf(w, "\ntotal: %d links collected, %d expected, %d details scraped across %d months\n",
		totalLinks, totalExpected, totalDetails, len(sorted))
}

func checkmark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
