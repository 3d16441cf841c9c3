package record

import (
	"regexp"
	"strconv"
)

// approvalDatePattern matches the exact MM/DD/YYYY shape a registry
// approval_date is expected to take. Anything else — blank, partial, a
// different separator, a four-then-two-digit order — leaves year/month/day
// null rather than being heuristically inferred from scrape time.
var approvalDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// DeriveDate parses approval_date and returns (year, month, day) pointers.
// All three are nil together on any parse failure, so a caller never sees a
// partial derivation.
func DeriveDate(approvalDate string) (year, month, day *int) {
	m := approvalDatePattern.FindStringSubmatch(approvalDate)
	if m == nil {
		return nil, nil, nil
	}

	mm, errM := strconv.Atoi(m[1])
	dd, errD := strconv.Atoi(m[2])
	yyyy, errY := strconv.Atoi(m[3])
	if errM != nil || errD != nil || errY != nil {
		return nil, nil, nil
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return nil, nil, nil
	}

	return &yyyy, &mm, &dd
}

// ApplyDerivedDate populates r.Year/Month/Day from r.ApprovalDate.
func (r *Record) ApplyDerivedDate() {
	r.Year, r.Month, r.Day = DeriveDate(r.ApprovalDate)
}
