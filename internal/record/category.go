package record

import (
	"strconv"
	"strings"
)

// classCodeCategories maps TTB class/type code prefixes to the broad
// product family used for the derived `category` field. Codes are matched
// by prefix, longest first, falling back to "Other".
var classCodeCategories = []struct {
	prefix   string
	category string
}{
	{"100", "Wine"},
	{"130", "Wine"},
	{"140", "Wine"},
	{"150", "Sake"},
	{"400", "Gin"},
	{"410", "Vodka"},
	{"415", "Whiskey"},
	{"420", "Rum"},
	{"425", "Brandy"},
	{"430", "Liqueur"},
	{"450", "Tequila"},
	{"900", "Beer"},
	{"910", "Beer"},
}

// CategoryForClassCode derives the broad product family from a registry
// class/type code. Unknown or empty codes return "Other" rather than an
// empty string, so downstream grouping never has to special-case blank
// categories.
func CategoryForClassCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Other"
	}
	best := ""
	bestLen := 0
	for _, entry := range classCodeCategories {
		if strings.HasPrefix(trimmed, entry.prefix) && len(entry.prefix) > bestLen {
			best = entry.category
			bestLen = len(entry.prefix)
		}
	}
	if best == "" {
		return "Other"
	}
	return best
}

// ApplyCategory sets r.Category from r.ClassTypeCode.
func (r *Record) ApplyCategory() {
	r.Category = CategoryForClassCode(r.ClassTypeCode)
}

// CompanyKey returns the key used to group "seen" company state during
// classification: the alias-resolved company_id if known (formatted),
// otherwise the upper-cased raw company name.
func CompanyKey(companyID int64, companyName string) string {
	if companyID > 0 {
		return "id:" + strconv.FormatInt(companyID, 10)
	}
	return "raw:" + strings.ToUpper(strings.TrimSpace(companyName))
}
