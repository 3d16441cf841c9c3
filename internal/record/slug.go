package record

import (
	"regexp"
	"strings"
)

var (
	slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	slugRuns     = regexp.MustCompile(`-+`)
)

// Slugify derives a BrandSlug.Slug from a brand name: lowercase,
// alphanumeric-plus-hyphen, collapsed runs.
//
// stringx.ToKebabCase only handles camelCase/space/underscore boundaries and
// would leave punctuation like apostrophes or ampersands in the result, so
// brand-slug derivation needs its own pass rather than reusing it directly.
func Slugify(brandName string) string {
	lower := strings.ToLower(brandName)
	hyphenated := slugNonAlnum.ReplaceAllString(lower, "-")
	collapsed := slugRuns.ReplaceAllString(hyphenated, "-")
	return strings.Trim(collapsed, "-")
}
