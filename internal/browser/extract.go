package browser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// totalRecordsPatterns are tried in order against the results page text; the
// registry has rendered the total-matching-records line three different
// ways across its history.
var totalRecordsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Total Matching Records:\s*(\d+)`),
	regexp.MustCompile(`of\s+(\d+)\s*\(Total`),
	regexp.MustCompile(`\d+\s+to\s+\d+\s+of\s+(\d+)`),
}

// ParseTotalRecords reads the total-matching-records line the registry
// prints above its result table. A search with zero matches omits the line
// entirely, which this reports as zero rather than an error.
func ParseTotalRecords(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to parse search results page").
			WithCode(coreerror.CodeInvalidFormat).WithOperation("browser.ParseTotalRecords")
	}

	text := doc.Text()
	for _, pattern := range totalRecordsPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		count, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
		if err != nil {
			return 0, coreerror.Wrap(err, "failed to parse record count").
				WithCode(coreerror.CodeInvalidFormat).WithOperation("browser.ParseTotalRecords")
		}
		return count, nil
	}
	return 0, nil
}

// ResultLink is one row of a search results page: the TTB ID and the
// registry-assigned status shown next to it.
type ResultLink struct {
	TTBID  string
	Status string
}

var ttbIDPattern = regexp.MustCompile(`ttbid=(\d+)`)

// ExtractResultLinks walks the alternating `lt`/`dk` result-table rows the
// registry renders, pairing each row's ttbid-bearing anchor with its status
// cell. Falls back to scanning every anchor on the page if no such rows are
// present, so a template variation doesn't silently return zero links.
func ExtractResultLinks(html string) ([]ResultLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to parse search results page").
			WithCode(coreerror.CodeInvalidFormat).WithOperation("browser.ExtractResultLinks")
	}

	var links []ResultLink
	rows := doc.Find("tr.lt, tr.dk")
	if rows.Length() == 0 {
		rows = doc.Find("tr")
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find("a[href*='ttbid=']").First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		match := ttbIDPattern.FindStringSubmatch(href)
		if match == nil {
			return
		}
		status := strings.TrimSpace(row.Find("td").Last().Text())
		links = append(links, ResultLink{TTBID: match[1], Status: status})
	})
	return links, nil
}

// fieldLabels lists, per detail-page field, the candidate label text to
// search for, in priority order, since the registry has used more than one
// label for some fields across its history. The applicant block carries no
// per-field labels at all and is read positionally instead (see
// extractCompanyDetails).
var fieldLabels = map[string][]string{
	"serial_number":         {"Serial #:", "Serial Number:"},
	"vendor_code":           {"Vendor Code:"},
	"status":                {"Status:"},
	"class_type_code":       {"Class/Type Code:", "Class Type Code:"},
	"origin_code":           {"Origin Code:"},
	"type_of_application":   {"Type of Application:"},
	"brand_name":            {"Brand Name:"},
	"fanciful_name":         {"Fanciful Name:"},
	"qualifications":        {"Qualifications:"},
	"formula":               {"Formula :", "Formula:"}, // the registry renders a space before the colon
	"for_sale_in":           {"For Sale In:"},
	"total_bottle_capacity": {"Total Bottle Capacity:"},
	"grape_varietal":        {"Grape Varietal(s):", "Grape Varietal:"},
	"wine_vintage":          {"Wine Vintage:"},
	"appellation":           {"Appellation:"},
	"alcohol_content":       {"Alcohol Content:"},
	"ph_level":              {"pH Level:", "PH Level:"},
	"approval_date":         {"Approval Date:", "Completed Date:"},
}

// labelCell is one candidate label-bearing element, in document order, with
// its whitespace-collapsed text.
type labelCell struct {
	sel  *goquery.Selection
	text string
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractDetailFields walks a detail page's label/value table cells and
// returns every field it can find, keyed by the canonical names used in
// fieldLabels. Labels are matched case-insensitively with whitespace
// collapsed, so "BRAND NAME :" style template drift still resolves. A field
// absent on a particular form revision is simply omitted from the result,
// not reported as an error.
func ExtractDetailFields(html string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to parse detail page").
			WithCode(coreerror.CodeInvalidFormat).WithOperation("browser.ExtractDetailFields")
	}

	var cells []labelCell
	doc.Find("td, th, label, span, div").Each(func(_ int, s *goquery.Selection) {
		t := collapseSpace(s.Text())
		if t == "" || len(t) > 160 {
			return
		}
		cells = append(cells, labelCell{sel: s, text: t})
	})

	out := make(map[string]string)
	for field, candidates := range fieldLabels {
		for _, label := range candidates {
			if value := findLabeledValue(cells, label); value != "" {
				out[field] = value
				break
			}
		}
	}
	extractCompanyDetails(doc, out)
	return out, nil
}

// extractCompanyDetails reads the applicant block from the second div.box.
// Unlike the rest of the page there are no per-field labels to anchor on:
// the registry renders a fixed row layout (plant registry, company name,
// street, state on rows 2-5) followed by a "Contact Information:" marker row
// with the contact person and phone number on the two rows after it.
func extractCompanyDetails(doc *goquery.Document, out map[string]string) {
	boxes := doc.Find("div.box")
	if boxes.Length() < 2 {
		return
	}
	rows := boxes.Eq(1).Find("tr")

	rowText := func(i int) string {
		if i < 0 || i >= rows.Length() {
			return ""
		}
		cell := rows.Eq(i).Find("td").First()
		if cell.Length() == 0 {
			return ""
		}
		return collapseSpace(cell.Text())
	}

	if rows.Length() > 5 {
		setIfPresent(out, "plant_registry", rowText(2))
		setIfPresent(out, "company_name", rowText(3))
		setIfPresent(out, "street", rowText(4))
		setIfPresent(out, "state", rowText(5))
	}

	for i := 0; i < rows.Length(); i++ {
		if !strings.Contains(rows.Eq(i).Text(), "Contact Information:") {
			continue
		}
		setIfPresent(out, "contact_person", rowText(i+1))
		phone := strings.TrimSpace(strings.TrimPrefix(rowText(i+2), "Phone Number:"))
		setIfPresent(out, "phone_number", phone)
		break
	}
}

func setIfPresent(out map[string]string, key, value string) {
	if value != "" {
		out[key] = value
	}
}

// findLabeledValue matches label against each cell case-insensitively. A
// cell whose whole text is the label yields the adjacent cell's text; a cell
// whose text merely starts with the label carries the value inline after it.
func findLabeledValue(cells []labelCell, label string) string {
	norm := collapseSpace(label)
	for _, c := range cells {
		if strings.EqualFold(c.text, norm) {
			if v := valueAfterLabel(c.sel); v != "" {
				return v
			}
			continue
		}
		if len(c.text) > len(norm) && strings.EqualFold(c.text[:len(norm)], norm) {
			if v := strings.TrimSpace(c.text[len(norm):]); v != "" {
				return v
			}
		}
	}
	return ""
}

// valueAfterLabel finds the value associated with a label cell: the next
// sibling cell in the same row if present, otherwise the label's own
// following sibling in the DOM.
func valueAfterLabel(label *goquery.Selection) string {
	if next := label.Next(); next.Length() > 0 {
		return strings.TrimSpace(next.Text())
	}
	row := label.Closest("tr")
	if row.Length() > 0 {
		cells := row.Find("td")
		if cells.Length() >= 2 {
			return strings.TrimSpace(cells.Eq(cells.Length() - 1).Text())
		}
	}
	return ""
}
