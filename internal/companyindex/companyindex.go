// Package companyindex maintains the remote company/brand identity tables:
// brand-slug assignment, new-company/alias registration, and periodic
// duplicate-company merges.
package companyindex

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bevalc-intelligence/cola-engine/internal/record"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/mapx"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"
)

const brandSlugBatchSize = 1000

// BrandObservation is one (brand name, occurrence) pair seen during a sync
// or classification pass, used to grow the brand_slugs table.
type BrandObservation struct {
	BrandName string
}

// ReconcileBrandSlugs inserts or, on slug collision, resolves ownership for
// every newly observed brand name. Collisions prefer the longer brand name;
// ties fall back to the lexicographically smaller name.
func ReconcileBrandSlugs(ctx context.Context, client *remotestore.Client, observations []BrandObservation) error {
	bySlug := map[string]string{}
	for _, o := range observations {
		slug := record.Slugify(o.BrandName)
		if slug == "" {
			continue
		}
		existing, ok := bySlug[slug]
		if !ok || preferBrandName(o.BrandName, existing) {
			bySlug[slug] = o.BrandName
		}
	}

	slugs := mapx.Keys(bySlug)
	sort.Strings(slugs)

	batches := remotestore.Chunk(slugs, brandSlugBatchSize)
	for _, batch := range batches {
		stmts := make([]remotestore.Statement, 0, len(batch))
		for _, slug := range batch {
			stmts = append(stmts, remotestore.Statement{
				SQL: fmt.Sprintf(`INSERT OR IGNORE INTO brand_slugs (slug, brand_name, filing_count) VALUES (%s, %s, 1)`,
					remotestore.QuoteString(slug), remotestore.QuoteString(bySlug[slug])),
			})
			stmts = append(stmts, remotestore.Statement{
				SQL: fmt.Sprintf(`UPDATE brand_slugs SET filing_count = filing_count + 1 WHERE slug = %s`,
					remotestore.QuoteString(slug)),
			})
		}
		if _, err := client.ExecBatch(ctx, stmts); err != nil {
			return coreerror.Wrap(err, "failed to reconcile brand slugs").
				WithCode(coreerror.CodeDatabaseError).WithOperation("companyindex.ReconcileBrandSlugs")
		}
	}
	return nil
}

// preferBrandName reports whether candidate should replace the slug's
// current owner: the longer name wins, ties go to the lexicographically
// smaller name.
func preferBrandName(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate < current
}

// NewCompanyObservation is a raw company name seen in a record with no
// existing alias.
type NewCompanyObservation struct {
	RawName string
}

// RegisterNewCompanies inserts a Company row (canonical name = raw name) and
// a CompanyAlias row for every company newly observed in the corpus.
func RegisterNewCompanies(ctx context.Context, client *remotestore.Client, observations []NewCompanyObservation) error {
	seen := map[string]bool{}
	for _, o := range observations {
		key := strings.ToUpper(strings.TrimSpace(o.RawName))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		slug := record.Slugify(o.RawName)
		insertCompany := remotestore.Statement{
			SQL:    `INSERT INTO companies (canonical_name, slug, total_filings) VALUES (?, ?, 1)`,
			Params: []interface{}{o.RawName, slug},
		}
		if _, err := client.ExecBatch(ctx, []remotestore.Statement{insertCompany}); err != nil {
			return coreerror.Wrap(err, "failed to insert new company").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("companyindex.RegisterNewCompanies").
				WithDetail("raw_name", o.RawName)
		}

		result, err := client.Exec(ctx, `SELECT company_id FROM companies WHERE canonical_name = ? ORDER BY company_id DESC LIMIT 1`, o.RawName)
		if err != nil || len(result.Results) == 0 {
			return coreerror.New("failed to resolve new company id after insert").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("companyindex.RegisterNewCompanies").
				WithDetail("raw_name", o.RawName)
		}

		if _, err := client.Exec(ctx, `INSERT OR IGNORE INTO company_aliases (raw_name, company_id) VALUES (?, ?)`,
			o.RawName, result.Results[0]["company_id"]); err != nil {
			return coreerror.Wrap(err, "failed to insert company alias").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("companyindex.RegisterNewCompanies").
				WithDetail("raw_name", o.RawName)
		}
	}
	return nil
}

// MergeSummary reports the outcome of a duplicate-company merge.
type MergeSummary struct {
	GroupsExamined   int
	AliasesRewritten int
}

// MergeDuplicateCompanies groups CompanyAlias rows by upper(raw_name) and,
// for any group spanning more than one company_id, rewrites all aliases in
// the group to the minimum company_id. This resolves case-variant company
// spellings that accumulated separate company_ids before the aliases were
// folded together.
func MergeDuplicateCompanies(ctx context.Context, client *remotestore.Client) (MergeSummary, error) {
	var summary MergeSummary

	result, err := client.Exec(ctx, `SELECT raw_name, company_id FROM company_aliases`)
	if err != nil {
		return summary, coreerror.Wrap(err, "failed to load company aliases").
			WithCode(coreerror.CodeDatabaseError).WithOperation("companyindex.MergeDuplicateCompanies")
	}

	type aliasRow struct {
		rawName   string
		companyID int64
	}
	rows := make([]aliasRow, 0, len(result.Results))
	for _, row := range result.Results {
		rawName, _ := row["raw_name"].(string)
		rows = append(rows, aliasRow{rawName: rawName, companyID: toInt64Field(row["company_id"])})
	}
	groups := slicex.GroupBy(rows, func(r aliasRow) string {
		return strings.ToUpper(strings.TrimSpace(r.rawName))
	})

	keys := mapx.Keys(groups)
	sort.Strings(keys)

	for _, key := range keys {
		group := groups[key]
		summary.GroupsExamined++
		ids := slicex.Map(group, func(r aliasRow) int64 { return r.companyID })
		if len(slicex.Unique(ids)) < 2 {
			continue
		}
		minID, _ := slicex.Min(ids)

		var stmts []remotestore.Statement
		for _, r := range group {
			stmts = append(stmts, remotestore.Statement{
				SQL: fmt.Sprintf(`UPDATE company_aliases SET company_id = %d WHERE raw_name = %s`,
					minID, remotestore.QuoteString(r.rawName)),
			})
		}
		if _, err := client.ExecBatch(ctx, stmts); err != nil {
			return summary, coreerror.Wrap(err, "failed to rewrite duplicate company aliases").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("companyindex.MergeDuplicateCompanies").
				WithDetail("group", key)
		}
		summary.AliasesRewritten += len(stmts)
	}

	return summary, nil
}

// DiscoverNewCompanies returns one observation per distinct company_name in
// the corpus that has no existing company_aliases row, for RegisterNewCompanies.
func DiscoverNewCompanies(ctx context.Context, client *remotestore.Client) ([]NewCompanyObservation, error) {
	result, err := client.Exec(ctx, `
		SELECT DISTINCT r.company_name FROM records r
		LEFT JOIN company_aliases a ON a.raw_name = r.company_name
		WHERE r.company_name IS NOT NULL AND r.company_name != '' AND a.raw_name IS NULL`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to discover new companies").
			WithCode(coreerror.CodeDatabaseError).WithOperation("companyindex.DiscoverNewCompanies")
	}
	out := make([]NewCompanyObservation, 0, len(result.Results))
	for _, row := range result.Results {
		name, _ := row["company_name"].(string)
		out = append(out, NewCompanyObservation{RawName: name})
	}
	return out, nil
}

// DiscoverBrandObservations returns one observation per distinct brand_name
// in the corpus, for ReconcileBrandSlugs.
func DiscoverBrandObservations(ctx context.Context, client *remotestore.Client) ([]BrandObservation, error) {
	result, err := client.Exec(ctx, `SELECT DISTINCT brand_name FROM records WHERE brand_name IS NOT NULL AND brand_name != ''`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to discover brand observations").
			WithCode(coreerror.CodeDatabaseError).WithOperation("companyindex.DiscoverBrandObservations")
	}
	out := make([]BrandObservation, 0, len(result.Results))
	for _, row := range result.Results {
		name, _ := row["brand_name"].(string)
		out = append(out, BrandObservation{BrandName: name})
	}
	return out, nil
}

func toInt64Field(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	default:
		return 0
	}
}
