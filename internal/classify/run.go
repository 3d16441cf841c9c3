package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

const (
	aliasPageSize  = 10000
	recordPageSize = 50000
)

// LoadAliasIndex pages through the remote CompanyAlias table 10,000 rows at
// a time and builds the in-memory upper(raw_name) -> company_id map the
// classifier resolves companies against.
func LoadAliasIndex(ctx context.Context, client *remotestore.Client) (AliasIndex, error) {
	index := make(AliasIndex)
	offset := 0
	for {
		result, err := client.Exec(ctx,
			`SELECT raw_name, company_id FROM company_aliases ORDER BY raw_name LIMIT ? OFFSET ?`,
			aliasPageSize, offset)
		if err != nil {
			return nil, coreerror.Wrap(err, "failed to page company aliases").
				WithCode(coreerror.CodeDatabaseError).WithOperation("classify.LoadAliasIndex")
		}
		if len(result.Results) == 0 {
			break
		}
		for _, row := range result.Results {
			rawName, _ := row["raw_name"].(string)
			index[strings.ToUpper(strings.TrimSpace(rawName))] = toInt64(row["company_id"])
		}
		if len(result.Results) < aliasPageSize {
			break
		}
		offset += aliasPageSize
	}
	return index, nil
}

func toInt64(v interface{}) int64 {
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

// YearMonth identifies one partition of the ordered record stream.
type YearMonth struct {
	Year  int
	Month int
}

// DistinctYearMonths returns every (year, month) present in the corpus,
// ascending, so the caller can iterate partitions one at a time and never
// issue an unbounded OFFSET scan across the whole corpus.
func DistinctYearMonths(ctx context.Context, client *remotestore.Client) ([]YearMonth, error) {
	result, err := client.Exec(ctx, `SELECT DISTINCT year, month FROM records WHERE year IS NOT NULL AND month IS NOT NULL ORDER BY year, month`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to list year/month partitions").
			WithCode(coreerror.CodeDatabaseError).WithOperation("classify.DistinctYearMonths")
	}
	out := make([]YearMonth, 0, len(result.Results))
	for _, row := range result.Results {
		out = append(out, YearMonth{Year: int(toInt64(row["year"])), Month: int(toInt64(row["month"]))})
	}
	return out, nil
}

// FetchPartition pages through one (year, month) partition ordered by (day,
// ttb_id), annotating each row with its alias-resolved company_id (0 if
// orphaned).
func FetchPartition(ctx context.Context, client *remotestore.Client, ym YearMonth, alias AliasIndex) ([]Input, error) {
	var inputs []Input
	offset := 0
	for {
		result, err := client.Exec(ctx,
			`SELECT ttb_id, company_name, brand_name, fanciful_name FROM records
			 WHERE year = ? AND month = ? ORDER BY day ASC, ttb_id ASC LIMIT ? OFFSET ?`,
			ym.Year, ym.Month, recordPageSize, offset)
		if err != nil {
			return nil, coreerror.Wrap(err, "failed to page record partition").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("classify.FetchPartition").
				WithDetail("year", ym.Year).WithDetail("month", ym.Month)
		}
		if len(result.Results) == 0 {
			break
		}
		for _, row := range result.Results {
			companyName, _ := row["company_name"].(string)
			inputs = append(inputs, Input{
				TTBID:       fmt.Sprint(row["ttb_id"]),
				CompanyName: companyName,
				BrandName:   fmt.Sprint(row["brand_name"]),
				Fanciful:    fmt.Sprint(row["fanciful_name"]),
				CompanyID:   alias.Lookup(companyName),
			})
		}
		if len(result.Results) < recordPageSize {
			break
		}
		offset += recordPageSize
	}
	return inputs, nil
}

// FetchNullDatePartition pages through every record whose approval_date
// never parsed (year or month null), ordered by ttb_id so the partition is
// deterministic. A missing date only removes a record from the chronological
// portion of the stream, not from classification: these records form one
// terminal partition classified after every dated record, so each of them
// still receives exactly one signal.
func FetchNullDatePartition(ctx context.Context, client *remotestore.Client, alias AliasIndex) ([]Input, error) {
	var inputs []Input
	offset := 0
	for {
		result, err := client.Exec(ctx,
			`SELECT ttb_id, company_name, brand_name, fanciful_name FROM records
			 WHERE year IS NULL OR month IS NULL ORDER BY ttb_id ASC LIMIT ? OFFSET ?`,
			recordPageSize, offset)
		if err != nil {
			return nil, coreerror.Wrap(err, "failed to page undated record partition").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("classify.FetchNullDatePartition")
		}
		if len(result.Results) == 0 {
			break
		}
		for _, row := range result.Results {
			companyName, _ := row["company_name"].(string)
			inputs = append(inputs, Input{
				TTBID:       fmt.Sprint(row["ttb_id"]),
				CompanyName: companyName,
				BrandName:   fmt.Sprint(row["brand_name"]),
				Fanciful:    fmt.Sprint(row["fanciful_name"]),
				CompanyID:   alias.Lookup(companyName),
			})
		}
		if len(result.Results) < recordPageSize {
			break
		}
		offset += recordPageSize
	}
	return inputs, nil
}

// ApplyUpdates issues one batched UPDATE per group produced by GroupUpdates.
// Values are rendered inline because the groups travel together in a single
// multi-statement request.
func ApplyUpdates(ctx context.Context, client *remotestore.Client, groups []UpdateGroup) error {
	var stmts []remotestore.Statement
	for _, g := range groups {
		ids := make([]string, len(g.TTBIDs))
		for i, id := range g.TTBIDs {
			ids[i] = remotestore.QuoteString(id)
		}
		stmts = append(stmts, remotestore.Statement{
			SQL: fmt.Sprintf(`UPDATE records SET signal = %s, refile_count = %d WHERE ttb_id IN (%s)`,
				remotestore.QuoteString(string(g.Signal)), g.RefileCount, strings.Join(ids, ",")),
		})
	}
	if len(stmts) == 0 {
		return nil
	}
	if _, err := client.ExecBatch(ctx, stmts); err != nil {
		return coreerror.Wrap(err, "failed to apply classification updates").
			WithCode(coreerror.CodeDatabaseError).WithOperation("classify.ApplyUpdates")
	}
	return nil
}

// Summary reports the outcome of a full classification run.
type Summary struct {
	PartitionsProcessed int
	RecordsClassified   int
	UpdateGroups        int
}

// Run drives the full three-pass classification: preload aliases, stream
// every (year, month) partition in ascending order into one chronologically
// ordered corpus (partitions ascend, and each partition's own rows are
// already ordered by (day, ttb_id), so concatenation preserves the global
// order), then run Pass 1 and Pass 2 once over the whole corpus before
// grouping and applying updates. Records with a null year or month — a
// malformed or blank approval_date — form one terminal partition appended
// after every dated record, so they too end up with exactly one signal. The
// seen-sets and first-instance map must span the entire corpus — a record's
// company or brand may first appear in one month and recur many months
// later — so partitions cannot be classified independently of one another.
func Run(ctx context.Context, logger *log.Logger, client *remotestore.Client) (Summary, error) {
	var summary Summary

	alias, err := LoadAliasIndex(ctx, client)
	if err != nil {
		return summary, err
	}
	logger.Info("loaded company alias index", "aliases", len(alias))

	partitions, err := DistinctYearMonths(ctx, client)
	if err != nil {
		return summary, err
	}

	var corpus []Input
	for _, ym := range partitions {
		inputs, err := FetchPartition(ctx, client, ym, alias)
		if err != nil {
			return summary, err
		}
		corpus = append(corpus, inputs...)
		summary.PartitionsProcessed++
		logger.Info("fetched partition", "year", ym.Year, "month", ym.Month, "records", len(inputs))
	}

	undated, err := FetchNullDatePartition(ctx, client, alias)
	if err != nil {
		return summary, err
	}
	if len(undated) > 0 {
		corpus = append(corpus, undated...)
		summary.PartitionsProcessed++
		logger.Info("fetched undated partition", "records", len(undated))
	}

	outcomes, firstInstance := ClassifyPass1(corpus)
	outcomes = ClassifyPass2(corpus, outcomes, firstInstance)
	groups := GroupUpdates(outcomes)

	if err := ApplyUpdates(ctx, client, groups); err != nil {
		return summary, err
	}

	summary.RecordsClassified = len(corpus)
	summary.UpdateGroups = len(groups)
	logger.Info("classification complete", "records", summary.RecordsClassified, "update_groups", summary.UpdateGroups)

	return summary, nil
}
