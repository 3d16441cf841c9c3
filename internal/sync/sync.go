// Package sync exports the consolidated local record store to the remote
// database, either as a full schema reset or as an incremental,
// insert-or-ignore upload of whatever the local store currently holds.
package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// Summary reports what a sync run did, for the end-of-run status block.
type Summary struct {
	RecordsSeen    int
	StatementsSent int
	BatchesSent    int
}

// FullSync drops and recreates the remote schema, then uploads every record
// in the local store in chunks of remotestore.FullSyncChunkSize.
func FullSync(ctx context.Context, logger *log.Logger, local *localstore.Store, client *remotestore.Client) (Summary, error) {
	var summary Summary

	if err := dropAndCreate(ctx, client); err != nil {
		return summary, err
	}

	records, err := local.AllRecords(ctx)
	if err != nil {
		return summary, coreerror.Wrap(err, "failed to read local records for full sync").
			WithCode(coreerror.CodeDatabaseError).WithOperation("sync.FullSync")
	}

	for _, chunk := range remotestore.Chunk(records, remotestore.FullSyncChunkSize) {
		stmts := make([]remotestore.Statement, 0, len(chunk))
		for _, r := range chunk {
			stmts = append(stmts, insertStatement(r))
		}
		if _, err := client.ExecBatch(ctx, stmts); err != nil {
			return summary, coreerror.Wrap(err, "failed to upload full-sync chunk").
				WithCode(coreerror.CodeDatabaseError).WithOperation("sync.FullSync")
		}
		summary.BatchesSent++
		summary.StatementsSent += len(stmts)
		summary.RecordsSeen += len(chunk)
		logger.Info("uploaded full-sync chunk", "records", len(chunk), "total_so_far", summary.RecordsSeen)
	}

	return summary, nil
}

func dropAndCreate(ctx context.Context, client *remotestore.Client) error {
	_, err := client.ExecBatch(ctx, []remotestore.Statement{
		{SQL: `DROP TABLE IF EXISTS records`},
	})
	if err != nil {
		return coreerror.Wrap(err, "failed to drop remote records table").
			WithCode(coreerror.CodeDatabaseError).WithOperation("sync.dropAndCreate")
	}
	if err := client.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = client.ExecBatch(ctx, []remotestore.Statement{
		{SQL: `CREATE INDEX IF NOT EXISTS idx_records_year_month_day ON records(year, month, day)`},
		{SQL: `CREATE INDEX IF NOT EXISTS idx_records_year_month ON records(year, month)`},
		{SQL: `CREATE INDEX IF NOT EXISTS idx_records_approval_date ON records(approval_date)`},
		{SQL: `CREATE INDEX IF NOT EXISTS idx_records_ttb_id ON records(ttb_id)`},
	})
	if err != nil {
		return coreerror.Wrap(err, "failed to create remote indexes").
			WithCode(coreerror.CodeDatabaseError).WithOperation("sync.dropAndCreate")
	}
	return nil
}

// IncrementalSync uploads every record in the local store via INSERT OR
// IGNORE, batched at between remotestore.IncrementalSyncMinChunk and
// remotestore.IncrementalSyncMaxChunk statements per HTTP call. Because the
// insert is keyed by ttb_id and ignores conflicts, running this twice against
// an unchanged local store produces the same remote row count both times.
func IncrementalSync(ctx context.Context, logger *log.Logger, local *localstore.Store, client *remotestore.Client, chunkSize int) (Summary, error) {
	var summary Summary
	if chunkSize < remotestore.IncrementalSyncMinChunk {
		chunkSize = remotestore.IncrementalSyncMinChunk
	}
	if chunkSize > remotestore.IncrementalSyncMaxChunk {
		chunkSize = remotestore.IncrementalSyncMaxChunk
	}

	if err := client.EnsureSchema(ctx); err != nil {
		return summary, err
	}

	records, err := local.AllRecords(ctx)
	if err != nil {
		return summary, coreerror.Wrap(err, "failed to read local records for incremental sync").
			WithCode(coreerror.CodeDatabaseError).WithOperation("sync.IncrementalSync")
	}

	for _, chunk := range remotestore.Chunk(records, chunkSize) {
		stmts := make([]remotestore.Statement, 0, len(chunk))
		for _, r := range chunk {
			stmts = append(stmts, insertOrIgnoreStatement(r))
		}
		if _, err := client.ExecBatch(ctx, stmts); err != nil {
			return summary, coreerror.Wrap(err, "failed to upload incremental-sync batch").
				WithCode(coreerror.CodeDatabaseError).WithOperation("sync.IncrementalSync")
		}
		summary.BatchesSent++
		summary.StatementsSent += len(stmts)
		summary.RecordsSeen += len(chunk)
	}
	logger.Info("incremental sync complete", "records", summary.RecordsSeen, "batches", summary.BatchesSent)

	return summary, nil
}

func insertStatement(r *record.Record) remotestore.Statement {
	return remotestore.Statement{SQL: insertSQL("INSERT", r)}
}

func insertOrIgnoreStatement(r *record.Record) remotestore.Statement {
	return remotestore.Statement{SQL: insertSQL("INSERT OR IGNORE", r)}
}

// insertSQL renders one record as a complete insert statement with every
// value inlined, since batched requests carry many statements in a single
// SQL string and cannot use parameter binding.
func insertSQL(verb string, r *record.Record) string {
	values := []interface{}{
		r.TTBID, r.SerialNumber, r.VendorCode, r.Status, r.ClassTypeCode, r.OriginCode,
		r.TypeOfApplication, r.BrandName, r.FancifulName, r.Qualifications, r.Formula,
		r.ForSaleIn, r.TotalBottleCapacity, r.GrapeVarietal, r.WineVintage, r.Appellation,
		r.AlcoholContent, r.PHLevel, r.CompanyName, r.PlantRegistry, r.Street, r.State,
		r.ContactPerson, r.PhoneNumber, r.ApprovalDate, r.Year, r.Month, r.Day,
		string(r.Signal), r.RefileCount, r.Category,
	}
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = remotestore.Literal(v)
	}
	return fmt.Sprintf(`%s INTO records (
		ttb_id, serial_number, vendor_code, status, class_type_code, origin_code,
		type_of_application, brand_name, fanciful_name, qualifications, formula,
		for_sale_in, total_bottle_capacity, grape_varietal, wine_vintage, appellation,
		alcohol_content, ph_level, company_name, plant_registry, street, state,
		contact_person, phone_number, approval_date, year, month, day, signal,
		refile_count, category
	) VALUES (%s)`, verb, strings.Join(rendered, ","))
}
