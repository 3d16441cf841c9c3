// Package merge consolidates the per-worker local stores produced by
// parallel acquisition workers into a single consolidated store, by
// insert-or-ignore on ttb_id: the first writer for a given key wins.
package merge

import (
	"context"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"
)

// Summary reports what a merge run did.
type Summary struct {
	WorkersMerged  int
	LinksInserted  int
	RecordsMerged  int
	RecordsSkipped int
}

// ConsolidateStores merges every worker store in workerPaths into dest,
// which must already be open. Record merge is first-writer-wins: a ttb_id
// already present in dest is left untouched.
func ConsolidateStores(ctx context.Context, logger *log.Logger, dest *localstore.Store, workerPaths []string) (Summary, error) {
	var summary Summary

	for _, path := range workerPaths {
		worker, err := localstore.Open(path)
		if err != nil {
			return summary, coreerror.Wrap(err, "failed to open worker store for merge").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("merge.ConsolidateStores").
				WithDetail("path", path)
		}

		links, records, skipped, err := mergeOne(ctx, dest, worker)
		worker.Close()
		if err != nil {
			return summary, coreerror.Wrap(err, "failed to merge worker store").
				WithCode(coreerror.CodeDatabaseError).
				WithOperation("merge.ConsolidateStores").
				WithDetail("path", path)
		}

		summary.WorkersMerged++
		summary.LinksInserted += links
		summary.RecordsMerged += records
		summary.RecordsSkipped += skipped
		logger.Info("merged worker store", "path", path, "links_inserted", links, "records_merged", records, "records_skipped", skipped)
	}

	reconciled, err := dest.ReconcileScrapedFlags(ctx)
	if err != nil {
		return summary, coreerror.Wrap(err, "failed to reconcile scraped flags after merge").
			WithCode(coreerror.CodeDatabaseError).WithOperation("merge.ConsolidateStores")
	}
	if reconciled > 0 {
		logger.Info("reconciled scraped flags", "links", reconciled)
	}

	return summary, nil
}

func mergeOne(ctx context.Context, dest, worker *localstore.Store) (linksInserted, recordsMerged, recordsSkipped int, err error) {
	links, err := worker.AllLinks(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(links) > 0 {
		linksInserted, err = dest.InsertLinks(ctx, links)
		if err != nil {
			return 0, 0, 0, err
		}
	}

	workerRecords, err := worker.AllRecords(ctx)
	if err != nil {
		return linksInserted, 0, 0, err
	}

	existing, err := dest.AllRecords(ctx)
	if err != nil {
		return linksInserted, 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.TTBID] = true
	}

	toInsert := slicex.Filter(workerRecords, func(r *record.Record) bool { return !seen[r.TTBID] })
	recordsSkipped = len(workerRecords) - len(toInsert)
	for _, r := range toInsert {
		if err := dest.UpsertRecordAndMarkScraped(ctx, r); err != nil {
			return linksInserted, recordsMerged, recordsSkipped, err
		}
		recordsMerged++
	}

	return linksInserted, recordsMerged, recordsSkipped, nil
}
