package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/merge"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
)

var (
	mergeDataDir  string
	mergeWorkers  []string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Consolidate worker-local stores into the shared store",
	Long: `merge reads every named worker's SQLite store and writes the union
of their links and records into <data-dir>/consolidated.db, resolving
conflicting ttb_id rows by first-writer-wins across the given worker order.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeDataDir, "data-dir", "./data", "directory holding worker-local SQLite stores")
	mergeCmd.Flags().StringSliceVar(&mergeWorkers, "workers", nil, "worker names to merge, in first-writer-wins priority order")
}

func runMerge(cmd *cobra.Command, args []string) error {
	logger := log.New("colasyncd.merge")

	dest, err := localstore.Open(filepath.Join(mergeDataDir, "consolidated.db"))
	if err != nil {
		return err
	}
	defer dest.Close()

	workerPaths := make([]string, 0, len(mergeWorkers))
	for _, w := range mergeWorkers {
		workerPaths = append(workerPaths, filepath.Join(mergeDataDir, w+".db"))
	}

	summary, err := merge.ConsolidateStores(context.Background(), logger, dest, workerPaths)
	if err != nil {
		return err
	}

	logger.Info("merge complete",
		"workers_merged", summary.WorkersMerged,
		"links_inserted", summary.LinksInserted,
		"records_merged", summary.RecordsMerged,
		"records_skipped", summary.RecordsSkipped)
	return nil
}
