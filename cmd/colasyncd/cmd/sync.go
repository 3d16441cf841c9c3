package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/localstore"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
	"github.com/bevalc-intelligence/cola-engine/internal/sync"
)

var (
	syncDataDir   string
	syncFull      bool
	syncChunkSize int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload the consolidated local store to the remote database",
	Long: `sync uploads <data-dir>/consolidated.db to the remote database,
either as a full schema reset (--full) or as an incremental, idempotent
INSERT OR IGNORE upload safe to run repeatedly.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncDataDir, "data-dir", "./data", "directory holding the consolidated SQLite store")
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "drop and recreate the remote schema before uploading")
	syncCmd.Flags().IntVar(&syncChunkSize, "chunk-size", remotestore.IncrementalSyncMinChunk, "statements per incremental-sync HTTP call")
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := log.New("colasyncd.sync")

	creds, err := config.LoadRemoteCredentials()
	if err != nil {
		return err
	}
	client := remotestore.New(creds)
	logger.Info("starting run", "run_id", creds.RunID)

	local, err := localstore.Open(filepath.Join(syncDataDir, "consolidated.db"))
	if err != nil {
		return err
	}
	defer local.Close()

	ctx := context.Background()
	var summary sync.Summary
	if syncFull {
		summary, err = sync.FullSync(ctx, logger, local, client)
	} else {
		summary, err = sync.IncrementalSync(ctx, logger, local, client, syncChunkSize)
	}
	if err != nil {
		return err
	}

	fmt.Printf("sync complete: %d records, %d statements, %d batches\n",
		summary.RecordsSeen, summary.StatementsSent, summary.BatchesSent)
	return nil
}
