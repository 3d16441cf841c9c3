package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/classify"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run the chronological classification pass over the remote corpus",
	Long: `classify streams every (year, month) partition in ascending order,
assigns each record its first-observation signal (NEW_COMPANY, NEW_BRAND,
NEW_SKU, REFILE, or LEGACY), and writes the results back in batched
updates.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	logger := log.New("colasyncd.classify")

	creds, err := config.LoadRemoteCredentials()
	if err != nil {
		return err
	}
	client := remotestore.New(creds)
	logger.Info("starting run", "run_id", creds.RunID)

	summary, err := classify.Run(context.Background(), logger, client)
	if err != nil {
		return err
	}

	fmt.Printf("classification complete: %d partitions, %d records, %d update groups\n",
		summary.PartitionsProcessed, summary.RecordsClassified, summary.UpdateGroups)
	return nil
}
