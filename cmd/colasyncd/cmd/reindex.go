package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/companyindex"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Maintain the company/brand identity tables",
	Long: `reindex registers any company names seen in the corpus with no
existing alias, reconciles brand-slug ownership across all observed brand
names, and merges duplicate companies whose aliases only differ by case.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	logger := log.New("colasyncd.reindex")

	creds, err := config.LoadRemoteCredentials()
	if err != nil {
		return err
	}
	client := remotestore.New(creds)
	logger.Info("starting run", "run_id", creds.RunID)
	ctx := context.Background()

	newCompanies, err := companyindex.DiscoverNewCompanies(ctx, client)
	if err != nil {
		return err
	}
	if err := companyindex.RegisterNewCompanies(ctx, client, newCompanies); err != nil {
		return err
	}
	logger.Info("registered new companies", "count", len(newCompanies))

	brands, err := companyindex.DiscoverBrandObservations(ctx, client)
	if err != nil {
		return err
	}
	if err := companyindex.ReconcileBrandSlugs(ctx, client, brands); err != nil {
		return err
	}
	logger.Info("reconciled brand slugs", "observations", len(brands))

	mergeSummary, err := companyindex.MergeDuplicateCompanies(ctx, client)
	if err != nil {
		return err
	}

	fmt.Printf("reindex complete: %d new companies, %d brand observations, %d duplicate groups examined, %d aliases rewritten\n",
		len(newCompanies), len(brands), mergeSummary.GroupsExamined, mergeSummary.AliasesRewritten)
	return nil
}
