package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/platform/log"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [name]",
	Short: "Apply remote schema migrations",
	Long: `migrate ensures the base schema exists, then applies each named
schema migration in order, verifying it with the migration's own
null-count check before moving to the next. With a migration name it
applies only that one, so a single backfill can be re-run in isolation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := log.New("colasyncd.migrate")

	creds, err := config.LoadRemoteCredentials()
	if err != nil {
		return err
	}
	client := remotestore.New(creds)
	logger.Info("starting run", "run_id", creds.RunID)
	ctx := context.Background()

	if err := client.EnsureSchema(ctx); err != nil {
		return err
	}

	migrations := remotestore.Migrations()
	if len(args) == 1 {
		selected := migrations[:0:0]
		for _, m := range migrations {
			if m.Name == args[0] {
				selected = append(selected, m)
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("unknown migration %q", args[0])
		}
		migrations = selected
	}

	for _, m := range migrations {
		verifyCount, err := client.RunMigration(ctx, m)
		if err != nil {
			return err
		}
		logger.Info("migration applied", "name", m.Name, "verify_count", verifyCount)
		fmt.Printf("%s: verify count %d\n", m.Name, verifyCount)
	}
	return nil
}
