package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/splitbook/splitbook-services/db"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Delete expenses whose group no longer exists",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())

		// every row must be visible, so use the elevated key
		store, err := newStore(ctx, appCfg, db.CredentialService)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize store")
		}
		ledger := db.NewLedgerDB(store)
		defer ledger.Close()

		log.Info().Msg("Starting reconciliation process...")

		removed, err := ledger.DeleteOrphanExpenses(ctx)
		if err != nil {
			log.Fatal().Err(err).Int("removed", removed).Msg("Reconciliation failed")
		}

		log.Info().Int("removed", removed).Msg("Reconciliation process completed.")
		cmd.Printf("removed %d orphaned expenses\n", removed)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
