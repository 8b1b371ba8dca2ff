package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/splitbook/splitbook-services/db"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job creates the groups and expenses tables of the postgres backend by running goose migrations.`,
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		if appCfg.Database.Source == "" {
			log.Fatal().Msg("database.source must be set to run migrations")
		}

		logger := log.Logger
		store, err := db.NewPostgresStore(appCfg.Database.Driver, appCfg.Database.Source, appCfg.Store.Timeout, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer store.Close()

		// Run the migrations
		log.Info().Msgf("Running migrations...")
		if err := store.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
