package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/internal/events"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer that purges the expenses of deleted groups",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		if appCfg.Pulsar.URL == "" {
			log.Fatal().Msg("pulsar.url must be set to consume events")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = log.Logger.WithContext(ctx)

		// no caller token here, so use the elevated key
		store, err := newStore(ctx, appCfg, db.CredentialService)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize store")
		}
		ledger := db.NewLedgerDB(store)
		defer ledger.Close()

		// Initialize event consumer
		consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.Topic, appCfg.Pulsar.Subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		log.Info().Str("topic", appCfg.Pulsar.Topic).Msg("Waiting for messages...")
		if err := consumer.Run(ctx, events.CascadeHandler(ledger)); err != nil {
			log.Error().Err(err).Msg("Consumer stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
