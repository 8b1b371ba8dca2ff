package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/internal/appconfig"
	"github.com/splitbook/splitbook-services/internal/authn"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the store and the identity provider are reachable",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())
		failed := false

		store, err := newStore(ctx, appCfg, "")
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize store")
			os.Exit(1)
		}
		ledger := db.NewLedgerDB(store)
		defer ledger.Close()

		if err := ledger.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("Store is not reachable")
			cmd.Printf("store: FAIL (%v)\n", err)
			failed = true
		} else {
			cmd.Println("store: OK")
		}

		if appCfg.Auth.Mode == appconfig.AuthRemote {
			identity := authn.NewRemoteAuthenticator(appCfg.Provider.URL, appCfg.Provider.AnonKey, appCfg.Store.Timeout)
			if err := identity.Ping(ctx); err != nil {
				log.Error().Err(err).Msg("Identity provider is not reachable")
				cmd.Printf("identity: FAIL (%v)\n", err)
				failed = true
			} else {
				cmd.Println("identity: OK")
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
