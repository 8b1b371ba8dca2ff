package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/splitbook/splitbook-services/api"
	"github.com/splitbook/splitbook-services/api/services"
	"github.com/splitbook/splitbook-services/db"
)

// @title Splitbook Services API
// @version v1
// @description Expense sharing API: groups and their expenses, owned by the authenticated user.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := newStore(ctx, appCfg, "")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize store")
		}
		ledger := db.NewLedgerDB(store)
		defer ledger.Close()

		authenticator, err := newAuthenticator(appCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize authenticator")
		}

		// Initialize event publisher
		publisher, err := newPublisher(appCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer publisher.Close()

		service := services.NewService(appCfg, ledger, publisher)
		router := api.NewRouter(service, authenticator, api.NewRegistry())

		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           api.WithCORS(router, appCfg.CORS.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
