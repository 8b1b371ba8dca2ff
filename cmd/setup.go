package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/internal/appconfig"
	"github.com/splitbook/splitbook-services/internal/authn"
	awsclient "github.com/splitbook/splitbook-services/internal/aws"
	"github.com/splitbook/splitbook-services/internal/events"
)

var appCfg *appconfig.Config

// commonSetUp sets the log level and loads the config.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
}

// newAuthenticator builds the token strategy selected by auth.mode.
func newAuthenticator(cfg *appconfig.Config) (authn.Authenticator, error) {
	switch cfg.Auth.Mode {
	case appconfig.AuthLocal:
		a, err := authn.NewLocalAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.AllowUnverified)
		if err != nil {
			return nil, err
		}
		if !a.Verifying() {
			log.Warn().Msg("Local auth without a signing secret: token claims are trusted without signature verification")
		}
		return a, nil
	case appconfig.AuthRemote:
		return authn.NewRemoteAuthenticator(cfg.Provider.URL, cfg.Provider.AnonKey, cfg.Store.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// newStore opens the configured backend. mode overrides the configured
// credential mode of the REST backend when set.
func newStore(ctx context.Context, cfg *appconfig.Config, mode db.CredentialMode) (db.Store, error) {
	if cfg.Store.Backend == appconfig.BackendPostgres {
		logger := log.Logger
		store, err := db.NewPostgresStore(cfg.Database.Driver, cfg.Database.Source, cfg.Store.Timeout, &logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	if mode == "" {
		mode = db.CredentialMode(cfg.Store.CredentialMode)
	}

	key := cfg.Provider.AnonKey
	if mode == db.CredentialService {
		var err error
		if key, err = serviceKey(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return db.NewRestStore(cfg.Provider.URL, key, mode, cfg.Store.Timeout), nil
}

// serviceKey returns the elevated key, reading it from Secrets Manager when
// it is not set inline.
func serviceKey(ctx context.Context, cfg *appconfig.Config) (string, error) {
	if cfg.Provider.ServiceKey != "" {
		return cfg.Provider.ServiceKey, nil
	}
	if cfg.Provider.ServiceKeySecretID == "" {
		return "", errors.New("no service key configured")
	}

	awsCfg, err := awsclient.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return "", err
	}
	return awsclient.GetServiceKey(ctx, awsclient.NewSecretsManagerClient(awsCfg), cfg.Provider.ServiceKeySecretID)
}

// newPublisher connects to Pulsar, or discards events when no broker is set.
func newPublisher(cfg *appconfig.Config) (events.Notifier, error) {
	if cfg.Pulsar.URL == "" {
		log.Info().Msg("No Pulsar URL configured, ledger events are discarded")
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewEventPublisher(cfg.Pulsar.URL, cfg.Pulsar.Topic)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
