package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	AuthRemote = "remote"
	AuthLocal  = "local"

	BackendRest     = "rest"
	BackendPostgres = "postgres"

	CredentialAnon    = "anon"
	CredentialService = "service"

	DefaultBasePath = "/api"
	DefaultTimeout  = 5 * time.Second
	MaxTimeout      = 30 * time.Second
)

// Config holds all configuration details
type Config struct {
	Host     string         `yaml:"host"`
	BasePath string         `yaml:"basePath"`
	DocsPath string         `yaml:"docsPath"`
	Provider ProviderConfig `yaml:"provider"`
	Auth     AuthConfig     `yaml:"auth"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Pulsar   PulsarConfig   `yaml:"pulsar"`
	AWS      AWSConfig      `yaml:"aws"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ProviderConfig locates the hosted identity provider and REST store
type ProviderConfig struct {
	URL                string `yaml:"url"`
	AnonKey            string `yaml:"anonKey"`
	ServiceKey         string `yaml:"serviceKey"`
	ServiceKeySecretID string `yaml:"serviceKeySecretId"`
}

// AuthConfig selects how bearer tokens are resolved to users
type AuthConfig struct {
	Mode            string `yaml:"mode"`
	JWTSecret       string `yaml:"jwtSecret"`
	AllowUnverified bool   `yaml:"allowUnverified"`
}

// StoreConfig selects the persistence backend and the key it presents
type StoreConfig struct {
	Backend        string        `yaml:"backend"`
	CredentialMode string        `yaml:"credentialMode"`
	Timeout        time.Duration `yaml:"timeout"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL          string `yaml:"url"`
	Topic        string `yaml:"topic"`
	Subscription string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoadConfig loads, parses and validates the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	config, err := render(tmpl, loadEnvVars())
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Parse renders raw as a config template against env and applies defaults
// without validating.
func Parse(raw string, env map[string]string) (*Config, error) {
	tmpl, err := template.New("config").Parse(raw)
	if err != nil {
		return nil, err
	}
	return render(tmpl, env)
}

func render(tmpl *template.Template, env map[string]string) (*Config, error) {
	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Option("missingkey=zero").Execute(&buf, env); err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	c.BasePath = "/" + strings.Trim(c.BasePath, "/")
	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthRemote
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendRest
	}
	if c.Store.CredentialMode == "" {
		c.Store.CredentialMode = CredentialAnon
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = DefaultTimeout
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Auth.Mode {
	case AuthRemote:
		if c.Provider.URL == "" {
			errs = append(errs, errors.New("provider.url is required for remote auth"))
		}
		if c.Provider.AnonKey == "" {
			errs = append(errs, errors.New("provider.anonKey is required for remote auth"))
		}
	case AuthLocal:
		if c.Auth.JWTSecret == "" && !c.Auth.AllowUnverified {
			errs = append(errs, errors.New("auth.jwtSecret is required unless auth.allowUnverified is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.mode %q", c.Auth.Mode))
	}

	switch c.Store.Backend {
	case BackendRest:
		if c.Provider.URL == "" {
			errs = append(errs, errors.New("provider.url is required for the rest backend"))
		}
		switch c.Store.CredentialMode {
		case CredentialAnon:
			if c.Provider.AnonKey == "" {
				errs = append(errs, errors.New("provider.anonKey is required for anon credentials"))
			}
		case CredentialService:
			if c.Provider.ServiceKey == "" && c.Provider.ServiceKeySecretID == "" {
				errs = append(errs, errors.New("provider.serviceKey or provider.serviceKeySecretId is required for service credentials"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown store.credentialMode %q", c.Store.CredentialMode))
		}
	case BackendPostgres:
		if c.Database.Source == "" {
			errs = append(errs, errors.New("database.source is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	if c.Store.Timeout <= 0 || c.Store.Timeout > MaxTimeout {
		errs = append(errs, fmt.Errorf("store.timeout must be in (0, %s], got %s", MaxTimeout, c.Store.Timeout))
	}

	if c.Pulsar.URL != "" && c.Pulsar.Topic == "" {
		errs = append(errs, errors.New("pulsar.topic is required when pulsar.url is set"))
	}

	return errors.Join(errs...)
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
