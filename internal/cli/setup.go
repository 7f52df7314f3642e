package cli

import (
	"fmt"
	"time"

	"github.com/evently-dev/evently/internal/cli/auth"
	"github.com/evently-dev/evently/internal/cli/client"
	"github.com/evently-dev/evently/internal/cli/commands"
	"github.com/evently-dev/evently/internal/cli/gateway"
	"github.com/evently-dev/evently/internal/cli/session"
	"github.com/evently-dev/evently/internal/config"
	"github.com/evently-dev/evently/internal/logger"
)

// options are the global flags; set ones win over config and environment
type options struct {
	configPath string
	baseURL    string
	storage    string
	logLevel   string
	output     string
	timeout    time.Duration
	timeoutSet bool
}

func (o *options) apply(cfg *config.Config) error {
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.storage != "" {
		cfg.Storage.Backend = o.storage
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.timeoutSet {
		cfg.Timeout = o.timeout
	}
	return cfg.Validate()
}

// setup loads configuration and wires the credential store, gateway, session
// and API client into app. Offline commands only get the configuration.
func (o *options) setup(app *commands.App, offline bool) error {
	if app.ConfigPath == "" {
		app.ConfigPath = o.configPath
	}

	if app.Config == nil {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			if !offline {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// A broken file must not lock the user out of fixing it
			cfg = config.Default()
		}
		if err := o.apply(cfg); err != nil {
			return err
		}
		app.Config = cfg
		app.Logger = logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	}

	if offline || (app.Session != nil && app.API != nil) {
		return nil
	}

	cfg := app.Config
	log := app.Logger

	if app.Creds == nil {
		creds, err := openCredentialStore(app, cfg)
		if err != nil {
			return err
		}
		app.Creds = creds
	}

	gw, err := gateway.New(cfg.BaseURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(log.With().Str("component", "gateway").Logger()),
		gateway.WithInterceptors(
			gateway.RequestID(),
			gateway.UserAgent("evently-cli/"+app.Version),
			gateway.BearerToken(app.Creds),
		),
	)
	if err != nil {
		return err
	}

	app.Session = session.New(gw, app.Creds, log)
	app.API = client.New(gw)

	log.Debug().
		Str("base_url", gw.BaseURL()).
		Str("storage", cfg.Storage.Backend).
		Dur("timeout", cfg.Timeout).
		Msg("CLI initialized")

	return nil
}

func openCredentialStore(app *commands.App, cfg *config.Config) (auth.CredentialStore, error) {
	scope := auth.Scope(cfg.BaseURL)

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return auth.NewMemoryStore(), nil
	case config.StorageFile:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		store, err := auth.OpenSQLiteStore(path, scope)
		if err != nil {
			return nil, err
		}
		app.AddCloser(store)
		return store, nil
	default:
		return auth.NewKeyringStore(scope), nil
	}
}
