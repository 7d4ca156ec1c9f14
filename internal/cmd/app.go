package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/getsentry/raven-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"

	"github.com/ferux/pushcenter"
	"github.com/ferux/pushcenter/internal/alert"
	"github.com/ferux/pushcenter/internal/config"
	"github.com/ferux/pushcenter/internal/conntest"
	"github.com/ferux/pushcenter/internal/dispatch"
	"github.com/ferux/pushcenter/internal/netstate"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/registry"
	"github.com/ferux/pushcenter/internal/relay"
	"github.com/ferux/pushcenter/internal/settings"
	"github.com/ferux/pushcenter/internal/state"
	"github.com/ferux/pushcenter/internal/storage"
	"github.com/ferux/pushcenter/internal/telegram"
)

const defaultConfigPath = "./config.json"

type globalFlags struct {
	configPath string
	dataFile   string
	debug      bool
	ephemeral  bool
}

// app is the wired core used by every command.
type app struct {
	cfg    config.Application
	logger zerolog.Logger
	db     *bbolt.DB

	subs       *pubsub.Core
	holder     *state.Holder
	relay      *relay.Client
	registry   *registry.Registry
	settings   *settings.Store
	dispatcher *dispatch.Dispatcher
	tester     *conntest.Tester
}

func loadConfig(gf *globalFlags) (config.Application, error) {
	cfg, err := config.Parse(gf.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && gf.configPath == defaultConfigPath:
		cfg = config.Default()
	default:
		return config.Application{}, fmt.Errorf("parsing config file: %w", err)
	}

	if gf.dataFile != "" {
		cfg.DataFile = gf.dataFile
	}

	if gf.debug {
		cfg.Debug = true
	}

	return cfg, nil
}

func newLogger(cfg config.Application) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func newRelay(cfg config.Application, logger zerolog.Logger) *relay.Client {
	return relay.New(relay.Config{
		BaseURL: cfg.Relay.BaseURL,
		Timeout: cfg.Relay.Timeout.Std(),
	}, nil, logger)
}

func newApp(ctx context.Context, gf *globalFlags) (*app, error) {
	cfg, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: newLogger(cfg), subs: pubsub.New()}

	var store storage.Store
	if gf.ephemeral {
		store = storage.NewMemory(a.logger)
	} else {
		a.db, err = storage.Open(cfg.DataFile)
		if err != nil {
			return nil, err
		}

		store, err = storage.NewBolt(a.db, a.logger)
		if err != nil {
			_ = a.db.Close()
			return nil, err
		}
	}

	online := netstate.Interfaces{}

	a.holder = state.New(ctx, store, a.logger)
	a.relay = newRelay(cfg, a.logger)
	a.registry = registry.New(ctx, a.holder, a.relay, online, a.logger, registry.WithPubSub(a.subs))
	a.settings = settings.New(a.holder, cfg.MessageGroups, a.logger)
	a.dispatcher = dispatch.New(a.holder, a.relay, a.settings, online, a.logger, dispatch.WithPubSub(a.subs))
	a.tester = conntest.New(a.holder, a.relay, a.subs, a.logger)

	var reporter alert.Reporter
	if cfg.SentryDSN != "" {
		ravenClient, err := raven.New(cfg.SentryDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating sentry client: %w", err)
		}

		ravenClient.SetRelease(pushcenter.Revision)
		ravenClient.SetEnvironment(pushcenter.Env)
		reporter = ravenClient
	}

	alert.Wire(a.subs, telegram.New(cfg.NotifyTelegram, nil, a.logger), reporter, a.logger)

	a.logger.
		Debug().
		Str("rev", pushcenter.Revision).
		Str("branch", pushcenter.Branch).
		Str("data_file", cfg.DataFile).
		Str("relay", a.relay.BaseURL()).
		Msg("core initialized")

	return a, nil
}

// Close releases the database.
func (a *app) Close() {
	if a.db == nil {
		return
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error().Err(err).Msg("closing database")
	}
}

type runFunc func(cmd *cobra.Command, args []string, a *app) error

// withApp wires the core for the duration of a command.
func withApp(gf *globalFlags, fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), gf)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}
