package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ferux/pushcenter/internal/netstate"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/registry"
)

func newWatchCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the expiry sweep and the relay reachability monitor until interrupted.",
		Long: `Run the expiry sweep and the relay reachability monitor until interrupted.

The data file is opened only while a sweep runs, so other commands can be used
alongside watch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)

			subs := pubsub.New()
			subs.Subscribe(pubsub.TopicReachability, func(args ...interface{}) {
				if len(args) == 0 {
					return
				}

				reachable, _ := args[0].(bool)
				logger.Info().Bool("reachable", reachable).Msg("relay reachability changed")
			})

			monitor := netstate.NewMonitor(newRelay(cfg, logger), cfg.Reachability.Interval.Std(), subs, logger)

			var wg sync.WaitGroup
			wg.Add(1)

			go func() {
				defer wg.Done()
				monitor.Run(ctx)
			}()

			logger.Info().Msg("watching")
			sweepEvery(ctx, gf, cfg.SweepInterval.Std(), logger)
			wg.Wait()
			logger.Info().Msg("stopped")

			return nil
		},
	}
}

// sweepEvery runs sweep immediately and then every interval until ctx is done.
func sweepEvery(ctx context.Context, gf *globalFlags, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = registry.DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := sweep(ctx, gf); err != nil {
			logger.Error().Err(err).Msg("sweeping devices")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweep loads the current state, recomputes expiry and releases the data file.
func sweep(ctx context.Context, gf *globalFlags) error {
	a, err := newApp(ctx, gf)
	if err != nil {
		return err
	}
	defer a.Close()

	a.registry.RecomputeExpiry(ctx)

	return nil
}
