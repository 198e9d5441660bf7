package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cecil-the-coder/ai-contingency/pkg/backend"
	"github.com/cecil-the-coder/ai-contingency/pkg/monitor"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the dispatch, provider and stats endpoints over HTTP.

Unless monitor.enabled is false, providers are health-checked on monitor.schedule
and attempt records older than monitor.retention are pruned. SIGINT or SIGTERM
shut the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := rootOpts.loadApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []backend.Option{backend.WithLogger(a.logger)}
			if a.cfg.Monitor.Enabled {
				mon, err := a.startMonitor(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to start monitor", err)
				}
				defer mon.Stop()
				opts = append(opts, backend.WithMonitor(mon))
			}

			srv := backend.NewServer(a.cfg.Backend(), a.dispatcher, a.registry, opts...)
			return srv.ListenAndServeWithGracefulShutdown(ctx)
		},
	}
}

func (a *app) startMonitor(ctx context.Context) (*monitor.Monitor, error) {
	mon := monitor.New(a.dispatcher, a.registry.Providers,
		monitor.WithSchedule(a.cfg.Monitor.Schedule),
		monitor.WithRetention(a.sink, a.cfg.Monitor.Retention, a.cfg.Monitor.PruneSchedule),
		monitor.WithLogger(a.logger.WithField("component", "monitor")),
		monitor.WithCallback(func(h monitor.ProviderHealth) {
			if !h.Healthy {
				a.logger.WithFields(logrus.Fields{
					"event":      "provider_unhealthy",
					"provider":   h.ProviderKey,
					"error_type": h.ErrorType,
				}).Warn(h.ErrorMessage)
			}
		}),
	)
	if err := mon.Start(ctx); err != nil {
		return nil, err
	}

	go mon.Sweep(ctx)
	return mon, nil
}
