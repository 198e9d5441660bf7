// Package cli implements the contingency command line: one-shot dispatches, provider
// tests, usage statistics and the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported by the server's /health endpoint.
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Format     string // "json" | "text"

	v *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the contingency CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: newViper()}

	cmd := &cobra.Command{
		Use:   "contingency",
		Short: "Ordered AI provider fallback with retries",
		Long: `contingency sends AI requests through an ordered list of providers.

Each provider is retried with linear backoff before the next one is tried, every
attempt is recorded, and usage statistics are computed from the attempt log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.readConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "application config file (yaml or toml)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.String("providers", "providers.yaml", "provider registry file")
	flags.String("db", "contingency.db", "attempt log SQLite database, or :memory:")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")

	_ = opts.v.BindPFlag("providers_file", flags.Lookup("providers"))
	_ = opts.v.BindPFlag("db_path", flags.Lookup("db"))
	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))

	cmd.AddCommand(NewDispatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewProvidersCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// readConfig loads --config, or ./contingency.{yaml,toml} when present.
func (o *RootOptions) readConfig() error {
	if o.ConfigFile != "" {
		o.v.SetConfigFile(o.ConfigFile)
		if err := o.v.ReadInConfig(); err != nil {
			return WrapExitError(ExitCommandError, "failed to read config", err)
		}
		return nil
	}

	o.v.SetConfigName("contingency")
	o.v.AddConfigPath(".")
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "failed to read config", err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CONTINGENCY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// ExecuteContext runs cmd with a context that ends on SIGINT or SIGTERM. An
// interrupted dispatch stops waiting and still writes its attempts to the log.
func ExecuteContext(ctx context.Context, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd.ExecuteContext(ctx)
}
