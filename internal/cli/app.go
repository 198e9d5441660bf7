package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cecil-the-coder/ai-contingency/pkg/attemptlog"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/factory"
	"github.com/cecil-the-coder/ai-contingency/pkg/monitor"
	"github.com/cecil-the-coder/ai-contingency/pkg/registry"
)

// MemoryDB selects the in-memory attempt log instead of SQLite.
const MemoryDB = ":memory:"

// Config is the application configuration, decoded by viper from the config file,
// CONTINGENCY_* environment variables and flags.
type Config struct {
	ProvidersFile string                     `mapstructure:"providers_file"`
	DBPath        string                     `mapstructure:"db_path"`
	Log           backendtypes.LoggingConfig `mapstructure:"log"`
	Server        backendtypes.ServerConfig  `mapstructure:"server"`
	Auth          backendtypes.AuthConfig    `mapstructure:"auth"`
	CORS          backendtypes.CORSConfig    `mapstructure:"cors"`
	Monitor       MonitorConfig              `mapstructure:"monitor"`
}

type MonitorConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Schedule      string        `mapstructure:"schedule"`
	Retention     time.Duration `mapstructure:"retention"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

// Backend returns the HTTP server part of the configuration.
func (c Config) Backend() backendtypes.BackendConfig {
	return backendtypes.BackendConfig{
		Server:  c.Server,
		Auth:    c.Auth,
		Logging: c.Log,
		CORS:    c.CORS,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("providers_file", "providers.yaml")
	v.SetDefault("db_path", "contingency.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", backendtypes.DefaultPort)
	v.SetDefault("server.version", Version)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.shutdown_timeout", backendtypes.DefaultShutdownTimeout.String())

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_password", "")
	v.SetDefault("auth.api_key_env", "CONTINGENCY_API_KEY")
	v.SetDefault("auth.public_paths", []string{"/health"})

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allowed_methods", []string{})
	v.SetDefault("cors.allowed_headers", []string{})

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.schedule", monitor.DefaultSchedule)
	v.SetDefault("monitor.retention", "720h")
	v.SetDefault("monitor.prune_schedule", "@hourly")
}

// dispatcherOverrides applies dispatcher.* keys on top of the registry file's settings.
func dispatcherOverrides(v *viper.Viper, cfg contingency.Config) contingency.Config {
	if v.IsSet("dispatcher.max_retries_per_provider") {
		cfg.MaxRetriesPerProvider = v.GetInt("dispatcher.max_retries_per_provider")
	}
	if v.IsSet("dispatcher.retry_delay") {
		cfg.RetryDelay = v.GetDuration("dispatcher.retry_delay")
	}
	if v.IsSet("dispatcher.max_retry_delay") {
		cfg.MaxRetryDelay = v.GetDuration("dispatcher.max_retry_delay")
	}
	if v.IsSet("dispatcher.provider_timeout") {
		cfg.ProviderTimeout = v.GetDuration("dispatcher.provider_timeout")
	}
	if v.IsSet("dispatcher.health_check_parallelism") {
		cfg.HealthCheckParallelism = v.GetInt("dispatcher.health_check_parallelism")
	}
	return cfg
}

// NewLogger builds the process logger from the logging configuration.
func NewLogger(cfg backendtypes.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or text", cfg.Format)
	}
	return logger, nil
}

// app is the wired application shared by every subcommand.
type app struct {
	cfg        Config
	logger     *logrus.Logger
	registry   *registry.Registry
	sink       attemptlog.Sink
	dispatcher *contingency.Dispatcher
}

// loadApp decodes the configuration and builds logger, registry, attempt log and
// dispatcher. Callers must close the returned app.
func (o *RootOptions) loadApp(ctx context.Context, logOut io.Writer) (*app, error) {
	var cfg Config
	if err := o.v.Unmarshal(&cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	fac := factory.NewInvokerFactory()
	factory.RegisterDefaultInvokers(fac)

	reg, err := registry.Load(ctx, cfg.ProvidersFile, fac, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load providers", err)
	}
	dcfg := dispatcherOverrides(o.v, reg.Config())

	sink, err := openSink(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open attempt log", err)
	}

	d := contingency.NewDispatcher(dcfg, sink, contingency.WithLogger(logger))

	logger.WithFields(logrus.Fields{
		"event":     "app_loaded",
		"providers": len(reg.Providers()),
		"db":        cfg.DBPath,
	}).Debug("Application loaded")

	return &app{
		cfg:        cfg,
		logger:     logger,
		registry:   registry.New(dcfg, reg.Providers()),
		sink:       sink,
		dispatcher: d,
	}, nil
}

func openSink(dbPath string) (attemptlog.Sink, error) {
	if dbPath == MemoryDB {
		return attemptlog.NewMemoryLog(), nil
	}
	sink, err := attemptlog.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

func (a *app) Close() error {
	return a.sink.Close()
}
