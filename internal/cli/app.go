package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/0x6d61/scandash/internal/config"
	"github.com/0x6d61/scandash/internal/dashboard"
	"github.com/0x6d61/scandash/internal/logging"
	"github.com/0x6d61/scandash/internal/metrics"
	"github.com/0x6d61/scandash/internal/registry"
)

// flagKeys maps command-line flags onto config keys. Flags a command does
// not define are skipped.
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"log-file":      "log.file",
	"backend":       "registry.backend",
	"addr":          "http.addr",
	"tick-interval": "simulator.tick_interval",
	"settle-delay":  "simulator.settle_delay",
	"refresh":       "refresh.interval",
}

// app is the wired object graph shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	reg     *registry.Registry
	dash    *dashboard.Dashboard
}

// bindFlags binds every flag in fs that has a config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := flagKeys[f.Name]
		if key == "" || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// loadConfig resolves the configuration for cmd: .env files, defaults, the
// config file, SCANDASH_* variables and finally the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if noSeed, _ := cmd.Flags().GetBool("no-seed"); noSeed {
		v.Set("registry.seed", false)
	}
	if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); noMetrics {
		v.Set("metrics.enabled", false)
	}
	file, _ := cmd.Flags().GetString("config")
	return config.Load(v, file)
}

// newApp loads configuration and wires logger, metrics, registry and
// dashboard. The caller must call close.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	regOpts := []registry.Option{registry.WithLogger(logger.Logger)}
	if cfg.Metrics.Enabled {
		runtime, _ := cmd.Flags().GetBool("runtime-stats")
		a.metrics = metrics.New(runtime)
		regOpts = append(regOpts, registry.WithChangeHook(a.metrics.SetScanCount))
	}

	a.reg, err = registry.Open(cfg.Registry.Backend, regOpts...)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	if cfg.Registry.Seed {
		if err := a.seed(cmd.Context()); err != nil {
			a.close()
			return nil, err
		}
	}

	dashOpts := []dashboard.Option{
		dashboard.WithLogger(logger.Logger),
		dashboard.WithSimulatorTimings(cfg.Simulator.TickInterval, cfg.Simulator.SettleDelay),
		dashboard.WithSessionTTL(cfg.Sessions.TTL),
	}
	if a.metrics != nil {
		dashOpts = append(dashOpts, dashboard.WithObserver(a.metrics))
	}
	a.dash = dashboard.New(a.reg, dashOpts...)

	logger.Debug("scandash ready",
		"backend", cfg.Registry.Backend,
		"seeded", cfg.Registry.Seed,
		"metrics", cfg.Metrics.Enabled)
	return a, nil
}

func (a *app) seed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scans, err := registry.DefaultSeed()
	if err != nil {
		return err
	}
	return registry.Seed(ctx, a.reg, scans)
}

// close disposes running sessions and releases the registry and log sink.
func (a *app) close() {
	if a.dash != nil {
		a.dash.Close()
	}
	if a.reg != nil {
		if err := a.reg.Close(); err != nil {
			a.logger.Warn("registry close failed", "error", err)
		}
	}
	_ = a.logger.Close()
}
