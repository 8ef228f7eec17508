package bwboot

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// BuildMode distinguishes development builds from release builds.
type BuildMode string

const (
	BuildRelease BuildMode = "release"
	BuildDebug   BuildMode = "debug"
)

// ParseBuildMode parses a build mode name. The empty string means release.
func ParseBuildMode(s string) (BuildMode, error) {
	switch BuildMode(s) {
	case "", BuildRelease:
		return BuildRelease, nil
	case BuildDebug:
		return BuildDebug, nil
	default:
		return "", configErrorf("build mode", "unsupported build mode %q (supported: release, debug)", s)
	}
}

// Options parameterize Configure.
type Options struct {
	// BuildMode gates tracing: debug builds switch it off again after setup.
	BuildMode BuildMode
	// Dir is where the settings file is looked up. Empty means the working directory.
	Dir string
	// LogOutput receives the JSON log lines. Nil means stdout.
	LogOutput io.Writer
}

// Container holds the process-wide services. It is built once by Configure and never
// modified afterwards.
type Container struct {
	Config        *Config
	Logger        *Logger
	KeyValueStore KeyValueStore
	EventBus      EventBus
	Tracing       *Tracing
}

// Configure builds the Container. Any failure aborts startup and is returned as is.
func Configure(ctx context.Context, opts Options) (*Container, error) {
	cfg, err := BuildConfiguration(opts.Dir)
	if err != nil {
		return nil, err
	}

	logger := CreateLogger(opts.LogOutput)

	env, err := ParseEnv()
	if err != nil {
		return nil, err
	}

	tracing, err := NewTracing(ctx, env)
	if err != nil {
		return nil, err
	}

	awsCfg, err := NewAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	tracing.Instrument(&awsCfg)

	kv, err := NewKeyValueStoreClient(awsCfg, env)
	if err != nil {
		return nil, err
	}
	bus, err := NewEventBusClient(awsCfg, env)
	if err != nil {
		return nil, err
	}

	mode := opts.BuildMode
	if mode == "" {
		mode = BuildRelease
	}

	tracing.Enable()
	if mode == BuildDebug {
		tracing.Disable()
	}

	logger.Zap().Info("service container configured",
		zap.String("region", kv.Options().Region),
		zap.String("build_mode", string(mode)),
		zap.Bool("tracing", tracing.Enabled()),
		zap.Int("config_keys", len(cfg.Keys())),
	)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		KeyValueStore: kv,
		EventBus:      bus,
		Tracing:       tracing,
	}, nil
}

// Module supplies the container's services to an fx application and flushes the
// logger and tracer when the application stops.
func (c *Container) Module() fx.Option {
	return fx.Module("bwboot",
		fx.Supply(c.Config, c.Logger, c.Logger.Zap(), c.Tracing),
		fx.Supply(
			fx.Annotate(c.KeyValueStore, fx.As(new(KeyValueStore))),
			fx.Annotate(c.EventBus, fx.As(new(EventBus))),
		),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					_ = c.Logger.Sync()
					return c.Tracing.Shutdown(ctx)
				},
			})
		}),
	)
}

// FxLogger routes fx lifecycle events through the container's logger.
func (c *Container) FxLogger() fxevent.Logger {
	return &fxevent.ZapLogger{Logger: c.Logger.Zap()}
}
