package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricirt/report-robot/internal/cache"
	"github.com/ricirt/report-robot/internal/config"
	"github.com/ricirt/report-robot/internal/db"
	"github.com/ricirt/report-robot/internal/directory"
	"github.com/ricirt/report-robot/internal/distributor"
	"github.com/ricirt/report-robot/internal/logsink"
	"github.com/ricirt/report-robot/internal/metrics"
	"github.com/ricirt/report-robot/internal/platform/gsuite"
	"github.com/ricirt/report-robot/internal/provider"
	"github.com/ricirt/report-robot/internal/queue"
	"github.com/ricirt/report-robot/internal/ratelimiter"
	"github.com/ricirt/report-robot/internal/repository"
	"github.com/ricirt/report-robot/internal/scheduler"
	"github.com/ricirt/report-robot/internal/tracker"
)

// app holds every wired component for commands that touch storage.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *cache.RedisCache
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	trigger scheduler.Trigger
	runner  *queue.Runner
	tracker *tracker.Service
}

// newLogger builds the stdout production logger at the configured level.
func newLogger(cfg config.LogsConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	logger, err := zc.Build()
	if err != nil {
		return nil, level, fmt.Errorf("build logger: %w", err)
	}
	return logger, level, nil
}

func newTelegram(cfg *config.Config, throttle provider.Throttle, logger *zap.Logger) *provider.TelegramProvider {
	return provider.NewTelegramProvider(provider.TelegramConfig{
		BaseURL:     cfg.Telegram.APIBaseURL,
		Token:       cfg.Telegram.Token,
		Timeout:     cfg.Telegram.Timeout,
		MaxAttempts: cfg.Distribution.MaxAttempts,
		RetryDelay:  cfg.Distribution.RetryDelay,
	}, throttle, logger)
}

func reportProblems(cfg *config.Config, logger *zap.Logger) {
	for _, p := range cfg.Validate().Problems {
		logger.Warn("configuration problem", zap.String("problem", p))
	}
}

// bootstrap connects storage, applies migrations and wires the pipeline.
// The caller must call close.
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, level, err := newLogger(cfg.Logs)
	if err != nil {
		return nil, err
	}
	reportProblems(cfg, logger)

	// ---- database ----
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("database migrations applied")

	// ---- redis ----
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		LockTTL:  2 * cfg.Queue.Budget,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// ---- logging sinks ----
	props := repository.NewPgPropertyStore(pool)
	console := logsink.NewConsole(repository.NewPgConsoleRepository(pool), cfg.Logs.MaxConsoleLines)
	if cfg.Logs.ToConsole {
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, console.Core(level))
		}))
	}
	warnings := logsink.NewThrottle(props, logger, cfg.Logs.WarnThrottle)

	// ---- metrics ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// ---- external services ----
	telegram := newTelegram(cfg, ratelimiter.New(rc, cfg.Telegram.MinInterval, cfg.Telegram.MaxPerSecond), logger)
	telegram.SetHooks(m.ProviderHooks())

	google, err := gsuite.New(ctx, gsuite.Config{
		CredentialsFile: cfg.Google.CredentialsFile,
		InputFolder:     cfg.Google.InputFolder,
		ArchiveFolder:   cfg.Google.ArchiveFolder,
		TempFolder:      cfg.Google.TempFolder,
	})
	if err != nil {
		rc.Close()
		pool.Close()
		return nil, err
	}

	// ---- pipeline ----
	loc := cfg.Location()
	trackerURL := ""
	if cfg.Tracker.Enabled {
		trackerURL = cfg.Tracker.URL
	}
	dist := distributor.New(
		google,
		telegram,
		distributor.NewDedup(rc, cfg.Distribution.DedupTTL),
		repository.NewPgControlRepository(pool),
		repository.NewPgDashboardRepository(pool),
		distributor.Options{
			Messages: distributor.MessageOptions{
				GreetingByHour: cfg.Messages.GreetingByHour,
				EmojiSales:     cfg.Messages.EmojiSales,
				EmojiAccounts:  cfg.Messages.EmojiAccounts,
			},
			TrackerURL:          trackerURL,
			InterRecipientDelay: cfg.Distribution.InterRecipientDelay,
			MaxRunTime:          cfg.Distribution.MaxRunTime,
			Coordination:        cfg.Coordination.Enabled,
			Location:            loc,
		},
		logger,
	)
	dist.SetHooks(m.DistributionHook())

	trigger := scheduler.NewPropertyTrigger(props)
	runner := queue.NewRunner(
		google,
		google,
		directory.NewResolver(google, cfg.Google.DirectoryDoc, cfg.Google.DirectoryRange, logger),
		dist,
		repository.NewQueueStateRepository(props),
		trigger,
		rc,
		console,
		warnings,
		queue.Options{
			Budget:   cfg.Queue.Budget,
			LockWait: cfg.Queue.LockWait,
			Location: loc,
		},
		logger,
	)
	runner.SetHooks(m.QueueHooks())

	return &app{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		redis:   rc,
		reg:     reg,
		metrics: m,
		trigger: trigger,
		runner:  runner,
		tracker: tracker.NewService(repository.NewPgClickRepository(pool), loc, logger),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	a.pool.Close()
}
