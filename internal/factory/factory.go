package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/matchmaker/internal/config"
	"github.com/mcoot/matchmaker/internal/dependencies/clock"
	"github.com/mcoot/matchmaker/internal/dependencies/random"
	"github.com/mcoot/matchmaker/internal/lock"
	"github.com/mcoot/matchmaker/internal/metrics"
	"github.com/mcoot/matchmaker/internal/notify"
	"github.com/mcoot/matchmaker/internal/services/matchmaker"
	"github.com/mcoot/matchmaker/internal/services/queue"
	"github.com/mcoot/matchmaker/internal/services/registry"
	"github.com/mcoot/matchmaker/internal/storage"
	"github.com/mcoot/matchmaker/internal/storage/memory"
	redisstorage "github.com/mcoot/matchmaker/internal/storage/redis"
	"github.com/mcoot/matchmaker/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Records storage.RecordStore
	Locker  lock.Locker

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Queue         *queue.Service
	Registry      *registry.Service
	Hub           *notify.Hub
	Dispatcher    *notify.Dispatcher
	Matchmaker    *matchmaker.Service
	NotifyHandler *notify.Handler
	Metrics       *prometheus.Registry

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is where registered session records are kept.
	// If empty, records live in the main store (memory or Redis).
	SQLitePath string
	// Matchmaker holds the lock key and TTL (optional)
	// If zero value, defaults to matchmaker.DefaultConfig()
	Matchmaker matchmaker.Config
}

// FromServerConfig maps environment settings onto the factory config
func FromServerConfig(cfg config.Config, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		Matchmaker: matchmaker.Config{
			LockKey: matchmaker.DefaultLockKey,
			LockTTL: cfg.LockTTL,
		},
	}
	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		out.RedisConfig = &redisCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store   storage.Storage
		records storage.RecordStore
		locker  lock.Locker
		closers []io.Closer
	)
	clk := clock.New()

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		memStore := memory.New()
		store, records = memStore, memStore
		locker = lock.NewInMemory(clk)
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, records = redisStore, redisStore
		locker = lock.NewRedis(redisStore.Client())
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	if cfg.SQLitePath != "" {
		sqlStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			_ = closeAll(closers)
			return nil, fmt.Errorf("open session records: %w", err)
		}
		records = sqlStore
		closers = append(closers, sqlStore)
	}

	mmCfg := cfg.Matchmaker
	if mmCfg.LockKey == "" {
		mmCfg.LockKey = matchmaker.DefaultLockKey
	}
	if mmCfg.LockTTL == 0 {
		mmCfg.LockTTL = matchmaker.DefaultLockTTL
	}

	app := newWithDependencies(store, records, locker, clk, random.New(), mmCfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	records storage.RecordStore,
	locker lock.Locker,
	clk clock.Clock,
	rnd random.Random,
	mmCfg matchmaker.Config,
	logger *slog.Logger,
) *App {
	queueService := queue.New(store)
	registryService := registry.New(store, records, clk, logger)
	hub := notify.NewHub(logger)
	dispatcher := notify.NewDispatcher(hub, logger)
	matchmakerService := matchmaker.New(locker, queueService, registryService, dispatcher, rnd, mmCfg, logger)

	reg := metrics.NewRegistry()
	metrics.Register(reg)

	return &App{
		Storage:       store,
		Records:       records,
		Locker:        locker,
		Clock:         clk,
		Random:        rnd,
		Queue:         queueService,
		Registry:      registryService,
		Hub:           hub,
		Dispatcher:    dispatcher,
		Matchmaker:    matchmakerService,
		NotifyHandler: notify.NewHandler(hub, logger),
		Metrics:       reg,
	}
}

// Close releases store connections in reverse order of opening
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
