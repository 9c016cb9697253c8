// Package patient assembles the offline-first registration core from
// configuration: the local queue and its storage backend, the optional
// remote adapter, both coordinators, the reconciler and the HTTP handler.
package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"healthreg/internal/connectivity"
	"healthreg/internal/patient/handler"
	"healthreg/internal/patient/metrics"
	pgremote "healthreg/internal/patient/remote/postgres"
	"healthreg/internal/patient/remote/rest"
	"healthreg/internal/patient/service"
	"healthreg/internal/patient/store/offline"
	patientsync "healthreg/internal/patient/sync"
	"healthreg/internal/platform/config"
	"healthreg/internal/platform/postgres"
	"healthreg/internal/platform/redis"
	"healthreg/internal/storage/kv"
	"healthreg/pkg/platform/circuit"
)

// Module is the wired registration core.
type Module struct {
	Monitor    *connectivity.Monitor
	Queue      *offline.Queue
	Writer     *service.Writer
	Reader     *service.Reader
	Reconciler *patientsync.Reconciler
	Handler    *handler.Handler
	Metrics    *metrics.Metrics

	closers []func() error
}

// Build wires a Module from cfg. reg may be nil for commands that do not
// expose metrics.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Module, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Module{}
	if reg != nil {
		m.Metrics = metrics.New(reg)
	}

	store, err := m.buildStore(ctx, cfg)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	m.Queue = offline.New(store,
		offline.WithKey(cfg.Storage.Key),
		offline.WithLogger(logger.Named("offline")),
		offline.WithMetrics(m.Metrics),
	)

	remote, err := m.buildRemote(ctx, cfg, logger)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	m.Monitor = connectivity.New(
		connectivity.WithInitial(cfg.Connectivity.StartOnline()),
		connectivity.WithLogger(logger.Named("connectivity")),
	)

	opts := []service.Option{
		service.WithLogger(logger.Named("patient")),
		service.WithMetrics(m.Metrics),
	}
	m.Writer = service.NewWriter(remote, m.Queue, m.Monitor, opts...)
	m.Reader = service.NewReader(remote, m.Queue, m.Monitor, opts...)
	m.Reconciler = patientsync.New(m.Queue, patientsync.WithLogger(logger.Named("sync")))
	m.Handler = handler.New(m.Writer, m.Reader, m.Reconciler, m.Monitor, cfg.Server.OperatorToken, logger.Named("http"))
	return m, nil
}

func (m *Module) buildStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return kv.NewInMemoryStore(), nil
	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if client == nil {
			return nil, errors.New("storage: redis backend requires redis.url")
		}
		m.closers = append(m.closers, client.Close)
		return kv.NewRedisStore(client.Client), nil
	default:
		store, err := kv.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return store, nil
	}
}

// buildRemote returns nil when no remote is configured; the coordinators
// then run fully offline.
func (m *Module) buildRemote(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.RemoteRecordService, error) {
	switch cfg.Remote.Kind {
	case config.RemotePostgres:
		db, err := postgres.Open(ctx, cfg.Remote)
		if db == nil {
			return nil, fmt.Errorf("remote: %w", err)
		}
		m.closers = append(m.closers, db.Close)
		store := pgremote.New(db, pgremote.WithTable(cfg.Remote.Table), pgremote.WithTimeout(cfg.Remote.Timeout))
		if err != nil {
			logger.Warn("remote database unreachable at startup", zap.Error(err))
			return store, nil
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Warn("could not ensure remote schema", zap.Error(err))
		}
		return store, nil
	case config.RemoteREST:
		breaker := circuit.New("remote-rest",
			circuit.WithFailureThreshold(cfg.Remote.FailureThreshold),
			circuit.WithCooldown(cfg.Remote.Cooldown),
		)
		return rest.New(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.Timeout,
			rest.WithTable(cfg.Remote.Table),
			rest.WithBreaker(breaker),
			rest.WithLogger(logger.Named("remote")),
		), nil
	default:
		return nil, nil
	}
}

// Close releases backend connections.
func (m *Module) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
