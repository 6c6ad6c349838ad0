// Package connection activates website databases for the duration of a request.
// Pools are opened once per distinct database descriptor and reused afterwards.
// Every website holds one pool at a time: when its descriptor changes the
// website moves to a new pool and the old one is closed once no website uses it.
package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db/dialect"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo/violations"
	tenancycontext "github.com/openkcm/tenancy/utils/context"
)

const (
	OutcomeReused = "reused"
	OutcomeOpened = "opened"
	OutcomeFailed = "failed"
)

var (
	ErrManagerClosed = errors.New("connection manager is closed")
	ErrPoolReplaced  = errors.New("website database pool was replaced during activation")
)

// OpenFunc opens and pings a pool for cfg. The context bounds the whole attempt.
type OpenFunc func(ctx context.Context, cfg model.DatabaseConfig) (*gorm.DB, error)

// Recorder receives activation measurements.
type Recorder interface {
	ActivationObserved(outcome string, elapsed time.Duration)
	PoolsOpen(n int)
}

type Option func(*Manager)

func WithOpenFunc(open OpenFunc) Option {
	return func(m *Manager) {
		m.open = open
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

type Manager struct {
	open     OpenFunc
	timeout  time.Duration
	recorder Recorder

	group singleflight.Group

	mu     sync.RWMutex
	pools  map[string]*pool
	owners map[uuid.UUID]string
	closed bool
}

// pool is an open connection pool and the number of websites using it.
type pool struct {
	db    *gorm.DB
	users int
}

func NewManager(cfg config.Connections, opts ...Option) *Manager {
	m := &Manager{
		open:    Postgres(cfg),
		timeout: cfg.ActivationTimeout,
		pools:   map[string]*pool{},
		owners:  map[uuid.UUID]string{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Activate makes the database described by cfg current for ctx on behalf of
// website. Activating the same descriptor again reuses its pool. A changed
// descriptor, a rotated password included, moves the website to a new pool.
// Failures wrap ErrTenantDatabaseUnavailable.
func (m *Manager) Activate(ctx context.Context, website uuid.UUID, cfg model.DatabaseConfig) (context.Context, *Handle, error) {
	start := time.Now()
	key := cfg.Key()

	db, outcome, err := m.pool(ctx, website, key, cfg)
	m.observe(outcome, time.Since(start))

	if err != nil {
		log.Warn(ctx, "Website database unavailable",
			log.ErrorAttr(err),
			slog.String("database", cfg.String()),
			slog.Bool("unreachable", violations.IsUnreachable(err)),
		)

		return ctx, nil, errs.Wrap(errs.ErrTenantDatabaseUnavailable, err)
	}

	h := &Handle{key: key, schema: cfg.Schema, db: db}

	ctx = context.WithValue(ctx, handleKey{}, h)
	if cfg.Schema != "" {
		ctx = tenancycontext.CreateTenantContext(ctx, cfg.Schema)
	}

	return ctx, h, nil
}

func (m *Manager) pool(ctx context.Context, website uuid.UUID, key string, cfg model.DatabaseConfig) (*gorm.DB, string, error) {
	db, ok, err := m.lookup(website, key)
	if err != nil || ok {
		return db, OutcomeReused, err
	}

	db, ok, err = m.acquire(ctx, website, key)
	if err != nil || ok {
		return db, OutcomeReused, err
	}

	// The first activation opens the pool on behalf of every concurrent caller,
	// so it must not be cut short when only one of them goes away.
	ch := m.group.DoChan(key, func() (any, error) {
		if m.opened(key) {
			return nil, nil
		}

		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()

		db, err := m.open(openCtx, cfg)
		if err != nil {
			return nil, err
		}

		return nil, m.store(key, db)
	})

	select {
	case <-ctx.Done():
		return nil, OutcomeFailed, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, OutcomeFailed, res.Err
		}

		db, ok, err := m.acquire(ctx, website, key)
		if err != nil {
			return nil, OutcomeFailed, err
		}

		if !ok {
			return nil, OutcomeFailed, ErrPoolReplaced
		}

		return db, OutcomeOpened, nil
	}
}

// lookup is the read locked fast path for a website already on key.
func (m *Manager) lookup(website uuid.UUID, key string) (*gorm.DB, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrManagerClosed
	}

	if m.owners[website] != key {
		return nil, false, nil
	}

	p, ok := m.pools[key]
	if !ok {
		return nil, false, nil
	}

	return p.db, true, nil
}

func (m *Manager) opened(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.pools[key]

	return ok
}

// acquire moves website onto the pool of key when that pool is open. The pool
// the website leaves is closed when it has no users left. Requests still
// running on it may see their queries fail.
func (m *Manager) acquire(ctx context.Context, website uuid.UUID, key string) (*gorm.DB, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrManagerClosed
	}

	p, ok := m.pools[key]
	if !ok {
		return nil, false, nil
	}

	prev, had := m.owners[website]
	if had && prev == key {
		return p.db, true, nil
	}

	m.owners[website] = key
	p.users++

	if had {
		m.release(ctx, prev)
	}

	return p.db, true, nil
}

// release drops one user from the pool of key. Callers hold the write lock.
func (m *Manager) release(ctx context.Context, key string) {
	p, ok := m.pools[key]
	if !ok {
		return
	}

	p.users--
	if p.users > 0 {
		return
	}

	delete(m.pools, key)
	closePool(p.db)

	log.Info(ctx, "Closed superseded website database pool", slog.String("pool", key))

	if m.recorder != nil {
		m.recorder.PoolsOpen(len(m.pools))
	}
}

// store registers a freshly opened pool. It has no users until acquired.
func (m *Manager) store(key string, db *gorm.DB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		closePool(db)
		return ErrManagerClosed
	}

	if _, ok := m.pools[key]; ok {
		closePool(db)
		return nil
	}

	m.pools[key] = &pool{db: db}

	if m.recorder != nil {
		m.recorder.PoolsOpen(len(m.pools))
	}

	return nil
}

func (m *Manager) observe(outcome string, elapsed time.Duration) {
	if m.recorder != nil {
		m.recorder.ActivationObserved(outcome, elapsed)
	}
}

// Stats reports the number of open pools.
func (m *Manager) Stats() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.pools)
}

// Close closes every pool. Later activations fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, p := range m.pools {
		closePool(p.db)
		delete(m.pools, key)
	}

	clear(m.owners)

	m.closed = true

	if m.recorder != nil {
		m.recorder.PoolsOpen(0)
	}
}

func closePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

// Postgres opens website databases through the gorm-multitenancy postgres dialector.
func Postgres(conns config.Connections) OpenFunc {
	return func(ctx context.Context, cfg model.DatabaseConfig) (*gorm.DB, error) {
		db, err := gorm.Open(dialect.ForWebsite(cfg), &gorm.Config{
			TranslateError:       true,
			DisableAutomaticPing: true,
			Logger:               logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(conns.MaxOpenConns)
		sqlDB.SetMaxIdleConns(conns.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(conns.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(conns.ConnMaxIdleTime)

		err = sqlDB.PingContext(ctx)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		return db, nil
	}
}
