package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/openkcm/tenancy/internal/cache"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/connection"
	"github.com/openkcm/tenancy/internal/directory"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/metrics"
	"github.com/openkcm/tenancy/internal/middleware"
	"github.com/openkcm/tenancy/internal/observer"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/resolver"
	"github.com/openkcm/tenancy/internal/tenancy"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"
)

type TenancyServer struct {
	cfg         *config.Config
	server      *http.Server
	connections *connection.Manager
	cache       cache.Cache
	repos       repo.Repositories
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

type serverOptions struct {
	fs          afero.Fs
	connections []connection.Option
	registry    *prometheus.Registry
}

type ServerOption func(*serverOptions)

// WithFs replaces the filesystem holding the website directories.
func WithFs(fs afero.Fs) ServerOption {
	return func(o *serverOptions) {
		o.fs = fs
	}
}

// WithConnectionOptions tunes the website connection manager.
func WithConnectionOptions(opts ...connection.Option) ServerOption {
	return func(o *serverOptions) {
		o.connections = append(o.connections, opts...)
	}
}

// WithRegistry collects the server metrics in reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(o *serverOptions) {
		o.registry = reg
	}
}

// NewTenancyServer assembles the tenancy pipeline over the system database.
func NewTenancyServer(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	opts ...ServerOption,
) (*TenancyServer, error) {
	o := &serverOptions{
		fs:       afero.NewOsFs(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(o)
	}

	m := metrics.New()

	err := m.Register(o.registry)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "registering metrics")
	}

	err = o.registry.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "registering go collector")
	}

	hostnameCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating hostname cache")
	}

	repos := sql.NewRepositories(db, observer.NewSet(cfg.Tenancy, hostnameCache))

	res := resolver.New(repos, cfg.Tenancy.Fallback,
		resolver.WithCache(hostnameCache),
		resolver.WithRecorder(m),
	)

	connOpts := append([]connection.Option{
		connection.WithOpenFunc(connection.Postgres(cfg.Connections)),
		connection.WithRecorder(m),
	}, o.connections...)
	connections := connection.NewManager(cfg.Connections, connOpts...)

	env := tenancy.NewEnvironment(
		res,
		connections,
		directory.New(o.fs, cfg.Storage.BaseDir),
		cfg.Tenancy,
		cfg.Storage,
	)

	mux := NewServeMux(
		middleware.HostnameMiddleware(res, repos.Hostnames, cfg.Tenancy),
		middleware.TenancyMiddleware(env),
	)
	mux.HandleFunc(TenantPath, tenantHandler)
	mux.HandleFunc(PathsPath, pathsHandler)
	mux.HandleSystem(HealthzPath, http.HandlerFunc(healthzHandler))

	if cfg.Metrics.Enabled {
		mux.HandleSystem("GET "+cfg.Metrics.Path, metrics.Handler(o.registry))
	}

	// Middlewares run in order. First middleware to run should be the InjectRequestID
	handler := chain(mux,
		middleware.InjectRequestID(),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(m),
	)

	log.Info(ctx, "Tenancy server assembled",
		slog.String("address", cfg.HTTP.Address),
		slog.String("fallback", string(cfg.Tenancy.Fallback)),
		slog.Bool("metrics", cfg.Metrics.Enabled),
	)

	return &TenancyServer{
		cfg:         cfg,
		connections: connections,
		cache:       hostnameCache,
		repos:       repos,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}, nil
}

// Handler is the fully assembled request handler.
func (s *TenancyServer) Handler() http.Handler {
	return s.server.Handler
}

// Repositories gives access to the stores the server writes through, so that
// writes notify the hostname cache.
func (s *TenancyServer) Repositories() repo.Repositories {
	return s.repos
}

func (s *TenancyServer) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func (s *TenancyServer) Close(ctx context.Context) error {
	shutdownCtx, shutdownRelease := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	s.connections.Close()

	if closer, ok := s.cache.(io.Closer); ok {
		err = closer.Close()
		if err != nil {
			log.Error(ctx, "failed to close hostname cache", err)
		}
	}

	log.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
