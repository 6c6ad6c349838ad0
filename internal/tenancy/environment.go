// Package tenancy boots the tenant of a request: it resolves the host, activates
// the website database, registers the website directories and exposes the
// tenant to views.
package tenancy

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/connection"
	"github.com/openkcm/tenancy/internal/directory"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/resolver"
	"github.com/openkcm/tenancy/internal/view"
)

type Resolver interface {
	Resolve(ctx context.Context, host string) (*resolver.Resolution, error)
}

type Activator interface {
	Activate(ctx context.Context, website uuid.UUID, cfg model.DatabaseConfig) (context.Context, *connection.Handle, error)
}

type Registrar interface {
	Register(ctx context.Context, website *model.Website, paths *directory.Paths) error
}

// Environment runs the tenancy pipeline once per request.
type Environment struct {
	resolver        Resolver
	connections     Activator
	directories     Registrar
	sharedRoots     map[string]string
	allowUnresolved bool
}

func NewEnvironment(
	res Resolver,
	connections Activator,
	directories Registrar,
	cfg config.Tenancy,
	storage config.Storage,
) *Environment {
	return &Environment{
		resolver:        res,
		connections:     connections,
		directories:     directories,
		sharedRoots:     storage.SharedRoots,
		allowUnresolved: cfg.AllowUnresolved,
	}
}

// Boot resolves host and makes its website current for the returned context.
// A resolution already recorded on ctx is reused. When the database cannot be
// activated the error wraps ErrTenantDatabaseUnavailable and no directories
// are registered. An unresolved host yields a tenant-less state, or
// ErrUnresolvedTenant when unresolved requests are not allowed.
func (e *Environment) Boot(ctx context.Context, host string) (context.Context, *State, error) {
	if state, ok := FromContext(ctx); ok {
		return ctx, state, nil
	}

	res, ok := resolver.FromContext(ctx)
	if !ok {
		var err error

		res, err = e.resolver.Resolve(ctx, host)
		if err != nil {
			return ctx, nil, err
		}

		ctx = resolver.WithResolution(ctx, res)
	}

	state := &State{Paths: directory.NewPaths(e.sharedRoots)}

	if res != nil {
		state.Hostname = res.Hostname
		state.Fallback = res.Fallback

		switch {
		case res.Website == nil:
			log.Warn(ctx, "Hostname has no website", slog.String("hostname", res.Hostname.Hostname))
		case !res.Website.Active:
			log.Info(ctx, "Website inactive, continuing without tenant",
				slog.String("hostname", res.Hostname.Hostname),
				slog.String("website", res.Website.Slug),
			)
		default:
			state.Website = res.Website
		}
	}

	if state.Website == nil {
		if !e.allowUnresolved {
			return ctx, nil, errs.ErrUnresolvedTenant
		}

		return e.expose(ctx, state), state, nil
	}

	ctx = log.InjectTenant(ctx, state.Hostname.Hostname, state.Website.ID.String())

	ctx, handle, err := e.connections.Activate(ctx, state.Website.ID, state.Website.DatabaseConfig())
	if err != nil {
		return ctx, nil, err
	}

	state.Connection = handle

	err = e.directories.Register(ctx, state.Website, state.Paths)
	if err != nil {
		return ctx, nil, err
	}

	log.Debug(ctx, "Tenant booted", slog.Bool("fallback", state.Fallback))

	return e.expose(ctx, state), state, nil
}

func (e *Environment) expose(ctx context.Context, state *State) context.Context {
	state.View = view.New(state.Hostname, state.Website)

	ctx = directory.WithPaths(ctx, state.Paths)
	ctx = view.WithView(ctx, state.View)

	return WithState(ctx, state)
}
