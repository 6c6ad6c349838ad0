// Package resolver maps the host of a request to a hostname record and its website.
package resolver

import (
	"context"
	"log/slog"

	"github.com/openkcm/tenancy/internal/cache"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

const (
	OutcomeMatched    = "matched"
	OutcomeFallback   = "fallback"
	OutcomeUnresolved = "unresolved"
	OutcomeError      = "error"
)

// Resolution is a resolved host. Fallback is set when the host had no record
// of its own and the default hostname was used.
type Resolution struct {
	Hostname *model.Hostname
	Website  *model.Website
	Fallback bool
}

// Recorder receives resolution measurements.
type Recorder interface {
	ResolutionObserved(outcome string, cached bool)
}

type Option func(*Resolver)

func WithCache(c cache.Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

type Resolver struct {
	hostnames repo.HostnameRepository
	websites  repo.WebsiteRepository
	fallback  config.FallbackPolicy
	cache     cache.Cache
	recorder  Recorder
}

func New(r repo.Repositories, policy config.FallbackPolicy, opts ...Option) *Resolver {
	res := &Resolver{
		hostnames: r.Hostnames,
		websites:  r.Websites,
		fallback:  policy,
		cache:     cache.Noop{},
	}

	for _, opt := range opts {
		opt(res)
	}

	return res
}

// Resolve returns the hostname matching rawHost exactly, else the default
// hostname when the fallback policy allows it, else nil. Store failures are
// returned as errors and never mistaken for an unresolved host.
//
// Exact matches are cached per host. Hosts without a record share one cache
// entry, so arbitrary Host headers cannot grow the cache. The website is
// always read from the store.
func (r *Resolver) Resolve(ctx context.Context, rawHost string) (*Resolution, error) {
	host := model.NormalizeHost(rawHost)

	res, cached, err := r.lookup(ctx, host)
	if err != nil {
		r.observe(OutcomeError, false)
		return nil, err
	}

	r.observe(outcome(res), cached)

	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, host string) (*Resolution, bool, error) {
	var (
		gen   uint64
		exact bool
	)

	if host != "" && host != cache.UnmatchedKey {
		entry, g, ok := r.cache.Get(ctx, host)
		if ok {
			res, err := r.fromEntry(ctx, entry)
			return res, true, err
		}

		hostname, err := r.hostnames.FindByHostname(ctx, host)
		if err == nil {
			r.cache.Set(ctx, g, host, &cache.Entry{Hostname: hostname})

			res, err := r.withWebsite(ctx, hostname, false)

			return res, false, err
		}

		if !repo.IsNotFound(err) {
			return nil, false, err
		}

		// the generation read before the exact lookup also guards the unmatched entry
		gen, exact = g, true
	}

	entry, g, ok := r.cache.Get(ctx, cache.UnmatchedKey)
	if ok {
		res, err := r.fromEntry(ctx, entry)
		return res, true, err
	}

	if !exact {
		gen = g
	}

	hostname, err := r.unmatched(ctx, host)
	if err != nil {
		return nil, false, err
	}

	r.cache.Set(ctx, gen, cache.UnmatchedKey, &cache.Entry{Hostname: hostname, Fallback: hostname != nil})

	if hostname == nil {
		return nil, false, nil
	}

	res, err := r.withWebsite(ctx, hostname, true)

	return res, false, err
}

// unmatched returns the default hostname when the fallback policy allows it.
func (r *Resolver) unmatched(ctx context.Context, host string) (*model.Hostname, error) {
	if r.fallback != config.FallbackDefault {
		log.Debug(ctx, "Host not resolved", slog.String("host", host))
		return nil, nil //nolint:nilnil
	}

	hostname, err := r.hostnames.FindDefault(ctx)
	if repo.IsNotFound(err) {
		log.Debug(ctx, "Host not resolved and no default hostname", slog.String("host", host))
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, err
	}

	return hostname, nil
}

func (r *Resolver) fromEntry(ctx context.Context, e *cache.Entry) (*Resolution, error) {
	if e.Hostname == nil {
		return nil, nil //nolint:nilnil
	}

	return r.withWebsite(ctx, e.Hostname, e.Fallback)
}

// withWebsite loads the website eagerly. A hostname whose website is gone is
// kept so callers can still redirect it, but carries no website.
func (r *Resolver) withWebsite(ctx context.Context, hostname *model.Hostname, fallback bool) (*Resolution, error) {
	website, err := r.websites.Find(ctx, hostname.WebsiteID)
	if repo.IsNotFound(err) {
		log.Warn(ctx, "Hostname points at a missing website",
			slog.String("hostname", hostname.Hostname),
			slog.String("websiteId", hostname.WebsiteID.String()),
		)

		website, err = nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &Resolution{Hostname: hostname, Website: website, Fallback: fallback}, nil
}

func (r *Resolver) observe(outcome string, cached bool) {
	if r.recorder != nil {
		r.recorder.ResolutionObserved(outcome, cached)
	}
}

func outcome(res *Resolution) string {
	switch {
	case res == nil:
		return OutcomeUnresolved
	case res.Fallback:
		return OutcomeFallback
	default:
		return OutcomeMatched
	}
}

type resolutionKey struct{}

// resolved wraps the result so a nil resolution can be stored too.
type resolved struct {
	res *Resolution
}

// WithResolution records the resolution of the current request so later
// stages do not resolve again.
func WithResolution(ctx context.Context, res *Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, resolved{res: res})
}

// FromContext returns the recorded resolution. ok is false when the request
// was not resolved yet; a recorded unresolved host yields nil and true.
func FromContext(ctx context.Context) (*Resolution, bool) {
	r, ok := ctx.Value(resolutionKey{}).(resolved)
	return r.res, ok
}
