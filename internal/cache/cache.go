// Package cache keeps recent hostname resolutions keyed by normalized host.
package cache

import (
	"context"
	"errors"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
)

var ErrLoadingRedisPassword = errors.New("error loading redis password")

// UnmatchedKey holds the single answer shared by every host without a record
// of its own. It can never be a stored hostname.
const UnmatchedKey = "*"

// Entry is a cached resolution. It carries no website so database credentials
// never reach the cache; callers reload the website on every hit. A nil
// Hostname records that the host did not resolve.
type Entry struct {
	Hostname *model.Hostname `json:"hostname,omitempty"`
	Fallback bool            `json:"fallback,omitempty"`
}

type Cache interface {
	// Get returns the entry for key and the generation it was read in. A miss
	// reports the current generation.
	Get(ctx context.Context, key string) (*Entry, uint64, bool)
	// Set stores entry unless the cache was purged after gen, so a lookup
	// that raced with a write never caches what it read before the write.
	Set(ctx context.Context, gen uint64, key string, entry *Entry)
	// Purge drops every entry and starts a new generation.
	Purge(ctx context.Context)
	// Changed purges the cache after a committed write.
	Changed(ctx context.Context)
}

// New builds the cache selected by cfg.
func New(cfg config.Cache) (Cache, error) {
	switch cfg.Type {
	case config.CacheMemory:
		return NewMemory(cfg.Size, cfg.TTL), nil
	case config.CacheRedis:
		password := ""

		if cfg.Redis.Password.Source != "" {
			value, err := commoncfg.LoadValueFromSourceRef(cfg.Redis.Password)
			if err != nil {
				return nil, errs.Wrap(ErrLoadingRedisPassword, err)
			}

			password = string(value)
		}

		return NewRedis(cfg.Redis, password, cfg.TTL), nil
	case config.CacheNone:
		return Noop{}, nil
	default:
		return nil, config.ErrUnknownCacheType
	}
}

type Noop struct{}

func (Noop) Get(context.Context, string) (*Entry, uint64, bool) { return nil, 0, false }
func (Noop) Set(context.Context, uint64, string, *Entry)        {}
func (Noop) Purge(context.Context)                              {}
func (Noop) Changed(context.Context)                            {}
