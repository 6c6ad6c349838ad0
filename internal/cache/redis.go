package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
)

const (
	purgeBatch    = 100
	generationKey = "generation"
)

// Redis shares resolutions between server instances. Redis failures degrade
// to cache misses.
//
// Entry keys carry the generation they were written in. Purge increments the
// generation, so an entry written by a lookup that started before the purge
// lands under a key no reader asks for and expires with its ttl.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(cfg config.Redis, password string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: password,
			DB:       cfg.DB,
		}),
		prefix: cfg.Prefix,
		ttl:    ttl,
	}
}

// Ping checks that the redis server answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (*Entry, uint64, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		log.Warn(ctx, "Hostname cache read failed", log.ErrorAttr(err))
		return nil, gen, false
	}

	data, err := r.client.Get(ctx, r.entryKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn(ctx, "Hostname cache read failed", log.ErrorAttr(err))
		}

		return nil, gen, false
	}

	var entry Entry

	err = json.Unmarshal(data, &entry)
	if err != nil {
		log.Warn(ctx, "Dropping malformed hostname cache entry", log.ErrorAttr(err), slog.String("key", key))
		return nil, gen, false
	}

	return &entry, gen, true
}

func (r *Redis) Set(ctx context.Context, gen uint64, key string, entry *Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Warn(ctx, "Hostname cache entry not encodable", log.ErrorAttr(err))
		return
	}

	err = r.client.Set(ctx, r.entryKey(gen, key), data, r.ttl).Err()
	if err != nil {
		log.Warn(ctx, "Hostname cache write failed", log.ErrorAttr(err))
	}
}

// Purge starts a new generation and deletes the entries of earlier ones.
func (r *Redis) Purge(ctx context.Context) {
	err := r.client.Incr(ctx, r.prefix+generationKey).Err()
	if err != nil {
		log.Warn(ctx, "Hostname cache purge failed", log.ErrorAttr(err))
		return
	}

	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"[0-9]*", purgeBatch).Result()
		if err != nil {
			log.Warn(ctx, "Hostname cache purge failed", log.ErrorAttr(err))
			return
		}

		if len(keys) > 0 {
			err = r.client.Del(ctx, keys...).Err()
			if err != nil {
				log.Warn(ctx, "Hostname cache purge failed", log.ErrorAttr(err))
				return
			}
		}

		if next == 0 {
			return
		}

		cursor = next
	}
}

func (r *Redis) Changed(ctx context.Context) {
	r.Purge(ctx)
}

func (r *Redis) generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.prefix+generationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return gen, err
}

func (r *Redis) entryKey(gen uint64, key string) string {
	return r.prefix + strconv.FormatUint(gen, 10) + ":" + key
}
