package config

import (
	"errors"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrUnknownFallbackPolicy    = errors.New("fallback policy must be one of default or none")
	ErrUnknownCacheType         = errors.New("cache type must be one of none, memory or redis")
	ErrEmptyRedisAddress        = errors.New("redis address must be specified")
	ErrEmptyStorageBaseDir      = errors.New("storage base directory must be specified")
	ErrAutoHostnameDomain       = errors.New("auto hostname domain must be specified when enabled")
	ErrActivationTimeout        = errors.New("activation timeout must be positive")
	ErrCacheSize                = errors.New("memory cache size must be positive")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database    `yaml:"database"`
	DatabaseReplicas []Database  `yaml:"databaseReplicas"`
	Connections      Connections `yaml:"connections"`
	HTTP             HTTPServer  `yaml:"http"`
	Tenancy          Tenancy     `yaml:"tenancy"`
	Storage          Storage     `yaml:"storage"`
	Cache            Cache       `yaml:"cache"`
	Metrics          Metrics     `yaml:"metrics"`
}

func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.Connections,
		&c.Tenancy,
		&c.Storage,
		&c.Cache,
	}

	for _, v := range validators {
		err := v.Validate()
		if err != nil {
			return errs.Wrap(ErrConfigurationValuesError, err)
		}
	}

	return nil
}

// Database holds the system database config. Website databases are described
// by the websites themselves.
type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Secret   commoncfg.SourceRef `yaml:"secret"`
	SSLMode  string              `yaml:"sslMode"`
	Migrator Migrator            `yaml:"migrator"`
}

// Migrator points at goose migration directories inside the embedded
// migration filesystem.
type Migrator struct {
	System  string `yaml:"system" default:"system"`
	Website string `yaml:"website" default:"website"`
	// Source is the directory new migrations are written to.
	Source string `yaml:"source" default:"migrations"`
}

// Connections tunes the pools opened for website databases.
type Connections struct {
	ActivationTimeout time.Duration `yaml:"activationTimeout" default:"5s"`
	MaxOpenConns      int           `yaml:"maxOpenConns" default:"10"`
	MaxIdleConns      int           `yaml:"maxIdleConns" default:"2"`
	ConnMaxLifetime   time.Duration `yaml:"connMaxLifetime" default:"30m"`
	ConnMaxIdleTime   time.Duration `yaml:"connMaxIdleTime" default:"5m"`
}

func (c *Connections) Validate() error {
	if c.ActivationTimeout <= 0 {
		return ErrActivationTimeout
	}

	return nil
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type FallbackPolicy string

const (
	// FallbackDefault resolves unmatched hosts to the default hostname.
	FallbackDefault FallbackPolicy = "default"
	// FallbackNone leaves unmatched hosts unresolved.
	FallbackNone FallbackPolicy = "none"
)

// Tenancy configures hostname resolution and redirects.
type Tenancy struct {
	Fallback FallbackPolicy `yaml:"fallback" default:"default"`

	// AllowUnresolved lets requests without a tenant proceed in tenant-less mode.
	// When false they are rejected with an unresolved tenant error.
	AllowUnresolved bool `yaml:"allowUnresolved" default:"true"`

	// RedirectToDefault redirects hosts that only matched through the
	// fallback to the default hostname.
	RedirectToDefault bool `yaml:"redirectToDefault"`

	AutoHostname AutoHostname `yaml:"autoHostname"`
}

func (t *Tenancy) Validate() error {
	switch t.Fallback {
	case FallbackDefault, FallbackNone:
	default:
		return ErrUnknownFallbackPolicy
	}

	if t.AutoHostname.Enabled && t.AutoHostname.Domain == "" {
		return ErrAutoHostnameDomain
	}

	return nil
}

// AutoHostname provisions "<slug>.<domain>" for websites created without hostnames.
type AutoHostname struct {
	Enabled bool   `yaml:"enabled"`
	Domain  string `yaml:"domain"`
}

// Storage holds the base directory for website storage roots and the
// shared roots used when no website is active.
type Storage struct {
	BaseDir     string            `yaml:"baseDir" default:"storage/websites"`
	SharedRoots map[string]string `yaml:"sharedRoots"`
}

func (s *Storage) Validate() error {
	if s.BaseDir == "" {
		return ErrEmptyStorageBaseDir
	}

	return nil
}

type CacheType string

const (
	CacheNone   CacheType = "none"
	CacheMemory CacheType = "memory"
	CacheRedis  CacheType = "redis"
)

// Cache configures the hostname lookup cache.
type Cache struct {
	Type CacheType     `yaml:"type" default:"memory"`
	TTL  time.Duration `yaml:"ttl" default:"1m"`
	// Size caps the entries of the memory cache.
	Size  int   `yaml:"size" default:"10000"`
	Redis Redis `yaml:"redis"`
}

func (c *Cache) Validate() error {
	switch c.Type {
	case CacheNone:
		return nil
	case CacheMemory:
		if c.Size <= 0 {
			return ErrCacheSize
		}

		return nil
	case CacheRedis:
		if c.Redis.Address == "" {
			return ErrEmptyRedisAddress
		}

		return nil
	default:
		return ErrUnknownCacheType
	}
}

// Redis holds Redis client config
type Redis struct {
	Address  string              `yaml:"address"`
	Password commoncfg.SourceRef `yaml:"password"`
	DB       int                 `yaml:"db"`
	Prefix   string              `yaml:"prefix" default:"tenancy:hostname:"`
}

// Metrics enables the prometheus endpoint on the HTTP server.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" default:"/metrics"`
}
