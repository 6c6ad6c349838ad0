package config

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/constants"
)

//nolint:mnd
var defaultConfig = map[string]any{
	"Database": map[string]any{
		"Migrator": map[string]any{
			"System":  "system",
			"Website": "website",
			"Source":  "migrations",
		},
	},
	"Tenancy": map[string]any{
		"Fallback":        string(FallbackDefault),
		"AllowUnresolved": true,
	},
	"Connections": map[string]any{
		"ActivationTimeout": "5s",
		"MaxOpenConns":      10,
		"MaxIdleConns":      2,
		"ConnMaxLifetime":   "30m",
		"ConnMaxIdleTime":   "5m",
	},
	"Storage": map[string]any{
		"BaseDir": "storage/websites",
	},
	"Cache": map[string]any{
		"Type": string(CacheMemory),
		"TTL":  "1m",
		"Size": 10000,
		"Redis": map[string]any{
			"Prefix": "tenancy:hostname:",
		},
	},
	"Metrics": map[string]any{
		"Path": "/metrics",
	},
	"HTTP": map[string]any{
		"Address":         ":8080",
		"ShutdownTimeout": "5s",
	},
}

func LoadConfig(opts ...commoncfg.Option) (*Config, error) {
	cfg := &Config{}

	// Options passed by the caller come last so they override the defaults below.
	options := make([]commoncfg.Option, 0, 2+len(opts))
	options = append(options,
		commoncfg.WithDefaults(defaultConfig),
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
	)

	options = append(options, opts...)

	loader := commoncfg.NewLoader(
		cfg,
		options...,
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to load config")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}
