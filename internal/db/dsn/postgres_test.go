package dsn_test

import (
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db/dsn"
)

func TestFromDBConfig(t *testing.T) {
	conf := config.Database{
		Name:   "tenancy",
		Port:   "5433",
		Host:   commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "db.internal"},
		User:   commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "app"},
		Secret: commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "s3cret"},
	}

	cfg, err := dsn.FromDBConfig(conf)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "host=db.internal port=5433 dbname=tenancy user=app password=s3cret", cfg.DSN())
}

func TestWithSearchPath(t *testing.T) {
	assert.Equal(t, "host=x", dsn.WithSearchPath("host=x", ""))
	assert.Equal(t, `host=x search_path="acme"`, dsn.WithSearchPath("host=x", "acme"))
}
