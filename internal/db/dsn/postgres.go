package dsn

import (
	"errors"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
)

var (
	ErrLoadingDatabaseHost     = errors.New("error loading database host")
	ErrLoadingDatabaseUser     = errors.New("error loading database user")
	ErrLoadingDatabasePassword = errors.New("error loading database password")
)

// FromDBConfig resolves the source references of `config.Database` into a
// connection descriptor. Empty references are left empty.
func FromDBConfig(conf config.Database) (model.DatabaseConfig, error) {
	host, err := load(conf.Host)
	if err != nil {
		return model.DatabaseConfig{}, errs.Wrap(ErrLoadingDatabaseHost, err)
	}

	user, err := load(conf.User)
	if err != nil {
		return model.DatabaseConfig{}, errs.Wrap(ErrLoadingDatabaseUser, err)
	}

	password, err := load(conf.Secret)
	if err != nil {
		return model.DatabaseConfig{}, errs.Wrap(ErrLoadingDatabasePassword, err)
	}

	return model.DatabaseConfig{
		Host:     host,
		Port:     conf.Port,
		Name:     conf.Name,
		User:     user,
		Password: password,
		SSLMode:  conf.SSLMode,
	}, nil
}

// WithSearchPath appends a search_path option so unqualified names resolve in schema.
func WithSearchPath(dsn, schema string) string {
	if schema == "" {
		return dsn
	}

	return dsn + " search_path=" + QuoteSchema(schema)
}

func QuoteSchema(schema string) string {
	return `"` + schema + `"`
}

func load(ref commoncfg.SourceRef) (string, error) {
	if ref.Source == "" {
		return "", nil
	}

	value, err := commoncfg.LoadValueFromSourceRef(ref)
	if err != nil {
		return "", err
	}

	return string(value), nil
}
