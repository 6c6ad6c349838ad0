package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DatabaseConfig describes the database a website's tenant scoped queries run against.
// It is stored as an opaque JSON blob on the website.
type DatabaseConfig struct {
	Host     string `json:"host" validate:"required"`
	Port     string `json:"port,omitempty" validate:"omitempty,numeric"`
	Name     string `json:"name" validate:"required"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Schema   string `json:"schema,omitempty" validate:"omitempty,max=63"`
	SSLMode  string `json:"sslMode,omitempty" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

const defaultPostgresPort = "5432"

func (c DatabaseConfig) Validate() error {
	return validateStruct(c)
}

// DSN renders the config as a postgres keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	port := c.Port
	if port == "" {
		port = defaultPostgresPort
	}

	parts := []string{
		"host=" + c.Host,
		"port=" + port,
		"dbname=" + c.Name,
	}

	if c.User != "" {
		parts = append(parts, "user="+c.User)
	}

	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}

	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+c.SSLMode)
	}

	return strings.Join(parts, " ")
}

// Key fingerprints the connection target. Two configs with the same key share
// one connection pool. The credentials are part of the fingerprint, so a
// rotated password yields a new key and a new pool; the connection manager
// then closes the pool the website used before. Only a truncated hash is
// returned, so the key never exposes credentials.
func (c DatabaseConfig) Key() string {
	sum := sha256.Sum256([]byte(c.DSN()))
	return hex.EncodeToString(sum[:8])
}

// String hides the password so the config can be logged.
func (c DatabaseConfig) String() string {
	return fmt.Sprintf("%s@%s/%s schema=%q", c.User, c.Host, c.Name, c.Schema)
}
