package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Usage backend identifiers returned in DSN.Backend.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DSN is a parsed usage storage connection string.
type DSN struct {
	// Backend is BackendSQLite or BackendPostgres.
	Backend string
	// Path is the database file for sqlite.
	Path string
	// URL is the connection URL for postgres.
	URL string
}

// ParseDSN parses sqlite:// and postgres:// connection strings.
// An empty string returns nil without error.
func ParseDSN(dsn string) (*DSN, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, nil
	}

	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite DSN requires a file path")
		}
		return &DSN{Backend: BackendSQLite, Path: path}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres DSN: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("postgres DSN requires a host")
		}
		return &DSN{Backend: BackendPostgres, URL: dsn}, nil
	default:
		return nil, fmt.Errorf("unsupported DSN scheme (use sqlite:// or postgres://)")
	}
}
