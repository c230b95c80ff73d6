package app

import (
	"strings"

	"github.com/bazaarhq/bazaar/internal/database"
)

// DatabaseSettings converts DatabaseConfig into database.Open parameters.
func (c DatabaseConfig) DatabaseSettings() database.Config {
	cfg := database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:            strings.TrimSpace(c.Path),
		DSN:             strings.TrimSpace(c.DSN),
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}

	var vendor *DBAuthConfig
	switch cfg.Driver {
	case "", "sqlite":
		cfg.Driver = "sqlite"
	case "postgres", "postgresql":
		cfg.Driver = "postgres"
		vendor = &c.Postgres
	case "mysql":
		vendor = &c.MySQL
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	if vendor != nil {
		cfg.Host = strings.TrimSpace(vendor.Host)
		cfg.Port = vendor.Port
		cfg.Name = strings.TrimSpace(vendor.Database)
		cfg.User = strings.TrimSpace(vendor.Username)
		cfg.Password = vendor.Password
	}

	return cfg
}
