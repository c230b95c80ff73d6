package database

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPostgresHost = "localhost"
	defaultPostgresPort = 5432
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// buildPostgresDSN assembles a keyword/value connection string and checks it with
// pgconn so malformed settings fail at start-up rather than on first query.
func buildPostgresDSN(cfg Config) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		if cfg.User == "" || cfg.Name == "" {
			return "", errors.New("postgres configuration requires user and database name")
		}

		host := cfg.Host
		if host == "" {
			host = defaultPostgresHost
		}
		port := cfg.Port
		if port == 0 {
			port = defaultPostgresPort
		}

		settings := map[string]string{
			"host":     host,
			"port":     strconv.Itoa(port),
			"user":     cfg.User,
			"dbname":   cfg.Name,
			"sslmode":  "disable",
			"TimeZone": "UTC",
		}
		if cfg.Password != "" {
			settings["password"] = cfg.Password
		}
		for key, value := range cfg.Options {
			settings[key] = value
		}
		dsn = keywordDSN(settings)
	}

	if _, err := pgconn.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres dsn: %w", err)
	}
	return dsn, nil
}

func keywordDSN(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quoteDSNValue(settings[key]))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue escapes values containing spaces or quotes per libpq rules.
func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
