package database

import (
	"errors"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	defaultMySQLHost = "127.0.0.1"
	defaultMySQLPort = 3306
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormConfig())
}

// buildMySQLDSN renders the connection string through the driver's own formatter.
// Timestamps are parsed into UTC so verification expiry compares correctly.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		if _, err := mysqldriver.ParseDSN(cfg.DSN); err != nil {
			return "", err
		}
		return cfg.DSN, nil
	}

	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host := cfg.Host
	if host == "" {
		host = defaultMySQLHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	dc.DBName = cfg.Name
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		if key == "tls" {
			dc.TLSConfig = value
			continue
		}
		dc.Params[key] = value
	}

	return dc.FormatDSN(), nil
}
