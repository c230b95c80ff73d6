package app

import (
	"strings"

	"github.com/bazaarhq/bazaar/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings, defaulting
// to info level JSON output.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithFormat(level, strings.TrimSpace(cfg.LogFormat))
}
