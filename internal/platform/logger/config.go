package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	OutputFile string // extra sink next to stdout; empty or "stdout" means stdout only
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE.
func DefaultConfig() *LoggerConfig {
	cfg := &LoggerConfig{Level: "info", Format: "json", OutputFile: "stdout"}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Level = v
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		cfg.Format = v
	}
	if v, ok := os.LookupEnv("LOG_OUTPUT_FILE"); ok {
		cfg.OutputFile = v
	}
	cfg.Level = strings.ToLower(strings.TrimSpace(cfg.Level))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	return cfg
}

// ToZapLevel falls back to info for unknown names.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	if c.Level == "warning" {
		return zapcore.WarnLevel
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
