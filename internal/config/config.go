package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	DBPath          string
	ReportDir       string
	OutputDir       string
	CorrectionsPath string
	StrictMode      bool

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:          getEnv("DB_PATH", filepath.Join(cwd, "inkdecks_meta_cards.db")),
		ReportDir:       getEnv("REPORT_DIR", filepath.Join(cwd, "meta_decks")),
		OutputDir:       getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		CorrectionsPath: getEnv("CORRECTIONS_PATH", ""),
		StrictMode:      getEnvBool("STRICT_MODE", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
	}
	return nil
}

// InitLogger builds the process logger from LOG_LEVEL/LOG_FORMAT and installs it
// as the zap global.
func InitLogger(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	return ParseBool(getEnv(key, ""), fallback)
}

func ParseBool(value string, fallback bool) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
