package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// fallbackPaths are tried in order when CONFIG_PATH is not set. The binaries
// run from cron, so a working-directory file is usually absent and the
// system path or plain ENV is the common mode.
var fallbackPaths = []string{
	"./config.yaml",
	"/etc/contentpipe/config.yaml",
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file comes from the CONFIG_PATH env var when set (a missing file
// is then an error), otherwise from the first fallback path that exists.
// With no file at all, configuration is ENV + defaults only.
func Load() (*Config, error) {
	var cfg Config

	if err := readSources(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func readSources(cfg *Config) error {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config: file %s: %w", path, err)
		}
		return readFile(path, cfg)
	}

	for _, path := range fallbackPaths {
		if _, err := os.Stat(path); err == nil {
			return readFile(path, cfg)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("config: read env: %w", err)
	}

	return nil
}

func readFile(path string, cfg *Config) error {
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}
