package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the pesbin configuration file ($XDG_CONFIG_HOME/pesbin/config.yaml).
// Empty fields leave the flag defaults in place.
type Config struct {
	LayoutsDir  string `yaml:"layouts_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	BackupCodec string `yaml:"backup_codec"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "pesbin", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero Config;
// a file that exists but does not parse is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// applyConfig copies config values into e for every flag the user did not set.
func applyConfig(c *cli.Command, cfg Config, e *env) {
	if cfg.LayoutsDir != "" && !c.IsSet("layouts") {
		e.layoutsDir = cfg.LayoutsDir
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		e.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		e.logFormat = cfg.LogFormat
	}
	if cfg.BackupCodec != "" && !c.IsSet("backup-codec") {
		e.backupCodec = cfg.BackupCodec
	}
}
