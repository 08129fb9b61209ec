package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/overssh/overssh/internal/errors"
)

// fileConfig mirrors Config with string durations, so the written file
// uses "1s" instead of nanosecond integers.
type fileConfig struct {
	Ping struct {
		Count    int    `yaml:"count"`
		Interval string `yaml:"interval"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"ping"`
	Diff struct {
		Tool      string `yaml:"tool"`
		Colorizer string `yaml:"colorizer"`
	} `yaml:"diff"`
}

// DefaultPath returns the global defaults file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't determine your home directory",
			"Set HOME and try again.")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}

// Save writes the configuration as YAML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	var fc fileConfig
	fc.Ping.Count = cfg.Ping.Count
	fc.Ping.Interval = cfg.Ping.Interval.String()
	fc.Ping.Timeout = cfg.Ping.Timeout.String()
	fc.Diff.Tool = cfg.Diff.Tool
	fc.Diff.Colorizer = cfg.Diff.Colorizer

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't serialize configuration",
			"")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create config directory: "+filepath.Dir(path),
			"Check directory permissions.")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't write config file: "+path,
			"Check file permissions.")
	}

	return nil
}
