// Package config loads the optional overssh defaults file.
//
// The file supplies defaults for the ping loop and the diff tool chain;
// command-line flags always win. A missing file just means defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/overssh/overssh/internal/errors"
)

const (
	// GlobalConfigDir is the directory for the defaults file, under $HOME.
	GlobalConfigDir = ".config/overssh"
	// GlobalConfigFile is the defaults file name.
	GlobalConfigFile = "config.yaml"
)

// Config holds tool-wide defaults.
type Config struct {
	Ping PingConfig `yaml:"ping"`
	Diff DiffConfig `yaml:"diff"`
}

// PingConfig holds probe loop defaults.
type PingConfig struct {
	Count    int           `yaml:"count"`    // 0 = unbounded
	Interval time.Duration `yaml:"interval"` // delay between attempts
	Timeout  time.Duration `yaml:"timeout"`  // per-attempt timeout
}

// DiffConfig names the external tools the diff front-end drives.
type DiffConfig struct {
	Tool      string `yaml:"tool"`      // differencing utility
	Colorizer string `yaml:"colorizer"` // optional diff colorizer
}

// Default returns the built-in defaults, used when no file exists.
func Default() *Config {
	return &Config{
		Ping: PingConfig{
			Count:    0,
			Interval: time.Second,
			Timeout:  10 * time.Second,
		},
		Diff: DiffConfig{
			Tool:      "diff",
			Colorizer: "colordiff",
		},
	}
}

// Load reads the defaults file at path. An empty path means the global
// location (~/.config/overssh/config.yaml). A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read config file: "+path,
			"Check the path and file permissions.")
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Config file isn't valid YAML: "+path,
			"Fix the syntax, or delete the file to fall back to defaults.")
	}

	return parse(v), nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("ping.count", d.Ping.Count)
	v.SetDefault("ping.interval", d.Ping.Interval)
	v.SetDefault("ping.timeout", d.Ping.Timeout)
	v.SetDefault("diff.tool", d.Diff.Tool)
	v.SetDefault("diff.colorizer", d.Diff.Colorizer)
}

func parse(v *viper.Viper) *Config {
	return &Config{
		Ping: PingConfig{
			Count:    v.GetInt("ping.count"),
			Interval: v.GetDuration("ping.interval"),
			Timeout:  v.GetDuration("ping.timeout"),
		},
		Diff: DiffConfig{
			Tool:      v.GetString("diff.tool"),
			Colorizer: v.GetString("diff.colorizer"),
		},
	}
}
