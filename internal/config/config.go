package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Processing endpoints
	CSVEndpoint   string `mapstructure:"csv_endpoint" yaml:"csv_endpoint"`
	ExcelEndpoint string `mapstructure:"excel_endpoint" yaml:"excel_endpoint"`

	// HTTP configuration
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	MaxResponseMB  int `mapstructure:"max_response_mb" yaml:"max_response_mb"`

	// Where processed files are written when no --output is given
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// MaxResponseBytes converts MaxResponseMB to bytes.
func (c *Global) MaxResponseBytes() int64 {
	return int64(c.MaxResponseMB) << 20
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sheetscan"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sheetscan/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SHEETSCAN")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("csv_endpoint", "http://127.0.0.1:5000/uploadcsv")
	v.SetDefault("excel_endpoint", "http://127.0.0.1:5000/upload")
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("max_response_mb", 256)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings that would make every upload fail.
func (c *Global) Validate() error {
	if c.CSVEndpoint == "" {
		return fmt.Errorf("csv_endpoint must be set")
	}
	if c.ExcelEndpoint == "" {
		return fmt.Errorf("excel_endpoint must be set")
	}
	if c.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("http_timeout_sec must be positive, got %d", c.HTTPTimeoutSec)
	}
	if c.MaxResponseMB <= 0 {
		return fmt.Errorf("max_response_mb must be positive, got %d", c.MaxResponseMB)
	}
	return nil
}
