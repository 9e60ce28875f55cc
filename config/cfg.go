package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type (
	LoggerConfig struct {
		Level       string `yaml:"level"`
		Destination string `yaml:"destination,omitempty"`
		Mode        string `yaml:"mode,omitempty"`
	}

	LoggingConfig struct {
		FileLogger    LoggerConfig `yaml:"file"`
		ConsoleLogger LoggerConfig `yaml:"console"`
	}

	Config struct {
		Version int           `yaml:"version"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func (conf *LoggerConfig) validate(name string) error {
	switch conf.Level {
	case "none", "normal", "debug":
	default:
		return fmt.Errorf("bad %s logger level %q (none, normal, debug)", name, conf.Level)
	}
	switch conf.Mode {
	case "", "append", "overwrite":
	default:
		return fmt.Errorf("bad %s logger mode %q (append, overwrite)", name, conf.Mode)
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported configuration version %d", cfg.Version)
	}
	if err := cfg.Logging.ConsoleLogger.validate("console"); err != nil {
		return err
	}
	if err := cfg.Logging.FileLogger.validate("file"); err != nil {
		return err
	}
	if cfg.Logging.FileLogger.Level != "none" && len(cfg.Logging.FileLogger.Destination) == 0 {
		return fmt.Errorf("file logging requested without destination")
	}
	return nil
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposing its values on top of the embedded defaults, and validates
// the result. An empty path means pure defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prepare returns the default embedded configuration.
func Prepare() ([]byte, error) {
	return defaultConfig, nil
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
