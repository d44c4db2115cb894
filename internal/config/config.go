package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPositionsPath = "data/positions.csv"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the file form of the command line settings. Flags given on the
// command line win over the file.
type Config struct {
	Positions string         `yaml:"positions"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Report    ReportConfig   `yaml:"report"`
	LogLevel  string         `yaml:"log_level"`
}

// PostgresConfig switches the position source to a database book when DSN is set.
type PostgresConfig struct {
	DSN  string `yaml:"dsn"`
	Book string `yaml:"book"`
}

type ReportConfig struct {
	Format   string `yaml:"format"`   // text, csv or json
	Currency string `yaml:"currency"` // ISO 4217 code, empty prints bare numbers
	Output   string `yaml:"output"`   // file path, empty for stdout
}

func Default() Config {
	return Config{
		Positions: DefaultPositionsPath,
		Postgres:  PostgresConfig{Book: "default"},
		Report:    ReportConfig{Format: "text"},
		LogLevel:  "info",
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Postgres.DSN == "" && c.Positions == "" {
		return fmt.Errorf("%w: positions path or postgres dsn required", ErrInvalidConfig)
	}
	if c.Postgres.DSN != "" && c.Postgres.Book == "" {
		return fmt.Errorf("%w: postgres book required with a dsn", ErrInvalidConfig)
	}
	switch c.Report.Format {
	case "", "text", "csv", "json":
	default:
		return fmt.Errorf("%w: report format %q", ErrInvalidConfig, c.Report.Format)
	}
	return nil
}
