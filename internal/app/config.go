package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/homeservice/hsbot/core/config"
	coredatabase "github.com/homeservice/hsbot/core/database"
)

// Config aggregates core bot settings with the application database section.
type Config struct {
	core     *coreconfig.Config
	Database coredatabase.Config
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return c.core
}

// Load reads the shared YAML file plus environment overrides for both
// the core sections and the database section.
func Load(path string) (*Config, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Database coredatabase.Config `yaml:"database"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &raw.Database); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	normalizeDatabase(&raw.Database)

	return &Config{core: core, Database: raw.Database}, nil
}

func normalizeDatabase(db *coredatabase.Config) {
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 10
	}
}
