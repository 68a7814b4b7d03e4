package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"depscope/internal/drift"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`
	Query struct {
		MaxDepth  int `yaml:"max_depth"`
		TimeoutMS int `yaml:"timeout_ms"`
	} `yaml:"query"`
	// Drift thresholds are tunable constants, not fixed law.
	Drift struct {
		RenameFloor          float64 `yaml:"rename_floor"`
		MaxNameDistanceRatio float64 `yaml:"max_name_distance_ratio"`
		NameWeight           float64 `yaml:"name_weight"`
		ProximityWeight      float64 `yaml:"proximity_weight"`
	} `yaml:"drift"`
}

// Default returns the stock configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.DB.Path = "depscope.db"
	cfg.Query.MaxDepth = 3
	cfg.Query.TimeoutMS = 5000
	d := drift.DefaultConfig()
	cfg.Drift.RenameFloor = d.RenameFloor
	cfg.Drift.MaxNameDistanceRatio = d.MaxNameDistanceRatio
	cfg.Drift.NameWeight = d.NameWeight
	cfg.Drift.ProximityWeight = d.ProximityWeight
	return cfg
}

// Load reads the YAML config at path over the defaults, then applies
// environment overrides. A missing file is not an error: defaults plus
// environment win.
func Load(path string) (*Config, error) {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if root := os.Getenv("DEPSCOPE_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if db := os.Getenv("DEPSCOPE_DB"); db != "" {
		cfg.DB.Path = db
	}

	return cfg, nil
}

// QueryTimeout converts the configured timeout to a duration.
func (c *Config) QueryTimeout() time.Duration {
	if c.Query.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Query.TimeoutMS) * time.Millisecond
}

// DriftConfig maps the configured thresholds onto detector knobs.
func (c *Config) DriftConfig() drift.Config {
	return drift.Config{
		RenameFloor:          c.Drift.RenameFloor,
		MaxNameDistanceRatio: c.Drift.MaxNameDistanceRatio,
		NameWeight:           c.Drift.NameWeight,
		ProximityWeight:      c.Drift.ProximityWeight,
	}
}
