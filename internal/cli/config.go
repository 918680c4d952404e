package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rfkit/rfkit/pkg/errors"
)

// Config holds the on-disk settings loaded from config.toml. Flags override
// everything here; the file only moves defaults.
type Config struct {
	FDSN   FDSNConfig   `toml:"fdsn"`
	Plot   PlotConfig   `toml:"plot"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// FDSNConfig selects the web service endpoint.
type FDSNConfig struct {
	BaseURL string `toml:"base_url"`
}

// PlotConfig carries figure geometry defaults.
type PlotConfig struct {
	Scale    float64 `toml:"scale"`
	FigWidth float64 `toml:"fig_width"`
	FillPos  string  `toml:"fill_pos"`
	FillNeg  string  `toml:"fill_neg"`
}

// CacheConfig selects the waveform cache backend. RedisAddr takes precedence
// over Dir when both are set.
type CacheConfig struct {
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLHours      int    `toml:"ttl_hours"`
}

// ServerConfig configures the figure server.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Plot:   PlotConfig{Scale: 1, FigWidth: 7},
		Server: ServerConfig{Addr: ":8080", MongoDB: appName},
	}
}

// LoadConfig reads a TOML config file and overlays it on the defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, nil
}
