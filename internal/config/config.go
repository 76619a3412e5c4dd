package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for coinwatch.
type Config struct {
	Upstream Upstream `yaml:"upstream"`
	Server   Server   `yaml:"server"`
	Client   Client   `yaml:"client"`
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
}

// Upstream holds the market-data provider endpoint and credentials consumed
// by the proxy. Both fields are required for upstream calls but are only
// validated at first use.
type Upstream struct {
	APIURL          string `yaml:"api_url"`
	APIKey          string `yaml:"api_key"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// Server holds the proxy listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Client holds dashboard client configuration.
type Client struct {
	ProxyURL        string `yaml:"proxy_url"`
	ConvertCurrency string `yaml:"convert_currency"`
	ListingsLimit   int    `yaml:"listings_limit"`
}

// Storage holds paths for the optional snapshot archive. An empty DataDir
// disables archiving.
type Storage struct {
	DataDir string `yaml:"data_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies defaults, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns a Config with defaults and environment overrides applied,
// for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8790
	}
	if cfg.Client.ProxyURL == "" {
		cfg.Client.ProxyURL = "http://localhost:8790"
	}
	if cfg.Client.ConvertCurrency == "" {
		cfg.Client.ConvertCurrency = "USD"
	}
	if cfg.Client.ListingsLimit == 0 {
		cfg.Client.ListingsLimit = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CMC_API_URL"); v != "" {
		cfg.Upstream.APIURL = v
	}
	if v := os.Getenv("CMC_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}

	if v := os.Getenv("COINWATCH_PROXY_URL"); v != "" {
		cfg.Client.ProxyURL = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical CoinMarketCap env vars (highest priority — the names the
	// provider documents for its clients).
	if v := os.Getenv("COINMARKETCAP_API_URL"); v != "" {
		cfg.Upstream.APIURL = v
	}
	if v := os.Getenv("COINMARKETCAP_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
}
