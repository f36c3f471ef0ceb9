// Package config loads the discovery engine's configuration from a YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the discovery engine recognises.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Fees      FeeConfig       `mapstructure:"fees"`
	Sizing    SizingConfig    `mapstructure:"sizing"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	API       APIConfig       `mapstructure:"api"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
}

// StoreConfig contains the embedded result-store settings.
type StoreConfig struct {
	DBPath           string `mapstructure:"db_path"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	BusyTimeoutMS    int    `mapstructure:"busy_timeout_ms"`
	MigrationsSource string `mapstructure:"migrations_source"` // "embedded" always, kept for parity with teacher's config surface
}

// RedisConfig backs the candle cache. Host left empty means "use the
// in-process TTL cache" instead of Redis.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DiscoveryConfig mirrors spec §6's recognised discovery options.
type DiscoveryConfig struct {
	Symbols               []string `mapstructure:"symbols"`
	Days                  int      `mapstructure:"days"`
	InitialCapital        float64  `mapstructure:"initial_capital"`
	RNGSeed               *int64   `mapstructure:"rng_seed"`
	CandleCacheTTLSeconds int      `mapstructure:"candle_cache_ttl_seconds"`
}

// FeeConfig is the dynamic Polymarket-style taker fee model (spec §4.2).
type FeeConfig struct {
	Rate     float64 `mapstructure:"fee_rate"`
	Exponent float64 `mapstructure:"fee_exponent"`
	Min      float64 `mapstructure:"fee_min"`
}

// SizingConfig is the default sizing mode, tagged per spec §3.
type SizingConfig struct {
	Mode       string  `mapstructure:"mode"` // "fixed" | "kelly" | "confidence"
	Amount     float64 `mapstructure:"amount"`
	Fraction   float64 `mapstructure:"fraction"`
	Base       float64 `mapstructure:"base"`
	Multiplier float64 `mapstructure:"multiplier"`
}

// FetcherConfig configures the external candle fetcher (spec §6).
type FetcherConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// APIConfig contains the status/query HTTP surface settings.
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load reads configuration from the given file (if non-empty) merged with
// defaults and `POLYDISCOVER_`-prefixed environment variable overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("POLYDISCOVER")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "polydiscover")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("store.db_path", "data/discovery.db")
	v.SetDefault("store.max_open_conns", 1) // single-writer discipline, spec §4.4/§5
	v.SetDefault("store.busy_timeout_ms", 5000)
	v.SetDefault("store.migrations_source", "embedded")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("discovery.symbols", []string{"BTCUSDT"})
	v.SetDefault("discovery.days", 365)
	v.SetDefault("discovery.initial_capital", 1000.0)
	v.SetDefault("discovery.candle_cache_ttl_seconds", 21600)

	v.SetDefault("fees.fee_rate", 0.25)
	v.SetDefault("fees.fee_exponent", 2.0)
	v.SetDefault("fees.fee_min", 0.0001)

	v.SetDefault("sizing.mode", "fixed")
	v.SetDefault("sizing.amount", 10.0)
	v.SetDefault("sizing.fraction", 0.25)
	v.SetDefault("sizing.base", 0.02)
	v.SetDefault("sizing.multiplier", 1.0)

	v.SetDefault("fetcher.base_url", "https://api.binance.com")
	v.SetDefault("fetcher.timeout_seconds", 30)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8088)
}

// ValidDays is the closed set of accepted `days` values (spec §3).
var ValidDays = map[int]bool{30: true, 60: true, 90: true, 180: true, 365: true}

// Validate checks the configuration against spec's declared ranges,
// returning a *ConfigError on any problem (spec §7: "configuration invalid").
func (c *Config) Validate() error {
	if !ValidDays[c.Discovery.Days] {
		return &ConfigError{Field: "discovery.days", Reason: fmt.Sprintf("must be one of 30,60,90,180,365, got %d", c.Discovery.Days)}
	}
	if len(c.Discovery.Symbols) == 0 {
		return &ConfigError{Field: "discovery.symbols", Reason: "must not be empty"}
	}
	if c.Discovery.InitialCapital <= 0 {
		return &ConfigError{Field: "discovery.initial_capital", Reason: "must be positive"}
	}
	switch c.Sizing.Mode {
	case "fixed", "kelly", "confidence":
	default:
		return &ConfigError{Field: "sizing.mode", Reason: fmt.Sprintf("unknown sizing mode %q", c.Sizing.Mode)}
	}
	if c.Fees.Rate < 0 || c.Fees.Exponent < 0 || c.Fees.Min < 0 {
		return &ConfigError{Field: "fees", Reason: "fee_rate, fee_exponent and fee_min must be non-negative"}
	}
	return nil
}

// ConfigError is the "configuration invalid" member of spec §7's error
// taxonomy: rejected at the request boundary, the agent never starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// CacheTTL returns the candle cache TTL as a time.Duration.
func (c *DiscoveryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CandleCacheTTLSeconds) * time.Second
}

// Addr returns the HTTP listen address for the status/query surface.
func (c *APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
