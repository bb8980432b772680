package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"etfdesk/internal/quote"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for etfdesk.
type Config struct {
	Server    Server    `yaml:"server"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Logging   Logging   `yaml:"logging"`
	Storage   Storage   `yaml:"storage"`
	Quotes    Quotes    `yaml:"quotes"`
	Session   Session   `yaml:"session"`
	Checklist Checklist `yaml:"checklist"`
	Market    Market    `yaml:"market"`
}

// Server holds network listener configuration.
type Server struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	GRPCPort       int      `yaml:"grpc_port"` // 0 disables the gRPC health listener
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Alpaca holds credentials and endpoints for the Alpaca APIs.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
	Feed      string `yaml:"feed"`
}

// Configured reports whether credentials are present.
func (a Alpaca) Configured() bool {
	return a.APIKey != "" && a.APISecret != ""
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage holds the archive database location. An empty SQLitePath
// disables archiving.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Quotes configures the price widgets.
type Quotes struct {
	Widgets         []quote.Widget `yaml:"widgets"`
	Timeout         time.Duration  `yaml:"timeout"`
	CacheTTL        time.Duration  `yaml:"cache_ttl"`
	MaxAttempts     int            `yaml:"max_attempts"`
	RetryDelay      time.Duration  `yaml:"retry_delay"`
	RateLimitPerMin int            `yaml:"rate_limit_per_min"` // negative disables limiting
	Parallel        int            `yaml:"parallel"`
}

// Session configures session lifetime and seeding.
type Session struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"` // negative keeps sessions until deleted
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Watchlist     []string      `yaml:"watchlist"`
}

// Checklist points at an optional checklist file.
type Checklist struct {
	Path string `yaml:"path"`
}

// Market holds calendar settings and trade form choices.
type Market struct {
	Timezone string   `yaml:"timezone"`
	Tickers  []string `yaml:"tickers"`
}

// Location loads the configured market time zone.
func (m Market) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides and fills in
// defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields defaults plus
// environment overrides.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = &Config{}
		applyEnvOverrides(cfg)
		applyDefaults(cfg)
		return cfg, validate(cfg)
	}
	return cfg, err
}

// validate rejects settings that would otherwise be dropped silently.
func validate(cfg *Config) error {
	for i, sym := range cfg.Session.Watchlist {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("session.watchlist[%d] is blank", i)
		}
	}
	for i, w := range cfg.Quotes.Widgets {
		if strings.TrimSpace(w.Symbol) == "" {
			return fmt.Errorf("quotes.widgets[%d] has no symbol", i)
		}
	}
	return nil
}

// applyDefaults fills zero values. Where a zero would otherwise mean "off",
// the field takes a negative value to disable the feature instead.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Alpaca.BaseURL == "" {
		cfg.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if len(cfg.Quotes.Widgets) == 0 {
		cfg.Quotes.Widgets = append([]quote.Widget(nil), quote.DefaultWidgets...)
	}
	if cfg.Quotes.Timeout == 0 {
		cfg.Quotes.Timeout = 5 * time.Second
	}
	if cfg.Quotes.MaxAttempts == 0 {
		cfg.Quotes.MaxAttempts = 1
	}
	if cfg.Quotes.RateLimitPerMin == 0 {
		cfg.Quotes.RateLimitPerMin = 200
	}
	if cfg.Quotes.Parallel == 0 {
		cfg.Quotes.Parallel = 4
	}
	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = 12 * time.Hour
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 5 * time.Minute
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "America/New_York"
	}
	if len(cfg.Market.Tickers) == 0 {
		cfg.Market.Tickers = []string{"TQQQ", "SQQQ", "Other"}
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ETFDESK_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ETFDESK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	if v := os.Getenv("ALPACA_FEED"); v != "" {
		cfg.Alpaca.Feed = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("ETFDESK_CHECKLIST"); v != "" {
		cfg.Checklist.Path = v
	}

	// Standard Alpaca env vars take highest priority; the SDK reads the same names.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
