package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds runtime settings for the POS terminal.
type Config struct {
	ServerURL string
	ShopID    int64
	TenantID  int64
	DBPath    string

	APIToken  string
	CSRFToken string

	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	ReconcileInterval   time.Duration
	CacheMaxAge         time.Duration
	HTTPTimeout         time.Duration

	TaxRate    decimal.Decimal
	TaxEnabled bool

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ShopID = 1
	c.TenantID = 1
	c.DBPath = "data/pos.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.ReconcileInterval = 30 * time.Second
	c.CacheMaxAge = 24 * time.Hour
	c.HTTPTimeout = 10 * time.Second
	c.TaxRate = decimal.Zero
	c.TaxEnabled = false
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
