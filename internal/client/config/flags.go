package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/flagx"
	"github.com/dmitrijs2005/gophpos/internal/money"
)

var flagNames = []string{
	"a", "shop", "tenant", "db", "token", "csrf", "i",
	"sync", "reconcile", "max-age", "tax", "tax-enabled", "timeout", "log-level",
}

// parseFlags populates Config fields from command-line flags. Only the flags
// listed in flagNames are considered; see the package documentation. It
// panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server of record")
	fs.Int64Var(&cfg.ShopID, "shop", cfg.ShopID, "shop id")
	fs.Int64Var(&cfg.TenantID, "tenant", cfg.TenantID, "tenant id")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "local store path")
	fs.StringVar(&cfg.APIToken, "token", cfg.APIToken, "API bearer token")
	fs.StringVar(&cfg.CSRFToken, "csrf", cfg.CSRFToken, "CSRF token")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.SyncInterval, "sync", cfg.SyncInterval, "catalog sync interval")
	fs.DurationVar(&cfg.ReconcileInterval, "reconcile", cfg.ReconcileInterval, "offline queue reconcile interval")
	fs.DurationVar(&cfg.CacheMaxAge, "max-age", cfg.CacheMaxAge, "cached catalog max age")
	taxRate := fs.String("tax", cfg.TaxRate.String(), "tax rate (percent)")
	fs.BoolVar(&cfg.TaxEnabled, "tax-enabled", cfg.TaxEnabled, "apply tax")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	rate, err := money.Parse(*taxRate)
	if err != nil {
		panic(err)
	}
	cfg.TaxRate = rate
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
