package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/gophpos/internal/flagx"
	"github.com/dmitrijs2005/gophpos/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value fields that are absent from the file leave the Config as is.
type JsonConfig struct {
	ServerURL           string           `json:"server_url"`
	ShopID              int64            `json:"shop_id"`
	TenantID            int64            `json:"tenant_id"`
	DBPath              string           `json:"db_path"`
	APIToken            string           `json:"api_token"`
	CSRFToken           string           `json:"csrf_token"`
	OnlineCheckInterval timex.Duration   `json:"online_check_interval"`
	SyncInterval        timex.Duration   `json:"sync_interval"`
	ReconcileInterval   timex.Duration   `json:"reconcile_interval"`
	CacheMaxAge         timex.Duration   `json:"cache_max_age"`
	HTTPTimeout         timex.Duration   `json:"http_timeout"`
	TaxRate             *decimal.Decimal `json:"tax_rate"`
	TaxEnabled          *bool            `json:"tax_enabled"`
	LogLevel            string           `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.APIToken, jc.APIToken)
	setString(&cfg.CSRFToken, jc.CSRFToken)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.ShopID != 0 {
		cfg.ShopID = jc.ShopID
	}
	if jc.TenantID != 0 {
		cfg.TenantID = jc.TenantID
	}

	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.ReconcileInterval, jc.ReconcileInterval)
	setDuration(&cfg.CacheMaxAge, jc.CacheMaxAge)
	setDuration(&cfg.HTTPTimeout, jc.HTTPTimeout)

	if jc.TaxRate != nil {
		cfg.TaxRate = *jc.TaxRate
	}
	if jc.TaxEnabled != nil {
		cfg.TaxEnabled = *jc.TaxEnabled
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
