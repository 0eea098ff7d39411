// Package config loads runtime configuration for the POS terminal.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string          base URL of the server of record
//	-shop int          shop the terminal sells for
//	-tenant int        tenant the shop belongs to
//	-db string         path of the local SQLite store
//	-token string      API bearer token (prompted for when empty)
//	-csrf string       CSRF token sent on state-changing requests
//	-i int             online status check interval (seconds)
//	-sync duration     catalog auto-sync interval
//	-reconcile duration offline queue reconcile interval
//	-max-age duration  how long cached catalog records are kept
//	-tax string        tax rate in percent, e.g. 7.5
//	-tax-enabled       apply tax to sales (use -tax-enabled=false to turn off)
//	-timeout duration  HTTP request timeout
//	-log-level string  debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "shop_id": 1,
//	  "tenant_id": 1,
//	  "db_path": "data/pos.db",
//	  "online_check_interval": "3s",
//	  "sync_interval": "5m",
//	  "reconcile_interval": "30s",
//	  "cache_max_age": "24h",
//	  "tax_rate": "7.5",
//	  "tax_enabled": true
//	}
package config
