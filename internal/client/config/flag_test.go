package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "Test1 OK",
			args: []string{"cmd", "-a", "http://pos:9090", "-shop", "3", "-tenant", "2", "-i", "10",
				"-sync", "1m", "-tax", "7.5", "-tax-enabled", "-token", "t0k", "-unknown", "x"},
			expected: &Config{
				ServerURL:           "http://pos:9090",
				ShopID:              3,
				TenantID:            2,
				APIToken:            "t0k",
				OnlineCheckInterval: 10 * time.Second,
				SyncInterval:        time.Minute,
				TaxRate:             decimal.RequireFromString("7.5"),
				TaxEnabled:          true,
			},
		},
		{name: "Test2 incorrect check interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{name: "Test3 incorrect tax rate", args: []string{"cmd", "-tax", "seven"}, expectPanic: true},
		{name: "Test4 incorrect shop", args: []string{"cmd", "-shop", "x1"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config, decimalEqual))
		})
	}
}
