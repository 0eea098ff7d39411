package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophpos/internal/flagx"
)

var flagNames = []string{"a", "d", "r", "s", "t", "u", "p", "b", "g", "e", "log-level", "issue"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      HTTP bind address (e.g., ":8080")
//	-d string      PostgreSQL DSN
//	-r string      Redis address, "" disables the idempotency cache
//	-s string      JWT HMAC secret key
//	-t duration    token validity
//	-u string      S3 root user
//	-p string      S3 root password
//	-b string      S3 bucket name
//	-g string      S3 region
//	-e string      S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-log-level     debug, info, warn or error
//	-issue int     print a token pair for the tenant and exit
//
// os.Args is first filtered down to these flags with flagx.FilterArgs.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 journal bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.Int64Var(&config.IssueTenant, "issue", config.IssueTenant, "issue tokens for tenant and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
