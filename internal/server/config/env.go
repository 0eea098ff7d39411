package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded by parseEnv when present. Variables already set in the
// process environment win over the file.
var envFile = ".env"

// parseEnv overlays Config with GOPHPOS_* environment variables. A missing
// .env file is not an error; a malformed value panics.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	setEnvString(&cfg.EndpointAddr, "GOPHPOS_ADDR")
	setEnvString(&cfg.DatabaseDSN, "GOPHPOS_DATABASE_DSN")
	setEnvString(&cfg.RedisAddr, "GOPHPOS_REDIS_ADDR")
	setEnvString(&cfg.SecretKey, "GOPHPOS_SECRET_KEY")
	setEnvString(&cfg.S3RootUser, "GOPHPOS_S3_ROOT_USER")
	setEnvString(&cfg.S3RootPassword, "GOPHPOS_S3_ROOT_PASSWORD")
	setEnvString(&cfg.S3Bucket, "GOPHPOS_S3_BUCKET")
	setEnvString(&cfg.S3Region, "GOPHPOS_S3_REGION")
	setEnvString(&cfg.S3BaseEndpoint, "GOPHPOS_S3_BASE_ENDPOINT")
	setEnvString(&cfg.LogLevel, "GOPHPOS_LOG_LEVEL")

	if v, ok := os.LookupEnv("GOPHPOS_TOKEN_VALIDITY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.TokenValidityDuration = d
	}
}

func setEnvString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
