package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRUSTLEDGER_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRUSTLEDGER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// --- Database ---
	setStr(&cfg.Database.DSN, "TRUSTLEDGER_DATABASE_DSN")
	setStr(&cfg.Database.Host, "TRUSTLEDGER_DATABASE_HOST")
	setInt(&cfg.Database.Port, "TRUSTLEDGER_DATABASE_PORT")
	setStr(&cfg.Database.Database, "TRUSTLEDGER_DATABASE_NAME")
	setStr(&cfg.Database.User, "TRUSTLEDGER_DATABASE_USER")
	setStr(&cfg.Database.Password, "TRUSTLEDGER_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "TRUSTLEDGER_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "TRUSTLEDGER_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "TRUSTLEDGER_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "TRUSTLEDGER_DATABASE_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "TRUSTLEDGER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRUSTLEDGER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRUSTLEDGER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRUSTLEDGER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRUSTLEDGER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRUSTLEDGER_REDIS_TLS_ENABLED")

	// --- Chain ---
	setStr(&cfg.Chain.RPCURL, "TRUSTLEDGER_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "TRUSTLEDGER_CHAIN_ID")
	setStr(&cfg.Chain.OperatorKey, "TRUSTLEDGER_CHAIN_OPERATOR_KEY")
	setStr(&cfg.Chain.EncryptedKeyPath, "TRUSTLEDGER_CHAIN_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Chain.KeyPassword, "TRUSTLEDGER_CHAIN_KEY_PASSWORD")
	setStr(&cfg.Chain.ExplorerURL, "TRUSTLEDGER_CHAIN_EXPLORER_URL")

	// --- SMTP ---
	setStr(&cfg.SMTP.Host, "TRUSTLEDGER_SMTP_HOST")
	setInt(&cfg.SMTP.Port, "TRUSTLEDGER_SMTP_PORT")
	setStr(&cfg.SMTP.User, "TRUSTLEDGER_SMTP_USER")
	setStr(&cfg.SMTP.Password, "TRUSTLEDGER_SMTP_PASSWORD")
	setStr(&cfg.SMTP.FromName, "TRUSTLEDGER_SMTP_FROM_NAME")
	setStr(&cfg.SMTP.FromEmail, "TRUSTLEDGER_SMTP_FROM_EMAIL")
	setStr(&cfg.SMTP.FrontendURL, "TRUSTLEDGER_FRONTEND_URL")

	// --- S3 ---
	setStr(&cfg.S3.Endpoint, "TRUSTLEDGER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRUSTLEDGER_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRUSTLEDGER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRUSTLEDGER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRUSTLEDGER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRUSTLEDGER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRUSTLEDGER_S3_FORCE_PATH_STYLE")

	// --- Server ---
	setInt(&cfg.Server.Port, "TRUSTLEDGER_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "TRUSTLEDGER_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "TRUSTLEDGER_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.CreateRateLimit, "TRUSTLEDGER_SERVER_CREATE_RATE_LIMIT")

	// --- Top-level ---
	setStr(&cfg.LogLevel, "TRUSTLEDGER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
