package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string
	RedisAddr   string

	// AllowedOrigins doubles as the CORS allow-list and the sign-in message
	// domain allow-list: a signed message must declare one of these origins.
	AllowedOrigins []string

	SessionSecret    string
	SessionSecretARN string
	AWSRegion        string
	SessionTokenTTL  time.Duration
	NonceTTL         time.Duration

	ChainRPCURL      string
	ChainID          int64
	TokenContract    string
	TokenDecimals    int
	TokenCurrency    string
	ChainCallTimeout time.Duration

	WorldIDAppID    string
	WorldIDActionID string
	WorldIDBaseURL  string

	AuthRateLimitPerMin int

	LogLevel                 string
	LogFormat                string
	OTELTracingEnabled       bool
	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELEnvironment          string
	OTELTraceSamplingRatio   float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		AllowedOrigins:           splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SessionSecret:            os.Getenv("SESSION_SECRET"),
		SessionSecretARN:         os.Getenv("SESSION_SECRET_ARN"),
		AWSRegion:                getEnv("AWS_REGION", "eu-west-2"),
		ChainRPCURL:              os.Getenv("CHAIN_RPC_URL"),
		TokenContract:            os.Getenv("WLD_CONTRACT_ADDRESS"),
		TokenCurrency:            getEnv("TOKEN_CURRENCY", "WLD"),
		WorldIDAppID:             os.Getenv("WORLD_ID_APP_ID"),
		WorldIDActionID:          os.Getenv("WORLD_ID_ACTION_ID"),
		WorldIDBaseURL:           getEnv("WORLD_ID_BASE_URL", "https://developer.worldcoin.org"),
		AuthRateLimitPerMin:      getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "worldfund-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TOKEN_TTL: %w", err)
	}
	cfg.SessionTokenTTL = sessionTTL

	nonceTTL, err := time.ParseDuration(getEnv("NONCE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parse NONCE_TTL: %w", err)
	}
	cfg.NonceTTL = nonceTTL

	chainTimeout, err := time.ParseDuration(getEnv("CHAIN_CALL_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse CHAIN_CALL_TIMEOUT: %w", err)
	}
	cfg.ChainCallTimeout = chainTimeout

	chainID, err := strconv.ParseInt(getEnv("CHAIN_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse CHAIN_ID: %w", err)
	}
	cfg.ChainID = chainID
	cfg.TokenDecimals = getEnvInt("WLD_TOKEN_DECIMALS", 18)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate collects every configuration fault at once: a missing option is a
// startup failure, never a per-request error.
func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required")
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, "CORS_ALLOWED_ORIGINS is required")
	}
	if c.SessionSecret == "" && c.SessionSecretARN == "" {
		errs = append(errs, "one of SESSION_SECRET or SESSION_SECRET_ARN is required")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		errs = append(errs, "SESSION_SECRET must be at least 32 chars")
	}
	if c.SessionTokenTTL <= 0 || c.SessionTokenTTL > 30*24*time.Hour {
		errs = append(errs, "SESSION_TOKEN_TTL must be between 1s and 30d")
	}
	if c.NonceTTL <= 0 || c.NonceTTL > time.Hour {
		errs = append(errs, "NONCE_TTL must be between 1s and 1h")
	}
	if c.ChainRPCURL == "" {
		errs = append(errs, "CHAIN_RPC_URL is required")
	}
	if c.ChainID <= 0 {
		errs = append(errs, "CHAIN_ID must be > 0")
	}
	if c.TokenContract == "" {
		errs = append(errs, "WLD_CONTRACT_ADDRESS is required")
	}
	if c.TokenDecimals <= 0 || c.TokenDecimals > 36 {
		errs = append(errs, "WLD_TOKEN_DECIMALS must be between 1 and 36")
	}
	if c.ChainCallTimeout <= 0 {
		errs = append(errs, "CHAIN_CALL_TIMEOUT must be > 0")
	}
	if c.WorldIDAppID == "" {
		errs = append(errs, "WORLD_ID_APP_ID is required")
	}
	if c.WorldIDActionID == "" {
		errs = append(errs, "WORLD_ID_ACTION_ID is required")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
