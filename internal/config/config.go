// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the database path, rate limiting,
// observability, and the store profile defaults seeded into the options table
// on first boot.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-store-api/internal/domain"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-store-api")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StoreConfig holds the store profile defaults. They seed the options table
// on first boot; stored options take precedence afterwards.
type StoreConfig struct {
	Name          string // STORE_NAME
	Description   string // STORE_DESCRIPTION
	URL           string // STORE_URL (absolute; pagination links force its scheme/host)
	Timezone      string // STORE_TIMEZONE (IANA name; empty means UTC)
	Currency      string // STORE_CURRENCY (ISO 4217)
	WeightUnit    string // STORE_WEIGHT_UNIT (e.g. "kg")
	DimensionUnit string // STORE_DIMENSION_UNIT (e.g. "cm")
	TaxIncluded   bool   // STORE_PRICES_INCLUDE_TAX
	SSLEnabled    bool   // STORE_FORCE_SSL
	Permalinks    bool   // STORE_PERMALINKS_ENABLED
	APIEnabled    bool   // STORE_API_ENABLED (administrative disable flag)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / API surface
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // mount prefix for the dispatch engine
	MaxBody     int64  // request body cap in bytes

	// App
	DBPath       string // SQLite path for the options table
	StoreVersion string // platform release marker shown in the index
	APIVersion   string // current major API generation marker (e.g. "v3")

	// Store profile defaults
	Store StoreConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / API surface
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api")),
		MaxBody:     int64(getint("MAX_BODY_BYTES", 1<<20)),

		// App
		DBPath:       getenv("DB_PATH", "store.db"),
		StoreVersion: getenv("STORE_VERSION", "1.0.0"),
		APIVersion:   getenv("API_VERSION", "v3"),

		// Store profile defaults (seeded into the options table on first boot)
		Store: StoreConfig{
			Name:          getenv("STORE_NAME", "Storefront"),
			Description:   getenv("STORE_DESCRIPTION", ""),
			URL:           getenv("STORE_URL", "http://localhost:8080"),
			Timezone:      getenv("STORE_TIMEZONE", ""),
			Currency:      getenv("STORE_CURRENCY", "USD"),
			WeightUnit:    getenv("STORE_WEIGHT_UNIT", "kg"),
			DimensionUnit: getenv("STORE_DIMENSION_UNIT", "cm"),
			TaxIncluded:   getbool("STORE_PRICES_INCLUDE_TAX", false),
			SSLEnabled:    getbool("STORE_FORCE_SSL", false),
			Permalinks:    getbool("STORE_PERMALINKS_ENABLED", true),
			APIEnabled:    getbool("STORE_API_ENABLED", true),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-store-api"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if !strings.HasPrefix(cfg.APIVersion, "v") {
		cfg.APIVersion = "v" + cfg.APIVersion
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.MaxBody <= 0 {
		return cfg, errors.New("MAX_BODY_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Store.URL) == "" {
		return cfg, errors.New("STORE_URL must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// StoreProfileDefaults flattens the store defaults into option rows keyed the
// way the repo seeds them.
func (c Config) StoreProfileDefaults() map[string]string {
	b := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return map[string]string{
		domain.OptStoreName:         c.Store.Name,
		domain.OptStoreDescription:  c.Store.Description,
		domain.OptStoreURL:          c.Store.URL,
		domain.OptTimezone:          c.Store.Timezone,
		domain.OptCurrency:          c.Store.Currency,
		domain.OptWeightUnit:        c.Store.WeightUnit,
		domain.OptDimensionUnit:     c.Store.DimensionUnit,
		domain.OptTaxIncluded:       b(c.Store.TaxIncluded),
		domain.OptSSLEnabled:        b(c.Store.SSLEnabled),
		domain.OptPermalinksEnabled: b(c.Store.Permalinks),
		domain.OptAPIEnabled:        b(c.Store.APIEnabled),
	}
}

// StoreProfile materializes the configured defaults as a profile value, used
// as the fallback when loading from the options table.
func (c Config) StoreProfile() domain.StoreProfile {
	return domain.StoreProfile{
		Name:              c.Store.Name,
		Description:       c.Store.Description,
		URL:               c.Store.URL,
		StoreVersion:      c.StoreVersion,
		APIVersion:        c.APIVersion,
		Timezone:          c.Store.Timezone,
		Currency:          c.Store.Currency,
		WeightUnit:        c.Store.WeightUnit,
		DimensionUnit:     c.Store.DimensionUnit,
		TaxIncluded:       c.Store.TaxIncluded,
		SSLEnabled:        c.Store.SSLEnabled,
		PermalinksEnabled: c.Store.Permalinks,
		APIEnabled:        c.Store.APIEnabled,
	}
}
