// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server, logging,
// rate limiting, observability, and the external provider settings used by
// the generation pipelines.
//
// Provider credentials are deliberately not required here: a missing key or
// endpoint surfaces per request as a configuration error, so the process can
// still serve health checks and the endpoints that are configured.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
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
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig points at the identity provider (Supabase GoTrue API).
type AuthConfig struct {
	URL     string        // AUTH_URL, e.g. https://xyz.supabase.co
	AnonKey string        // AUTH_ANON_KEY
	Timeout time.Duration // AUTH_TIMEOUT
}

// CompletionConfig configures the OpenAI-compatible chat completion provider.
type CompletionConfig struct {
	APIKey  string        // COMPLETION_API_KEY (falls back to OPENROUTER_API_KEY)
	BaseURL string        // COMPLETION_BASE_URL
	Model   string        // COMPLETION_MODEL
	Referer string        // COMPLETION_REFERER, optional attribution header
	Title   string        // COMPLETION_TITLE, optional attribution header
	Timeout time.Duration // COMPLETION_TIMEOUT
}

// ImageConfig configures the asynchronous image task provider.
type ImageConfig struct {
	APIKey      string        // IMAGE_API_KEY
	BaseURL     string        // IMAGE_BASE_URL
	TasksPath   string        // IMAGE_TASKS_PATH, submit = POST path, status = GET path/{id}
	AuthHeader  string        // IMAGE_AUTH_HEADER, "Authorization" sends a Bearer token
	NumImages   int           // IMAGE_NUM_IMAGES
	AspectRatio string        // IMAGE_ASPECT_RATIO
	Timeout     time.Duration // IMAGE_TIMEOUT, per HTTP call

	MaxBodyBytes int64 // IMAGE_MAX_BODY_BYTES, larger responses fail as upstream errors
}

// PollConfig bounds the task poll loop.
type PollConfig struct {
	Interval      time.Duration // POLL_INTERVAL
	MaxAttempts   int           // POLL_MAX_ATTEMPTS
	MaxConcurrent int           // POLL_MAX_CONCURRENT, process-wide cap on poll loops
	GuardTTL      time.Duration // POLL_GUARD_TTL, Redis task guard lease; re-armed every TTL/3 while polling
}

// RedisConfig enables the cross-replica task guard when Addr is set.
type RedisConfig struct {
	Addr     string // REDIS_ADDR
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB
}

// BrandConfig overrides the brand identity rendered into prompts.
type BrandConfig struct {
	Name string // BRAND_NAME
	City string // BRAND_CITY
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must outlive a full poll loop
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	GzipEnabled       bool

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path for idempotent replays

	// Request limits
	MaxIdeaRunes int // longest accepted idea

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig

	// Providers
	Auth       AuthConfig
	Completion CompletionConfig
	Image      ImageConfig
	Poll       PollConfig
	Redis      RedisConfig
	Brand      BrandConfig
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
		WriteTimeout:      getdur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		GzipEnabled:       getbool("GZIP_ENABLED", true),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Storage
		DBPath: getenv("DB_PATH", "app.db"),

		MaxIdeaRunes: getint("MAX_IDEA_RUNES", 2000),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 1.0),
		RateBurst: getint("RATE_BURST", 5),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-campaign-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},

		// Providers
		Auth: AuthConfig{
			URL:     strings.TrimRight(firstEnv("AUTH_URL", "SUPABASE_URL"), "/"),
			AnonKey: firstEnv("AUTH_ANON_KEY", "SUPABASE_ANON_KEY"),
			Timeout: getdur("AUTH_TIMEOUT", 5*time.Second),
		},
		Completion: CompletionConfig{
			APIKey:  firstEnv("COMPLETION_API_KEY", "OPENROUTER_API_KEY"),
			BaseURL: getenv("COMPLETION_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   getenv("COMPLETION_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
			Referer: getenv("COMPLETION_REFERER", ""),
			Title:   getenv("COMPLETION_TITLE", ""),
			Timeout: getdur("COMPLETION_TIMEOUT", 60*time.Second),
		},
		Image: ImageConfig{
			APIKey:      getenv("IMAGE_API_KEY", ""),
			BaseURL:     strings.TrimRight(getenv("IMAGE_BASE_URL", "https://api.freepik.com"), "/"),
			TasksPath:   normalizeBasePath(getenv("IMAGE_TASKS_PATH", "/v1/ai/text-to-image/imagen3")),
			AuthHeader:  getenv("IMAGE_AUTH_HEADER", "x-freepik-api-key"),
			NumImages:   getint("IMAGE_NUM_IMAGES", 1),
			AspectRatio: getenv("IMAGE_ASPECT_RATIO", "square_1_1"),
			Timeout:     getdur("IMAGE_TIMEOUT", 15*time.Second),

			MaxBodyBytes: int64(getint("IMAGE_MAX_BODY_BYTES", 32<<20)),
		},
		Poll: PollConfig{
			Interval:      getdur("POLL_INTERVAL", 2*time.Second),
			MaxAttempts:   getint("POLL_MAX_ATTEMPTS", 30),
			MaxConcurrent: getint("POLL_MAX_CONCURRENT", 16),
			GuardTTL:      getdur("POLL_GUARD_TTL", 2*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},
		Brand: BrandConfig{
			Name: getenv("BRAND_NAME", ""),
			City: getenv("BRAND_CITY", ""),
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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MaxIdeaRunes < 1 {
		return cfg, errors.New("MAX_IDEA_RUNES must be >= 1")
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
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if cfg.Poll.Interval <= 0 {
		return cfg, errors.New("POLL_INTERVAL must be > 0")
	}
	if cfg.Poll.MaxAttempts < 1 {
		return cfg, errors.New("POLL_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.Poll.MaxConcurrent < 1 {
		return cfg, errors.New("POLL_MAX_CONCURRENT must be >= 1")
	}
	if cfg.Poll.GuardTTL <= 0 {
		return cfg, errors.New("POLL_GUARD_TTL must be > 0")
	}
	if cfg.Image.NumImages < 1 {
		return cfg, errors.New("IMAGE_NUM_IMAGES must be >= 1")
	}
	if cfg.Image.MaxBodyBytes < 1<<20 {
		return cfg, errors.New("IMAGE_MAX_BODY_BYTES must be >= 1048576")
	}
	if cfg.Auth.Timeout <= 0 || cfg.Completion.Timeout <= 0 || cfg.Image.Timeout <= 0 {
		return cfg, errors.New("provider timeouts must be positive durations")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

// firstEnv returns the first non-empty value among keys, trimmed.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
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
