// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database path, auth, the persona
// responder, rate limiting, and observability.
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "fanchat-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig defines credential and session-token settings.
type AuthConfig struct {
	JWTSecret      string        // JWT_SECRET (required outside debug mode)
	TokenTTL       time.Duration // TOKEN_TTL, session token lifetime
	PasswordMinLen int           // PASSWORD_MIN_LEN, minimum password runes
}

// AvatarConfig defines the profile-picture store settings.
type AvatarConfig struct {
	Dir      string // AVATAR_DIR, on-disk object directory
	BaseURL  string // AVATAR_BASE_URL, public mount path
	MaxBytes int64  // AVATAR_MAX_BYTES, upload cap
}

// PersonaConfig defines the persona responder settings. Flavor is the
// deliberate choice between the two observed personas; it is never
// defaulted silently to the monetization-oriented one.
type PersonaConfig struct {
	APIKey          string        // OPENAI_API_KEY
	Flavor          string        // PERSONA_FLAVOR: flirty|support
	ImageEnabled    bool          // PERSONA_IMAGES, attach a generated image per reply
	ReplyDelayMin   time.Duration // REPLY_DELAY_MIN
	ReplyDelayMax   time.Duration // REPLY_DELAY_MAX (0 disables the delay)
	HistoryWindow   int           // PERSONA_HISTORY_WINDOW, turns sent upstream
	UpstreamTimeout time.Duration // PERSONA_UPSTREAM_TIMEOUT
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must cover the persona upstream budget plus the reply delay
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path

	// Auth / Avatar / Persona
	Auth    AuthConfig
	Avatar  AvatarConfig
	Persona PersonaConfig

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
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "app.db"),

		Auth: AuthConfig{
			JWTSecret:      getenv("JWT_SECRET", ""),
			TokenTTL:       getdur("TOKEN_TTL", 24*time.Hour),
			PasswordMinLen: getint("PASSWORD_MIN_LEN", 6),
		},

		Avatar: AvatarConfig{
			Dir:      getenv("AVATAR_DIR", "data/avatars"),
			BaseURL:  getenv("AVATAR_BASE_URL", "/avatars"),
			MaxBytes: int64(getint("AVATAR_MAX_BYTES", 5<<20)),
		},

		Persona: PersonaConfig{
			APIKey:          getenv("OPENAI_API_KEY", ""),
			Flavor:          strings.ToLower(getenv("PERSONA_FLAVOR", "support")),
			ImageEnabled:    getbool("PERSONA_IMAGES", false),
			ReplyDelayMin:   getdur("REPLY_DELAY_MIN", 1500*time.Millisecond),
			ReplyDelayMax:   getdur("REPLY_DELAY_MAX", 4*time.Second),
			HistoryWindow:   getint("PERSONA_HISTORY_WINDOW", 20),
			UpstreamTimeout: getdur("PERSONA_UPSTREAM_TIMEOUT", 60*time.Second),
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

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "fanchat-backend"),
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
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" && cfg.GinMode != "debug" {
		return cfg, errors.New("JWT_SECRET must be set outside debug mode")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be > 0")
	}
	if cfg.Auth.PasswordMinLen < 1 {
		return cfg, errors.New("PASSWORD_MIN_LEN must be >= 1")
	}
	if strings.TrimSpace(cfg.Avatar.Dir) == "" {
		return cfg, errors.New("AVATAR_DIR must not be empty")
	}
	if cfg.Avatar.MaxBytes <= 0 {
		return cfg, errors.New("AVATAR_MAX_BYTES must be > 0")
	}
	switch cfg.Persona.Flavor {
	case "flirty", "support":
	default:
		return cfg, errors.New("PERSONA_FLAVOR must be flirty or support")
	}
	if cfg.Persona.ReplyDelayMin < 0 || cfg.Persona.ReplyDelayMax < 0 {
		return cfg, errors.New("reply delay bounds must be >= 0")
	}
	if cfg.Persona.ReplyDelayMax > 0 && cfg.Persona.ReplyDelayMin > cfg.Persona.ReplyDelayMax {
		return cfg, errors.New("REPLY_DELAY_MIN must not exceed REPLY_DELAY_MAX")
	}
	if cfg.Persona.HistoryWindow < 1 {
		return cfg, errors.New("PERSONA_HISTORY_WINDOW must be >= 1")
	}
	// A persona reply holds the response open for the upstream call plus the
	// pacing delay; a shorter server write timeout would cut it off mid-flight.
	if cfg.WriteTimeout < cfg.Persona.UpstreamTimeout+cfg.Persona.ReplyDelayMax {
		return cfg, errors.New("WRITE_TIMEOUT must cover PERSONA_UPSTREAM_TIMEOUT plus REPLY_DELAY_MAX")
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
