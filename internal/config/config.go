package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, websocket excluded

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Backend string // "redis" | "memory"

	// Sessions
	JWTSecret string        // HMAC secret for session tokens (required)
	JWTIssuer string        // iss claim
	TokenTTL  time.Duration // lifetime of issued tokens

	// Bookmarks
	DeleteConfirmTTL   time.Duration  // how long a delete request waits for confirmation
	SweepInterval      time.Duration  // how often expired delete requests are dropped
	SnapshotLimit      int            // rows loaded when a view opens (0 = all)
	RecentLimit        int            // dashboard "recent" list size
	Location           *time.Location // timezone used for "added today"
	SubscriptionBuffer int            // queued change events per subscription
	WSPingInterval     time.Duration  // websocket keepalive

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict probes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // write requests allowed in a burst per IP
	RateLimitPerMin int // write requests refilled per IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SB_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SB_PRETTY_LOG", true),

		Backend: strings.ToLower(getenv("SB_BACKEND", BackendRedis)),

		// Sessions
		JWTSecret: requireEnv("SB_JWT_SECRET"),
		JWTIssuer: getenv("SB_JWT_ISSUER", "smartbookmark"),
		TokenTTL:  mustDuration("SB_TOKEN_TTL", 24*time.Hour),

		// Bookmarks
		DeleteConfirmTTL:   mustDuration("SB_DELETE_CONFIRM_TTL", 30*time.Second),
		SweepInterval:      mustDuration("SB_SWEEP_INTERVAL", time.Minute),
		SnapshotLimit:      getenvInt("SB_SNAPSHOT_LIMIT", 0),
		RecentLimit:        getenvInt("SB_RECENT_LIMIT", 5),
		Location:           mustLocation("SB_TIMEZONE", time.Local),
		SubscriptionBuffer: getenvInt("SB_SUBSCRIPTION_BUFFER", 64),
		WSPingInterval:     mustDuration("SB_WS_PING_INTERVAL", 30*time.Second),

		// Redis settings
		RedisAddr:           getenv("SB_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("SB_REDIS_USERNAME", ""),
		RedisPassword:       getenv("SB_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("SB_REDIS_DB", 0),
		RedisDT:             mustDuration("SB_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("SB_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("SB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("SB_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("SB_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("SB_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("SB_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("SB_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("SB_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SB_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("SB_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SB_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("SB_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("SB_RATE_LIMIT_PER_MIN", 60),
	}

	if cfg.Backend != BackendRedis && cfg.Backend != BackendMemory {
		panic(fmt.Sprintf("❌ FATAL: SB_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, cfg.Backend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.JWTSecret = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustLocation loads an IANA zone name ("Europe/Paris", "UTC", "Local").
func mustLocation(key string, def *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			return loc
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
