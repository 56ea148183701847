package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Local store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Server store backends.
const (
	ServerStorePostgres = "postgres"
	ServerStoreMemory   = "memory"
)

const envPrefix = "SAVELATER_"

// Client configures the CLI / device side: local store, remote and sync loop.
type Client struct {
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => console encoder, false => JSON
	LogFile   string // rotated log file; empty => stderr

	Owner string // active account; empty => records stay unassigned

	Store      string // "sqlite" | "redis" | "memory"
	SQLitePath string // ex: ~/.savelater/savelater.db

	// Redis (key-value backend)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisNamespace      string        // key namespace, one per device/profile
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts

	// Remote store
	RemoteURL     string        // ex: "https://links.example.com"; empty => offline only
	RemoteToken   string        // optional bearer token
	RemoteTimeout time.Duration // per remote call

	// Background sync
	SyncInterval   time.Duration // daemon tick
	SyncMaxBackoff time.Duration // cap for the delay after consecutive failures

	// Tombstone garbage collection (daemon)
	GCInterval   time.Duration
	TombstoneTTL time.Duration // tombstones that can never sync are purged after this
}

// Server configures the remote authoritative store.
type Server struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout

	LogLevel  string
	PrettyLog bool

	Store           string // "postgres" | "memory"
	DatabaseURL     string // postgres DSN
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	DBConnMaxIdle   time.Duration
	MigrateOnStart  bool
	AuthToken       string // optional bearer token required on /api
	AuthRequired    bool   // true => AuthToken must be set
	AllowedOrigins  []string
	AllowedCIDRS    []string // restrict healthz/readyz
	TrustProxy      bool     // trust X-Forwarded-For for CIDR checks
	CORSMaxAgeHours int
	RateLimitBurst  int // 0 => no rate limiting on /api
	RateLimitPerMin int // token refill per client IP per minute
}

// env resolves keys from the process environment first, then from the
// optional YAML file named by SAVELATER_CONFIG.
type env struct {
	file map[string]string
}

func newEnv() (*env, error) {
	e := &env{file: map[string]string{}}
	path := os.Getenv(envPrefix + "CONFIG")
	if path == "" {
		return e, nil
	}
	if err := e.loadFile(path); err != nil {
		return nil, err
	}
	return e, nil
}

// loadFile reads a flat YAML mapping. Keys are the variable names without
// the SAVELATER_ prefix, lowercase allowed: `remote_url: https://...`.
func (e *env) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		if !strings.HasPrefix(key, envPrefix) {
			key = envPrefix + key
		}
		e.file[key] = v
	}
	return nil
}

func LoadClient() (*Client, error) {
	e, err := newEnv()
	if err != nil {
		return nil, err
	}
	return loadClient(e)
}

func loadClient(e *env) (*Client, error) {
	cfg := &Client{
		// Logging
		LogLevel:  e.getenv("SAVELATER_LOG_LEVEL", "info"),
		PrettyLog: e.mustBool("SAVELATER_PRETTY_LOG", false),
		LogFile:   e.getenv("SAVELATER_LOG_FILE", defaultDataPath("savelater.log")),

		Owner: e.getenv("SAVELATER_OWNER", ""),

		// Local store
		Store:      strings.ToLower(e.getenv("SAVELATER_STORE", StoreSQLite)),
		SQLitePath: e.getenv("SAVELATER_SQLITE_PATH", defaultDataPath("savelater.db")),

		// Redis settings
		RedisAddr:           e.getenv("SAVELATER_REDIS_ADDR", "localhost:6379"),
		RedisUser:           e.getenv("SAVELATER_REDIS_USERNAME", ""),
		RedisPassword:       e.getenv("SAVELATER_REDIS_PASSWORD", ""),
		RedisDB:             e.getenvInt("SAVELATER_REDIS_DB", 0),
		RedisNamespace:      e.getenv("SAVELATER_REDIS_NAMESPACE", "default"),
		RedisDT:             e.mustDuration("SAVELATER_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             e.mustDuration("SAVELATER_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             e.mustDuration("SAVELATER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       e.getenvInt("SAVELATER_REDIS_POOL_SIZE", 4),
		RedisConnectTimeout: e.mustDuration("SAVELATER_REDIS_CONNECT_TIMEOUT", 10*time.Second),
		RedisRetryInterval:  e.mustDuration("SAVELATER_REDIS_RETRY_INTERVAL", 500*time.Millisecond),
		RedisMaxWait:        e.mustDuration("SAVELATER_REDIS_MAX_WAIT", 5*time.Second),
		RedisPingTimeout:    e.mustDuration("SAVELATER_REDIS_PING_TIMEOUT", 2*time.Second),
		RedisWarnThreshold:  e.getenvInt("SAVELATER_REDIS_WARN_THRESHOLD", 3),

		// Remote
		RemoteURL:     strings.TrimRight(e.getenv("SAVELATER_REMOTE_URL", ""), "/"),
		RemoteToken:   e.getenv("SAVELATER_REMOTE_TOKEN", ""),
		RemoteTimeout: e.mustDuration("SAVELATER_REMOTE_TIMEOUT", 10*time.Second),

		// Sync loop
		SyncInterval:   e.mustDuration("SAVELATER_SYNC_INTERVAL", 5*time.Minute),
		SyncMaxBackoff: e.mustDuration("SAVELATER_SYNC_MAX_BACKOFF", 30*time.Minute),

		GCInterval:   e.mustDuration("SAVELATER_GC_INTERVAL", 24*time.Hour),
		TombstoneTTL: e.mustDuration("SAVELATER_TOMBSTONE_TTL", 30*24*time.Hour),
	}

	switch cfg.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid SAVELATER_STORE %q (want sqlite, redis or memory)", cfg.Store)
	}

	if cfg.RemoteTimeout <= 0 {
		return nil, fmt.Errorf("SAVELATER_REMOTE_TIMEOUT must be > 0, got %v", cfg.RemoteTimeout)
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = redact(cfg.RedisPassword)
		cfgCopy.RemoteToken = redact(cfg.RemoteToken)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg, nil
}

func LoadServer() *Server {
	e, err := newEnv()
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}
	return loadServer(e)
}

func loadServer(e *env) *Server {
	cfg := &Server{
		// Server settings
		ListenPort:      e.getenv("SAVELATER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: e.mustDuration("SAVELATER_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  e.mustDuration("SAVELATER_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  e.getenv("SAVELATER_LOG_LEVEL", "info"),
		PrettyLog: e.mustBool("SAVELATER_PRETTY_LOG", true),

		// Storage
		Store:          strings.ToLower(e.getenv("SAVELATER_SERVER_STORE", ServerStorePostgres)),
		DBMaxOpenConns: e.getenvInt("SAVELATER_DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: e.getenvInt("SAVELATER_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:  e.mustDuration("SAVELATER_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBConnMaxIdle:  e.mustDuration("SAVELATER_DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		MigrateOnStart: e.mustBool("SAVELATER_MIGRATE_ON_START", true),

		// Access
		AuthToken:       e.getenv("SAVELATER_SERVER_TOKEN", ""),
		AuthRequired:    e.mustBool("SAVELATER_SERVER_TOKEN_REQUIRED", false),
		AllowedOrigins:  splitAndTrim(e.getenv("SAVELATER_ALLOWED_ORIGINS", "*")),
		AllowedCIDRS:    parseAllowedIPs(e.getenv("SAVELATER_ALLOWED_CIDRS", "")),
		TrustProxy:      e.mustBool("SAVELATER_TRUST_PROXY", false),
		CORSMaxAgeHours: e.getenvInt("SAVELATER_CORS_MAX_AGE_HOURS", 1),
		RateLimitBurst:  e.getenvInt("SAVELATER_RATE_LIMIT_BURST", 200),
		RateLimitPerMin: e.getenvInt("SAVELATER_RATE_LIMIT_PER_MIN", 600),
	}

	switch cfg.Store {
	case ServerStorePostgres:
		cfg.DatabaseURL = e.requireEnv("SAVELATER_DATABASE_URL")
	case ServerStoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid SAVELATER_SERVER_STORE %q (want postgres or memory)", cfg.Store))
	}

	if cfg.AuthRequired && cfg.AuthToken == "" {
		panic("❌ FATAL: SAVELATER_SERVER_TOKEN is required when SAVELATER_SERVER_TOKEN_REQUIRED=true")
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.AuthToken = redact(cfg.AuthToken)
		cfgCopy.DatabaseURL = redact(cfg.DatabaseURL)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}

// defaultDataPath places files under ~/.savelater, falling back to the
// working directory when no home directory is available.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return name
	}
	return filepath.Join(home, ".savelater", name)
}

// helpers
func (e *env) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e.file[key]
}

func (e *env) getenv(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e *env) requireEnv(key string) string {
	v := e.lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func (e *env) getenvInt(key string, def int) int {
	if v := e.lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (e *env) mustBool(key string, def bool) bool {
	if v := e.lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func (e *env) mustDuration(key string, def time.Duration) time.Duration {
	if v := e.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
