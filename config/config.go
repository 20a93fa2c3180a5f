package config

import (
	"time"
)

// Store backends.
const (
	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Consistency modes for the read-modify-write cycle of a recorded view.
const (
	ConsistencyNone        = "none"
	ConsistencyMutex       = "mutex"
	ConsistencyQueue       = "queue"
	ConsistencyTransaction = "transaction"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Redis     RedisConfig     `koanf:"redis"`
	S3        S3Config        `koanf:"s3"`
	SQLite    SQLiteConfig    `koanf:"sqlite"`
	Bolt      BoltConfig      `koanf:"bolt"`
	Geo       GeoConfig       `koanf:"geo"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Events    EventsConfig    `koanf:"events"`
	Log       LogConfig       `koanf:"log"`
	Sentry    SentryConfig    `koanf:"sentry"`
	Summary   SummaryConfig   `koanf:"summary"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers are believed. Other peers are identified by their
	// connection address.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

type StoreConfig struct {
	// Backend is auto, file, redis, s3, sqlite or bolt. auto is resolved
	// once at load time from the deployment environment.
	Backend string `koanf:"backend" validate:"oneof=auto file redis s3 sqlite bolt"`

	// Remote is the backend picked by auto when a site identifier is present.
	Remote string `koanf:"remote" validate:"oneof=redis s3"`

	// SiteEnvVars are checked, in order, to detect a hosted deployment.
	SiteEnvVars []string `koanf:"site_env_vars"`

	Consistency string        `koanf:"consistency" validate:"oneof=none mutex queue transaction"`
	FilePath    string        `koanf:"file_path"`
	IOTimeout   time.Duration `koanf:"io_timeout" validate:"gt=0"`
	BatchSize   int           `koanf:"batch_size" validate:"gte=1,lte=10000"`
	QueueDepth  int           `koanf:"queue_depth" validate:"gte=1"`
}

type RedisConfig struct {
	// URL, when set, overrides Addr, Password, DB and TLS.
	URL      string `koanf:"url"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
	Key      string `koanf:"key"`
	TLS      bool   `koanf:"tls"`
	// TxRetries bounds optimistic transaction retries on WATCH conflicts.
	TxRetries int `koanf:"tx_retries" validate:"gte=1"`
}

type S3Config struct {
	Bucket   string `koanf:"bucket"`
	Key      string `koanf:"key"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
	// PathStyle is needed by most S3-compatible servers (minio, localstack).
	PathStyle bool `koanf:"path_style"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
	Name string `koanf:"name"`
}

type BoltConfig struct {
	Path string `koanf:"path"`
}

type GeoConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Endpoint       string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	TrustedHeaders []string      `koanf:"trusted_headers"`
	CacheTTL       time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	// Breaker opens after this many consecutive lookup failures.
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxAge         int      `koanf:"max_age" validate:"gte=0"`
}

type RateLimitConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxRequests int64         `koanf:"max_requests" validate:"gte=1"`
	Window      time.Duration `koanf:"window" validate:"gt=0"`
}

type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Channel string `koanf:"channel"`
	Workers int    `koanf:"workers" validate:"gte=1"`
	// QueueDepth bounds events waiting to be published; extra events are dropped.
	QueueDepth int `koanf:"queue_depth" validate:"gte=1"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format     string `koanf:"format" validate:"oneof=json console"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
	Compress   bool   `koanf:"compress"`
}

type SentryConfig struct {
	DSN              string  `koanf:"dsn"`
	Environment      string  `koanf:"environment"`
	TracesSampleRate float64 `koanf:"traces_sample_rate" validate:"gte=0,lte=1"`
}

type SummaryConfig struct {
	// TopPaths caps the byPath list; 0 keeps every path.
	TopPaths int `koanf:"top_paths" validate:"gte=0"`
}

// defaultConfig returns the values applied before the config file and
// environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 10,
			TrustedProxies: []string{
				"127.0.0.0/8", "::1/128",
				"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7",
			},
		},
		Store: StoreConfig{
			Backend:     BackendAuto,
			Remote:      BackendRedis,
			SiteEnvVars: []string{"SITE_ID", "NETLIFY_SITE_ID", "VERCEL_DEPLOYMENT_ID"},
			Consistency: ConsistencyMutex,
			FilePath:    "data/stats.json",
			IOTimeout:   3 * time.Second,
			BatchSize:   64,
			QueueDepth:  1024,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Key:       "viewstats:aggregate",
			TxRetries: 5,
		},
		S3: S3Config{
			Key:    "viewstats/aggregate.json",
			Region: "us-east-1",
		},
		SQLite: SQLiteConfig{
			Path: "data/viewstats.db",
			Name: "aggregate",
		},
		Bolt: BoltConfig{
			Path: "data/viewstats.bolt",
		},
		Geo: GeoConfig{
			Enabled:         true,
			Endpoint:        "http://ip-api.com",
			Timeout:         3 * time.Second,
			CacheTTL:        6 * time.Hour,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			MaxRequests: 120,
			Window:      time.Minute,
		},
		Events: EventsConfig{
			Enabled:    false,
			Channel:    "viewstats:events",
			Workers:    1,
			QueueDepth: 256,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Sentry: SentryConfig{
			Environment:      "production",
			TracesSampleRate: 1.0,
		},
	}
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// UsesRedis reports whether any enabled component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.Store.Backend == BackendRedis || c.Events.Enabled
}
