package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/viewstats/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings maps environment variables to koanf paths. Variables not
// listed here are ignored.
var envMappings = map[string]string{
	"port":                   "server.port",
	"trusted_proxies":        "server.trusted_proxies",
	"max_body_bytes":         "server.max_body_bytes",
	"store_backend":          "store.backend",
	"store_remote":           "store.remote",
	"store_consistency":      "store.consistency",
	"store_file_path":        "store.file_path",
	"store_io_timeout":       "store.io_timeout",
	"store_batch_size":       "store.batch_size",
	"store_site_env_vars":    "store.site_env_vars",
	"redis_url":              "redis.url",
	"redis_addr":             "redis.addr",
	"redis_password":         "redis.password",
	"redis_db":               "redis.db",
	"redis_key":              "redis.key",
	"s3_bucket":              "s3.bucket",
	"s3_key":                 "s3.key",
	"s3_region":              "s3.region",
	"s3_endpoint":            "s3.endpoint",
	"s3_path_style":          "s3.path_style",
	"sqlite_path":            "sqlite.path",
	"bolt_path":              "bolt.path",
	"geo_enabled":            "geo.enabled",
	"geo_endpoint":           "geo.endpoint",
	"geo_timeout":            "geo.timeout",
	"geo_trusted_headers":    "geo.trusted_headers",
	"cors_allowed_origins":   "cors.allowed_origins",
	"ratelimit_enabled":      "ratelimit.enabled",
	"ratelimit_max_requests": "ratelimit.max_requests",
	"ratelimit_window":       "ratelimit.window",
	"events_enabled":         "events.enabled",
	"events_channel":         "events.channel",
	"events_queue_depth":     "events.queue_depth",
	"log_level":              "log.level",
	"log_format":             "log.format",
	"log_file":               "log.file",
	"sentry_dsn":             "sentry.dsn",
	"sentry_environment":     "sentry.environment",
	"sentry_traces_sample":   "sentry.traces_sample_rate",
	"summary_top_paths":      "summary.top_paths",
}

// sliceConfigPaths hold comma separated lists when set from the environment.
var sliceConfigPaths = []string{
	"server.trusted_proxies",
	"store.site_env_vars",
	"geo.trusted_headers",
	"cors.allowed_origins",
}

// Load reads configuration in three layers: defaults, optional YAML file,
// then environment variables. The store backend is resolved afterwards.
func Load() (*Config, error) {
	return load(findConfigFile(), os.LookupEnv)
}

func load(configPath string, lookupEnv func(string) (string, bool)) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.applyRedisURL(); err != nil {
		return nil, err
	}

	cfg.Store.Backend = cfg.ResolveBackend(lookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ResolveBackend turns "auto" into a concrete backend: the configured remote
// backend when any site identifier variable is set, the file backend otherwise.
func (c *Config) ResolveBackend(lookupEnv func(string) (string, bool)) string {
	if c.Store.Backend != BackendAuto {
		return c.Store.Backend
	}
	for _, name := range c.Store.SiteEnvVars {
		if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return c.Store.Remote
		}
	}
	return BackendFile
}

// applyRedisURL fills addr, password, db and tls from redis.url when it is set.
// Hosted redis providers hand out a single redis:// or rediss:// URL.
func (c *Config) applyRedisURL() error {
	if c.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(c.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid redis.url: %w", err)
	}
	c.Redis.Addr = opts.Addr
	c.Redis.Password = opts.Password
	c.Redis.DB = opts.DB
	c.Redis.TLS = opts.TLSConfig != nil
	return nil
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
