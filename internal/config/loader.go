package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. SUITABILITY_STORE_BACKEND.
const EnvPrefix = "SUITABILITY"

// Loader reads configuration from file and environment and can watch the file for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader. An empty path searches for config.yaml in
// /etc/suitability/ and the working directory.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/suitability/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", constants.DefaultHTTPPort)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", int(constants.DefaultReadTimeout.Seconds()))
	v.SetDefault("server.write_timeout", int(constants.DefaultWriteTimeout.Seconds()))
	v.SetDefault("server.idle_timeout", int(constants.DefaultIdleTimeout.Seconds()))
	v.SetDefault("server.shutdown_timeout", int(constants.DefaultShutdownTimeout.Seconds()))
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("store.backend", string(constants.StoreBackendMemory))
	v.SetDefault("store.file_path", "data/tenants.json")
	v.SetDefault("store.strict_validation", false)
	v.SetDefault("store.cache_ttl", constants.DefaultCacheTTL)
	v.SetDefault("store.cache_cleanup_interval", constants.DefaultCacheCleanupInterval)

	v.SetDefault("database.driver", constants.DatabaseDriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "suitability")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "suitability")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "data/suitability.db")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 30)
	v.SetDefault("database.max_conn_idle_time", 5)
	v.SetDefault("database.conn_timeout", 10)

	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.key_prefix", constants.DefaultRedisKeyPrefix)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "suitability.tenant-config")
	v.SetDefault("kafka.batch_timeout_ms", 10)
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.signing_key", "")
	v.SetDefault("kafka.consume_invalidations", false)

	v.SetDefault("log.level", string(constants.LogLevelInfo))
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads the config file if present, applies environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Watch calls onChange with the re-read configuration every time the config file is
// written. Invalid revisions are logged and skipped. Without a config file this is a no-op.
func (l *Loader) Watch(log logger.Logger, onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		ctx := context.Background()
		cfg, err := l.decode()
		if err != nil {
			log.Error(ctx, "Ignoring invalid configuration change", err, logger.String("file", e.Name))
			return
		}
		log.Info(ctx, "Configuration reloaded", logger.String("file", e.Name), logger.String("op", e.Op.String()))
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	return NewLoader(path).Load()
}
