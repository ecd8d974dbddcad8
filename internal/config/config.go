package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/utils"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port" validate:"min=1,max=65535"`
	Environment     string   `mapstructure:"environment"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // in seconds
	IdleTimeout     int      `mapstructure:"idle_timeout"`     // in seconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // in seconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether debug endpoints must stay disabled.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// StoreConfig selects and tunes the tenant configuration backend.
type StoreConfig struct {
	Backend              string        `mapstructure:"backend" validate:"oneof=memory file database redis"`
	FilePath             string        `mapstructure:"file_path"`
	StrictValidation     bool          `mapstructure:"strict_validation"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	CacheCleanupInterval time.Duration `mapstructure:"cache_cleanup_interval"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"`  // in minutes
	MaxConnIdleTime int    `mapstructure:"max_conn_idle_time"` // in minutes
	ConnTimeout     int    `mapstructure:"conn_timeout"`       // in seconds
}

func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == constants.DatabaseDriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
	KeyPrefix    string   `mapstructure:"key_prefix"`
}

// KafkaConfig configures the tenant configuration change feed.
type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	BatchTimeout int      `mapstructure:"batch_timeout_ms"`
	RequiredAcks int      `mapstructure:"required_acks"`
	SigningKey   string   `mapstructure:"signing_key"`

	// ConsumeInvalidations subscribes this replica to the topic and evicts cached
	// configurations changed by other replicas.
	ConsumeInvalidations bool `mapstructure:"consume_invalidations"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`
}

// Validate checks for essential configuration values. Field rules come from the
// validate tags; the checks below depend on which backend and features are enabled.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fieldError(err)
	}

	switch constants.StoreBackend(c.Store.Backend) {
	case constants.StoreBackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("store.file_path is required for the file backend")
		}
	case constants.StoreBackendDatabase:
		switch c.Database.Driver {
		case constants.DatabaseDriverPostgres:
			if c.Database.Host == "" || c.Database.Database == "" {
				return fmt.Errorf("database.host and database.database are required for postgres")
			}
		case constants.DatabaseDriverSQLite:
			if c.Database.SQLitePath == "" {
				return fmt.Errorf("database.sqlite_path is required for sqlite")
			}
		}
	case constants.StoreBackendRedis:
		if len(c.Redis.Addresses) == 0 {
			return fmt.Errorf("redis.addresses is required for the redis backend")
		}
	}

	if c.Store.CacheTTL < 0 {
		return fmt.Errorf("store.cache_ttl must not be negative")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}

	return nil
}

// fieldError reports the first failed field, ordered by config key.
func fieldError(err errors.AppError) error {
	fields, _ := err.Metadata()["fields"].(map[string]string)
	if len(fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%s %s", keys[0], fields[keys[0]])
}
