package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Conf struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`

	WebServerPort string `mapstructure:"WEB_SERVER_PORT"`
	GRPCPort      string `mapstructure:"GRPC_PORT"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	SpatialIndex  string `mapstructure:"SPATIAL_INDEX"`
	Locker        string `mapstructure:"LOCKER"`

	DBDriver     string `mapstructure:"DB_DRIVER"`
	DBHost       string `mapstructure:"DB_HOST"`
	DBPort       string `mapstructure:"DB_PORT"`
	DBUser       string `mapstructure:"DB_USER"`
	DBPassword   string `mapstructure:"DB_PASSWORD"`
	DBName       string `mapstructure:"DB_NAME"`
	DBSSLMode    string `mapstructure:"DB_SSLMODE"`
	DBMigrate    bool   `mapstructure:"DB_MIGRATE"`
	DBMaxOpen    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	RedisHost    string `mapstructure:"REDIS_HOST"`
	RedisPort    string `mapstructure:"REDIS_PORT"`
	RedisPass    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB      int    `mapstructure:"REDIS_DB"`
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPQueue    string `mapstructure:"AMQP_QUEUE"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	OTelCollectorAddr string `mapstructure:"OTEL_COLLECTOR_ADDR"`

	FreshnessWindow     time.Duration `mapstructure:"FRESHNESS_WINDOW"`
	QueryTimeout        time.Duration `mapstructure:"QUERY_TIMEOUT"`
	IngestTimeout       time.Duration `mapstructure:"INGEST_TIMEOUT"`
	IngestMaxAttempts   int           `mapstructure:"INGEST_MAX_ATTEMPTS"`
	IngestBackoff       time.Duration `mapstructure:"INGEST_BACKOFF"`
	LockLease           time.Duration `mapstructure:"LOCK_LEASE"`
	EvictionInterval    time.Duration `mapstructure:"EVICTION_INTERVAL"`
	EvictionRetention   time.Duration `mapstructure:"EVICTION_RETENTION"`
	EvictionBatchSize   int           `mapstructure:"EVICTION_BATCH_SIZE"`
	DefaultRadiusKm     float64       `mapstructure:"DEFAULT_RADIUS_KM"`
	DefaultLimit        int           `mapstructure:"DEFAULT_LIMIT"`
	MaxLimit            int           `mapstructure:"MAX_LIMIT"`
	AverageSpeedKmh     float64       `mapstructure:"AVERAGE_SPEED_KMH"`
	EligibilityWorkers  int           `mapstructure:"ELIGIBILITY_WORKERS"`
	AllowUnknownDrivers bool          `mapstructure:"ELIGIBILITY_ALLOW_UNKNOWN"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	DedupTTL            time.Duration `mapstructure:"DEDUP_TTL"`
}

var defaults = map[string]any{
	"SERVICE_NAME":              "gotrack",
	"ENVIRONMENT":               "development",
	"WEB_SERVER_PORT":           "8080",
	"GRPC_PORT":                 "50051",
	"STORAGE_DRIVER":            "memory",
	"SPATIAL_INDEX":             "memory",
	"LOCKER":                    "memory",
	"DB_DRIVER":                 "postgres",
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "5432",
	"DB_USER":                   "postgres",
	"DB_PASSWORD":               "",
	"DB_NAME":                   "gotrack",
	"DB_SSLMODE":                "disable",
	"DB_MIGRATE":                false,
	"DB_MAX_OPEN_CONNS":         25,
	"REDIS_HOST":                "localhost",
	"REDIS_PORT":                "6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"AMQP_URL":                  "",
	"AMQP_QUEUE":                "driver.locations",
	"AMQP_EXCHANGE":             "amq.topic",
	"OTEL_COLLECTOR_ADDR":       "",
	"FRESHNESS_WINDOW":          "5m",
	"QUERY_TIMEOUT":             "300ms",
	"INGEST_TIMEOUT":            "2s",
	"INGEST_MAX_ATTEMPTS":       3,
	"INGEST_BACKOFF":            "50ms",
	"LOCK_LEASE":                "5s",
	"EVICTION_INTERVAL":         "10m",
	"EVICTION_RETENTION":        "24h",
	"EVICTION_BATCH_SIZE":       5000,
	"DEFAULT_RADIUS_KM":         5.0,
	"DEFAULT_LIMIT":             10,
	"MAX_LIMIT":                 100,
	"AVERAGE_SPEED_KMH":         30.0,
	"ELIGIBILITY_WORKERS":       16,
	"ELIGIBILITY_ALLOW_UNKNOWN": false,
	"RATE_LIMIT_RPS":            5.0,
	"RATE_LIMIT_BURST":          10,
	"DEDUP_TTL":                 "10m",
}

// LoadConfig reads path/.env when present and lets environment variables
// override every key.
func LoadConfig(path string) (*Conf, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Conf
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Conf) Validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"FRESHNESS_WINDOW":   c.FreshnessWindow,
		"QUERY_TIMEOUT":      c.QueryTimeout,
		"INGEST_TIMEOUT":     c.IngestTimeout,
		"INGEST_BACKOFF":     c.IngestBackoff,
		"LOCK_LEASE":         c.LockLease,
		"EVICTION_INTERVAL":  c.EvictionInterval,
		"EVICTION_RETENTION": c.EvictionRetention,
		"DEDUP_TTL":          c.DedupTTL,
	}
	for key, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, d))
		}
	}
	counts := map[string]int{
		"INGEST_MAX_ATTEMPTS": c.IngestMaxAttempts,
		"EVICTION_BATCH_SIZE": c.EvictionBatchSize,
		"DEFAULT_LIMIT":       c.DefaultLimit,
		"MAX_LIMIT":           c.MaxLimit,
		"ELIGIBILITY_WORKERS": c.EligibilityWorkers,
		"RATE_LIMIT_BURST":    c.RateLimitBurst,
	}
	for key, n := range counts {
		if n < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", key, n))
		}
	}
	if c.DefaultRadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_RADIUS_KM must be positive, got %v", c.DefaultRadiusKm))
	}
	if c.AverageSpeedKmh <= 0 {
		errs = append(errs, fmt.Errorf("AVERAGE_SPEED_KMH must be positive, got %v", c.AverageSpeedKmh))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS))
	}
	if c.DefaultLimit > c.MaxLimit {
		errs = append(errs, fmt.Errorf("DEFAULT_LIMIT %d exceeds MAX_LIMIT %d", c.DefaultLimit, c.MaxLimit))
	}
	errs = append(errs,
		oneOf("STORAGE_DRIVER", c.StorageDriver, "memory", "postgres"),
		oneOf("SPATIAL_INDEX", c.SpatialIndex, "memory", "redis", "postgres"),
		oneOf("LOCKER", c.Locker, "memory", "redis"),
	)
	if c.SpatialIndex == "postgres" && c.StorageDriver != "postgres" {
		errs = append(errs, errors.New("SPATIAL_INDEX=postgres requires STORAGE_DRIVER=postgres"))
	}
	return errors.Join(errs...)
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", key, allowed, value)
}

func (c *Conf) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Conf) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Conf) IsProduction() bool {
	return c.Environment == "production"
}
