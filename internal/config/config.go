package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	insecureDefaultSecret = "your-secret-key"
)

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MetricsPort string `mapstructure:"METRICS_PORT"`

	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	AuthTimeout time.Duration `mapstructure:"AUTH_TIMEOUT"`

	// AllowInsecureSecret permits the placeholder JWT_SECRET for local development.
	AllowInsecureSecret bool `mapstructure:"ALLOW_INSECURE_JWT_SECRET"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	CacheEnabled  bool          `mapstructure:"CACHE_ENABLED"`
	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	MinIOEndpoint    string        `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey   string        `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey   string        `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket      string        `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL      bool          `mapstructure:"MINIO_USE_SSL"`
	MinIOPublicURL   string        `mapstructure:"MINIO_PUBLIC_URL"`
	ImageHostTimeout time.Duration `mapstructure:"IMAGE_HOST_TIMEOUT"`
	ImageMaxBytes    int64         `mapstructure:"IMAGE_MAX_BYTES"`

	ImageAllowPrivateSources bool `mapstructure:"IMAGE_ALLOW_PRIVATE_SOURCES"`

	NATSURL string `mapstructure:"NATS_URL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPEmail    string `mapstructure:"SMTP_EMAIL"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	OTELEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "car_listing_service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("METRICS_PORT", "9091")
	v.SetDefault("JWT_SECRET", insecureDefaultSecret)
	v.SetDefault("AUTH_TIMEOUT", "2s")
	v.SetDefault("ALLOW_INSECURE_JWT_SECRET", false)
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "car_listings")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "listings-photos")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")
	v.SetDefault("IMAGE_HOST_TIMEOUT", "15s")
	v.SetDefault("IMAGE_MAX_BYTES", 10<<20)
	v.SetDefault("IMAGE_ALLOW_PRIVATE_SOURCES", false)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_EMAIL", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads an optional .env file (envFiles, or ./.env when none are given), then the
// process environment on top of the defaults.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.UsesDefaultSecret() && !c.AllowInsecureSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed from its default (set ALLOW_INSECURE_JWT_SECRET=true for local development)"))
	}
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q (want %q or %q)", c.StorageDriver, StorageMemory, StorageMongo))
	}
	if c.MinIOEndpoint == "" || c.MinIOBucket == "" {
		errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required"))
	}
	if c.ImageHostTimeout <= 0 || c.AuthTimeout <= 0 {
		errs = append(errs, errors.New("IMAGE_HOST_TIMEOUT and AUTH_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its insecure default.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == insecureDefaultSecret
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPEmail != "" && c.SMTPPassword != ""
}
