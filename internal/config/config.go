package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	AWS           AWSConfig           `envconfig:"AWS"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	S3            S3Config            `envconfig:"S3"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	RateLimit     RateLimitConfig     `envconfig:"RATE_LIMIT"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	Admin         AdminConfig         `envconfig:"ADMIN"`
}

type AWSConfig struct {
	Region          string `envconfig:"REGION" default:"eu-central-1"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID" default:""`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY" default:""`
	Profile         string `envconfig:"PROFILE" default:""`
	SecretName      string `envconfig:"SECRET_NAME" default:""`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"3000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type DynamoDBConfig struct {
	UsersTableName   string `envconfig:"USERS_TABLE_NAME"`
	TasksTableName   string `envconfig:"TASKS_TABLE_NAME"`
	SessionIndexName string `envconfig:"SESSION_INDEX_NAME" default:"session_key-index"`
	TasksIndexName   string `envconfig:"TASKS_INDEX_NAME" default:"username-index"`
	Endpoint         string `envconfig:"ENDPOINT" default:""` // DynamoDB Local
}

type S3Config struct {
	BucketName   string        `envconfig:"BUCKET_NAME"`
	PresignTTL   time.Duration `envconfig:"PRESIGN_TTL" default:"60s"`
	Endpoint     string        `envconfig:"ENDPOINT" default:""` // MinIO / LocalStack
	UsePathStyle bool          `envconfig:"USE_PATH_STYLE" default:"false"`
}

type RedisConfig struct {
	Enabled             bool          `envconfig:"ENABLED" default:"false"`
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"50"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
	ClusterMode         bool          `envconfig:"CLUSTER_MODE" default:"false"`
	IdempotencyTTL      time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"5m"`
}

type RateLimitConfig struct {
	RPS         int           `envconfig:"RPS" default:"20"`
	Burst       int           `envconfig:"BURST" default:"40"`
	LoginRPS    int           `envconfig:"LOGIN_RPS" default:"1"`
	LoginBurst  int           `envconfig:"LOGIN_BURST" default:"5"`
	WindowSize  time.Duration `envconfig:"WINDOW_SIZE" default:"1s"`
	Enabled     bool          `envconfig:"ENABLED" default:"true"`
	ExemptPaths []string      `envconfig:"EXEMPT_PATHS" default:"/healthz,/readyz,/metrics"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"` // "stdout" for local debugging
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type AdminConfig struct {
	DeleteKey string `envconfig:"DELETE_KEY" default:"delete_user"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// envconfig splits on commas but keeps surrounding whitespace
	if exemptPaths := os.Getenv("RATE_LIMIT_EXEMPT_PATHS"); exemptPaths != "" {
		cfg.RateLimit.ExemptPaths = strings.Split(exemptPaths, ",")
		for i := range cfg.RateLimit.ExemptPaths {
			cfg.RateLimit.ExemptPaths[i] = strings.TrimSpace(cfg.RateLimit.ExemptPaths[i])
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.AWS.Region == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if cfg.DynamoDB.UsersTableName == "" {
		return fmt.Errorf("DYNAMODB_USERS_TABLE_NAME is required")
	}
	if cfg.DynamoDB.TasksTableName == "" {
		return fmt.Errorf("DYNAMODB_TASKS_TABLE_NAME is required")
	}
	if cfg.S3.BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}

	// Static credentials come as a pair or not at all
	if (cfg.AWS.AccessKeyID == "") != (cfg.AWS.SecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}

	if cfg.S3.PresignTTL <= 0 {
		return fmt.Errorf("invalid presign ttl: %s", cfg.S3.PresignTTL)
	}

	if cfg.Admin.DeleteKey == "" {
		return fmt.Errorf("ADMIN_DELETE_KEY must not be empty")
	}

	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}
