package middleware

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to a standalone node or, with ClusterMode, to a
// cluster configuration endpoint.
func NewRedisClient(cfg *config.RedisConfig, awsCfg *config.AWSConfig, logger *logrus.Logger) (redis.UniversalClient, error) {
	password := cfg.Password
	if cfg.PasswordFromSecrets {
		pwd, err := getSecretValue(awsCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to get Redis password from secrets: %w", err)
		}
		password = pwd
	}

	var tlsConfig *tls.Config
	if cfg.TLSEnabled {
		tlsConfig = &tls.Config{
			ServerName: extractHostname(cfg.Address),
		}
		logger.WithField("address", cfg.Address).Info("Redis TLS encryption enabled")
	}

	options := &redis.UniversalOptions{
		Addrs:        []string{cfg.Address},
		Password:     password,
		DB:           cfg.Database, // Ignored in cluster mode
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,

		MinIdleConns:    5,
		ConnMaxIdleTime: 10 * time.Minute,

		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,

		TLSConfig: tlsConfig,
	}

	// A single address only selects cluster mode when asked to
	var client redis.UniversalClient
	mode := "standalone"
	if cfg.ClusterMode {
		client = redis.NewClusterClient(options.Cluster())
		mode = "cluster"
	} else {
		client = redis.NewUniversalClient(options)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.Address,
		"mode":    mode,
	}).Info("Connected to Redis")

	return client, nil
}

// RedisHealthCheck returns a probe for the readiness endpoint
func RedisHealthCheck(redisClient redis.UniversalClient, logger *logrus.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("Redis health check failed")
			return fmt.Errorf("redis unavailable: %w", err)
		}

		return nil
	}
}

// extractHostname extracts hostname from address (host:port -> host)
func extractHostname(address string) string {
	if idx := strings.LastIndex(address, ":"); idx != -1 {
		return address[:idx]
	}
	return address
}

// getSecretValue retrieves the Redis password from AWS Secrets Manager
func getSecretValue(awsCfg *config.AWSConfig, logger *logrus.Logger) (string, error) {
	if awsCfg.SecretName == "" {
		return "", fmt.Errorf("AWS_SECRET_NAME is required when REDIS_PASSWORD_FROM_SECRETS is set")
	}

	sessConfig := aws.Config{
		Region: aws.String(awsCfg.Region),
	}
	if awsCfg.AccessKeyID != "" {
		sessConfig.Credentials = credentials.NewStaticCredentials(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, "")
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            sessConfig,
		Profile:           awsCfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc := secretsmanager.New(sess)

	result, err := svc.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(awsCfg.SecretName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret '%s': %w", awsCfg.SecretName, err)
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret '%s' has no string value", awsCfg.SecretName)
	}

	logger.WithField("secret_name", awsCfg.SecretName).Info("Redis password fetched from AWS Secrets Manager")
	return *result.SecretString, nil
}
