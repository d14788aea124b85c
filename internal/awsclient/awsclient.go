// Package awsclient builds the DynamoDB and S3 clients from configuration.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"
)

// Clients bundles every AWS client the service uses
type Clients struct {
	DynamoDB *dynamodb.Client
	S3       *s3.Client
	Presign  *s3.PresignClient
}

// LoadOptions picks the credential source: static keys, a shared profile, or
// the default chain (env, IRSA, instance role).
func LoadOptions(cfg *config.AWSConfig) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	switch {
	case cfg.AccessKeyID != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	case cfg.Profile != "":
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	return opts
}

// New loads the AWS config and creates the clients
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, LoadOptions(&cfg.AWS)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	creds, credErr := awsCfg.Credentials.Retrieve(ctx)
	if credErr != nil {
		logger.WithError(credErr).Warn("Failed to retrieve credentials (will retry on first API call)")
	} else {
		logger.WithFields(logrus.Fields{
			"provider":          creds.Source,
			"has_session_token": creds.SessionToken != "",
			"region":            cfg.AWS.Region,
		}).Debug("AWS credentials retrieved")
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg, DynamoOptions(&cfg.DynamoDB))
	s3Client := s3.NewFromConfig(awsCfg, S3Options(&cfg.S3))
	presignClient := s3.NewPresignClient(s3Client, func(o *s3.PresignOptions) {
		o.Expires = cfg.S3.PresignTTL
	})

	logger.WithFields(logrus.Fields{
		"region":      cfg.AWS.Region,
		"users_table": cfg.DynamoDB.UsersTableName,
		"tasks_table": cfg.DynamoDB.TasksTableName,
		"bucket":      cfg.S3.BucketName,
	}).Info("AWS clients initialized")

	return &Clients{
		DynamoDB: dynamoClient,
		S3:       s3Client,
		Presign:  presignClient,
	}, nil
}

// DynamoOptions points the client at DynamoDB Local when an endpoint is set
func DynamoOptions(cfg *config.DynamoDBConfig) func(*dynamodb.Options) {
	return func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}
}

// S3Options supports S3-compatible stores such as MinIO
func S3Options(cfg *config.S3Config) func(*s3.Options) {
	return func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}
}
