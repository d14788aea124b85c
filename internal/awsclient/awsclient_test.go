package awsclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"
)

func TestLoadOptions_StaticCredentials(t *testing.T) {
	cfg := &config.AWSConfig{Region: "eu-central-1", AccessKeyID: "AKID", SecretAccessKey: "secret"}

	var lo awsconfig.LoadOptions
	for _, opt := range LoadOptions(cfg) {
		require.NoError(t, opt(&lo))
	}
	assert.Equal(t, "eu-central-1", lo.Region)
	require.NotNil(t, lo.Credentials)

	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}

func TestLoadOptions_Profile(t *testing.T) {
	cfg := &config.AWSConfig{Region: "eu-central-1", Profile: "dev"}

	var lo awsconfig.LoadOptions
	for _, opt := range LoadOptions(cfg) {
		require.NoError(t, opt(&lo))
	}
	assert.Equal(t, "dev", lo.SharedConfigProfile)
	assert.Nil(t, lo.Credentials)
}

func TestEndpointOverrides(t *testing.T) {
	var d dynamodb.Options
	DynamoOptions(&config.DynamoDBConfig{Endpoint: "http://localhost:8000"})(&d)
	assert.Equal(t, "http://localhost:8000", aws.ToString(d.BaseEndpoint))

	var s s3.Options
	S3Options(&config.S3Config{Endpoint: "http://localhost:9000", UsePathStyle: true})(&s)
	assert.Equal(t, "http://localhost:9000", aws.ToString(s.BaseEndpoint))
	assert.True(t, s.UsePathStyle)

	var plain s3.Options
	S3Options(&config.S3Config{})(&plain)
	assert.Nil(t, plain.BaseEndpoint)
}
