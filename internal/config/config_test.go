package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("DYNAMODB_USERS_TABLE_NAME", "todo-users")
	t.Setenv("DYNAMODB_TASKS_TABLE_NAME", "todo-tasks")
	t.Setenv("S3_BUCKET_NAME", "todo-images")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "session_key-index", cfg.DynamoDB.SessionIndexName)
	assert.Equal(t, "username-index", cfg.DynamoDB.TasksIndexName)
	assert.Equal(t, 60*time.Second, cfg.S3.PresignTTL)
	assert.Equal(t, "delete_user", cfg.Admin.DeleteKey)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_ExemptPathsTrimmed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_EXEMPT_PATHS", "/healthz, /metrics ,/swagger")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/healthz", "/metrics", "/swagger"}, cfg.RateLimit.ExemptPaths)
}

func TestLoad_MissingTables(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("DYNAMODB_USERS_TABLE_NAME", "")
	t.Setenv("DYNAMODB_TASKS_TABLE_NAME", "todo-tasks")
	t.Setenv("S3_BUCKET_NAME", "todo-images")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DYNAMODB_USERS_TABLE_NAME")
}

func TestLoad_PartialStaticCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}
