// Package store holds the persistence boundary of the service: DynamoDB
// tables for users and tasks, and an S3 bucket for task images. Every
// implementation returns *errors.AppError values produced by errors.FromStore
// so callers can branch on codes instead of SDK types.
package store

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tracing"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// UserStore persists user records keyed by username.
type UserStore interface {
	// CreateUser fails with CodeConditionFailed when the username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUser fails with CodeNotFound when no row exists.
	GetUser(ctx context.Context, username string) (*models.User, error)
	// SetSessionKey overwrites the active session key of an existing user.
	SetSessionKey(ctx context.Context, username, sessionKey string, at time.Time) error
	// FindBySessionKey returns every user whose session_key index entry matches.
	FindBySessionKey(ctx context.Context, sessionKey string) ([]models.User, error)
	// UpdatePassword swaps the hash only if the stored hash still equals oldHash.
	UpdatePassword(ctx context.Context, username, oldHash, newHash string) error
	// DeleteUser fails with CodeNotFound when no row exists.
	DeleteUser(ctx context.Context, username string) error
}

// TaskStore persists tasks keyed by (username, todo_id).
type TaskStore interface {
	ListTasks(ctx context.Context, username string) ([]models.Task, error)
	PutTask(ctx context.Context, task *models.Task) error
	// UpdateTitle and SetDone fail with CodeConditionFailed when the task is absent.
	UpdateTitle(ctx context.Context, username, todoID, title string) error
	SetDone(ctx context.Context, username, todoID string, done bool) error
	DeleteTask(ctx context.Context, username, todoID string) error
}

// ImageStore stores task images as objects. Keys follow "<username>/<todo_id>/...".
type ImageStore interface {
	PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteKeys(ctx context.Context, keys []string) error
}

// instrument wraps a single backend call with a span, store metrics and
// error mapping.
func instrument(ctx context.Context, backend, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, backend+"."+op,
		attribute.String("store.backend", backend),
		attribute.String("store.operation", op),
	)

	err := fn(ctx)

	metrics.RecordStoreOperation(backend, op, err, time.Since(start))
	tracing.End(span, err)
	return apperrors.FromStore(err, backend+" "+op)
}
