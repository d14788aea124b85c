package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/store/storetest"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *storetest.Users) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	users := storetest.NewUsers()
	return NewService(users, "delete_user", logger, WithBcryptCost(bcrypt.MinCost)), users
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegister_Validation(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	requireCode(t, svc.Register(ctx, "", "pw", models.NewUserOptions{}), apperrors.CodeValidation)
	requireCode(t, svc.Register(ctx, "alice", "", models.NewUserOptions{}), apperrors.CodeValidation)
	requireCode(t, svc.Register(ctx, "al:ice", "pw", models.NewUserOptions{}), apperrors.CodeValidation)
	requireCode(t, svc.Register(ctx, "al/ice", "pw", models.NewUserOptions{}), apperrors.CodeValidation)
	requireCode(t, svc.Register(ctx, "alice", "pw", models.NewUserOptions{Email: "not-an-email"}), apperrors.CodeValidation)
	assert.Equal(t, 0, users.Len())
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{Email: "alice@example.com"}))
	requireCode(t, svc.Register(ctx, "alice", "other", models.NewUserOptions{}), apperrors.CodeConflict)
	assert.Equal(t, 1, users.Len())
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))
	stored, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func TestRegister_StoreFailureIsNotConflict(t *testing.T) {
	svc, users := newTestService(t)
	users.FailOn("CreateUser", apperrors.FromStore(errors.New("connection reset"), "create_user"))

	err := svc.Register(context.Background(), "alice", "secret", models.NewUserOptions{})
	requireCode(t, err, apperrors.CodeStoreUnavailable)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "pa:ss", models.NewUserOptions{}))

	token, err := svc.Login(ctx, BasicAuthHeader("alice", "pa:ss"))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	username, err := svc.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))

	_, err := svc.Login(ctx, BasicAuthHeader("alice", "wrong"))
	requireCode(t, err, apperrors.CodeInvalidCredentials)

	_, err = svc.Login(ctx, BasicAuthHeader("bob", "secret"))
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = svc.Login(ctx, "Basic !!!not-base64")
	requireCode(t, err, apperrors.CodeBadRequest)

	_, err = svc.Login(ctx, "")
	requireCode(t, err, apperrors.CodeBadRequest)
}

func TestLogin_NewTokenInvalidatesPrevious(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))

	first, err := svc.Login(ctx, BasicAuthHeader("alice", "secret"))
	require.NoError(t, err)
	second, err := svc.Login(ctx, BasicAuthHeader("alice", "secret"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = svc.Authenticate(ctx, "Bearer "+first)
	requireCode(t, err, apperrors.CodeInvalidToken)

	username, err := svc.Authenticate(ctx, "Bearer "+second)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLogin_PersistsDigestOnly(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))

	token, err := svc.Login(ctx, BasicAuthHeader("alice", "secret"))
	require.NoError(t, err)

	stored, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, SessionKey(token), stored.SessionKey)
	assert.NotEqual(t, token, stored.SessionKey)
}

func TestAuthenticate_UnknownAndMalformed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "Bearer nobody-has-this")
	requireCode(t, err, apperrors.CodeInvalidToken)

	_, err = svc.Authenticate(ctx, "")
	requireCode(t, err, apperrors.CodeBadRequest)

	_, err = svc.Authenticate(ctx, "Token abc")
	requireCode(t, err, apperrors.CodeBadRequest)
}

func TestAuthenticate_ManyMatchesIsUnauthorized(t *testing.T) {
	svc, users := newTestService(t)
	key := SessionKey("shared")
	users.Put(models.User{Username: "a", SessionKey: key})
	users.Put(models.User{Username: "b", SessionKey: key})

	_, err := svc.Authenticate(context.Background(), "Bearer shared")
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthenticate_StoreFailureIsServerError(t *testing.T) {
	svc, users := newTestService(t)
	users.FailOn("FindBySessionKey", apperrors.FromStore(errors.New("dial tcp: timeout"), "query"))

	_, err := svc.Authenticate(context.Background(), "Bearer abc")
	requireCode(t, err, apperrors.CodeStoreUnavailable)
}

func TestAuthenticate_LookupFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"missing index", apperrors.FromStore(&smithy.GenericAPIError{Code: "ResourceNotFoundException"}, "query"), apperrors.CodeInvalidToken},
		{"condition", apperrors.FromStore(&smithy.GenericAPIError{Code: "ConditionalCheckFailedException"}, "query"), apperrors.CodeInvalidToken},
		{"unmapped", apperrors.FromStore(&smithy.GenericAPIError{Code: "SomethingNewException"}, "query"), apperrors.CodeInvalidToken},
		{"throttled", apperrors.FromStore(&smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException"}, "query"), apperrors.CodeThroughputExceeded},
		{"store internal", apperrors.FromStore(&smithy.GenericAPIError{Code: "InternalServerError"}, "query"), apperrors.CodeStoreInternal},
		{"unreachable", apperrors.FromStore(errors.New("dial tcp: timeout"), "query"), apperrors.CodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newTestService(t)
			users.FailOn("FindBySessionKey", tt.err)

			_, err := svc.Authenticate(context.Background(), "Bearer abc")
			requireCode(t, err, tt.want)
		})
	}
}

func TestService_UsesClockForTimestamps(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	users := storetest.NewUsers()
	svc := NewService(users, "delete_user", logger,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return fixed }),
	)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))
	_, err := svc.Login(ctx, BasicAuthHeader("alice", "secret"))
	require.NoError(t, err)

	user, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(user.CreatedAt))
	assert.True(t, fixed.Equal(user.LastLoginAt))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "old", models.NewUserOptions{}))

	requireCode(t, svc.ChangePassword(ctx, "alice", "wrong", "new"), apperrors.CodeForbidden)
	requireCode(t, svc.ChangePassword(ctx, "bob", "old", "new"), apperrors.CodeNotFound)
	requireCode(t, svc.ChangePassword(ctx, "alice", "old", ""), apperrors.CodeValidation)

	require.NoError(t, svc.ChangePassword(ctx, "alice", "old", "new"))

	_, err := svc.Login(ctx, BasicAuthHeader("alice", "old"))
	requireCode(t, err, apperrors.CodeInvalidCredentials)
	_, err = svc.Login(ctx, BasicAuthHeader("alice", "new"))
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "secret", models.NewUserOptions{}))

	requireCode(t, svc.DeleteUser(ctx, "guess", "alice"), apperrors.CodeForbidden)
	requireCode(t, svc.DeleteUser(ctx, "", "alice"), apperrors.CodeNotFound)
	requireCode(t, svc.DeleteUser(ctx, "delete_user", "bob"), apperrors.CodeNotFound)

	require.NoError(t, svc.DeleteUser(ctx, "delete_user", "alice"))
	assert.Equal(t, 0, users.Len())
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
