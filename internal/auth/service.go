// Package auth implements registration, Basic Auth login with opaque bearer
// session tokens, token authentication and password changes.
//
// Each user has at most one active token. Logging in again overwrites the
// stored session key, which invalidates the previous token; there is no
// expiry and no explicit logout.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/store"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// tokenBytes is the amount of randomness in a session token (256 bits).
const tokenBytes = 32

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service owns the user lifecycle
type Service struct {
	users      store.UserStore
	logger     *logrus.Logger
	adminKey   string
	bcryptCost int
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an auth service. adminKey gates DeleteUser.
func NewService(users store.UserStore, adminKey string, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		users:      users,
		logger:     logger,
		adminKey:   adminKey,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. A taken username yields CodeConflict.
func (s *Service) Register(ctx context.Context, username, password string, opts models.NewUserOptions) error {
	if err := validateCredentials(username, password); err != nil {
		metrics.RecordAuthEvent("register", string(err.Code))
		return err
	}
	if opts.Email != "" && !emailPattern.MatchString(opts.Email) {
		metrics.RecordAuthEvent("register", string(apperrors.CodeValidation))
		return apperrors.Validation("Invalid email format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to process password", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        opts.Email,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if apperrors.HasCode(err, apperrors.CodeConditionFailed) {
			metrics.RecordAuthEvent("register", string(apperrors.CodeConflict))
			return apperrors.NewAppError(apperrors.CodeConflict, "User exists", err)
		}
		metrics.RecordAuthEvent("register", "error")
		return err
	}

	metrics.RecordAuthEvent("register", "ok")
	s.logger.WithField("username", username).Info("User registered")
	return nil
}

// Login verifies Basic Auth credentials and issues a new session token,
// replacing any token issued before.
func (s *Service) Login(ctx context.Context, authorization string) (string, error) {
	username, password, err := ParseBasicAuth(authorization)
	if err != nil {
		metrics.RecordAuthEvent("login", string(apperrors.CodeBadRequest))
		return "", err
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			metrics.RecordAuthEvent("login", string(apperrors.CodeNotFound))
			return "", apperrors.NotFound("Invalid login info.")
		}
		metrics.RecordAuthEvent("login", "error")
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.RecordAuthEvent("login", string(apperrors.CodeInvalidCredentials))
		s.logger.WithField("username", username).Warn("Invalid login attempt")
		return "", apperrors.NewAppError(apperrors.CodeInvalidCredentials, "Invalid login.", nil)
	}

	token, err := NewToken()
	if err != nil {
		return "", apperrors.NewAppError(apperrors.CodeInternalError, "Failed to generate token", err)
	}

	if err := s.users.SetSessionKey(ctx, username, SessionKey(token), s.now().UTC()); err != nil {
		// User deleted between the read and the write
		if apperrors.HasCode(err, apperrors.CodeConditionFailed) {
			metrics.RecordAuthEvent("login", string(apperrors.CodeNotFound))
			return "", apperrors.NotFound("Invalid login info.")
		}
		metrics.RecordAuthEvent("login", "error")
		return "", err
	}

	metrics.RecordAuthEvent("login", "ok")
	s.logger.WithField("username", username).Info("User logged in")
	return token, nil
}

// Authenticate resolves a Bearer header to the owning username. Exactly one
// user must hold the token.
func (s *Service) Authenticate(ctx context.Context, authorization string) (string, error) {
	token, err := ParseBearer(authorization)
	if err != nil {
		metrics.RecordAuthEvent("authenticate", string(apperrors.CodeBadRequest))
		return "", err
	}

	key := SessionKey(token)
	users, err := s.users.FindBySessionKey(ctx, key)
	if err != nil {
		if lookupUnavailable(err) {
			metrics.RecordAuthEvent("authenticate", "error")
			return "", err
		}
		metrics.RecordAuthEvent("authenticate", string(apperrors.CodeInvalidToken))
		s.logger.WithError(err).Warn("Session lookup rejected")
		return "", apperrors.NewAppError(apperrors.CodeInvalidToken, "Invalid authentication info.", err)
	}

	if len(users) != 1 || users[0].SessionKey != key {
		metrics.RecordAuthEvent("authenticate", string(apperrors.CodeInvalidToken))
		if len(users) > 1 {
			s.logger.WithField("matches", len(users)).Error("Session key shared by multiple users")
		}
		return "", apperrors.NewAppError(apperrors.CodeInvalidToken, "Invalid authentication info.", nil)
	}

	metrics.RecordAuthEvent("authenticate", "ok")
	return users[0].Username, nil
}

// lookupUnavailable reports whether a session lookup failed because the store
// could not serve it. Any other lookup failure rejects the token.
func lookupUnavailable(err error) bool {
	for _, code := range []apperrors.ErrorCode{
		apperrors.CodeStoreUnavailable,
		apperrors.CodeStoreInternal,
		apperrors.CodeThroughputExceeded,
		apperrors.CodeRequestLimit,
	} {
		if apperrors.HasCode(err, code) {
			return true
		}
	}
	_, ok := apperrors.As(err)
	return !ok
}

// ChangePassword replaces the password after verifying the old one. The write
// is conditional on the hash read beforehand, so a concurrent change makes
// this call fail with CodeConflict instead of overwriting it.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.Validation("New password must not be empty")
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			metrics.RecordAuthEvent("change_password", string(apperrors.CodeNotFound))
			return apperrors.NotFound("There is no user.")
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		metrics.RecordAuthEvent("change_password", string(apperrors.CodeForbidden))
		return apperrors.Forbidden("Old password does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to process password", err)
	}

	if err := s.users.UpdatePassword(ctx, username, user.PasswordHash, string(hash)); err != nil {
		if apperrors.HasCode(err, apperrors.CodeConditionFailed) {
			metrics.RecordAuthEvent("change_password", string(apperrors.CodeConflict))
			return apperrors.NewAppError(apperrors.CodeConflict, "Password changed concurrently, retry", err)
		}
		return err
	}

	metrics.RecordAuthEvent("change_password", "ok")
	s.logger.WithField("username", username).Info("Password changed")
	return nil
}

// DeleteUser removes a user row when key matches the admin secret. Tasks and
// images owned by the user are left in place.
func (s *Service) DeleteUser(ctx context.Context, key, username string) error {
	if key == "" || username == "" {
		return apperrors.NotFound("Missing key or username")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
		s.logger.WithField("username", username).Warn("Admin delete with wrong key")
		return apperrors.Forbidden("Invalid admin key")
	}

	if err := s.users.DeleteUser(ctx, username); err != nil {
		return err
	}

	s.logger.WithField("username", username).Info("User deleted")
	return nil
}

// NewToken returns a random URL-safe session token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SessionKey is the value persisted for a token: its SHA-256 digest, so a
// leaked table does not hand out live tokens.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validateCredentials(username, password string) *apperrors.AppError {
	if username == "" || password == "" {
		return apperrors.Validation("Username and password are required")
	}
	// HTTP Basic Auth cannot carry a user-id containing a colon
	if strings.Contains(username, ":") {
		return apperrors.Validation("Username must not contain ':'")
	}
	// Object keys are "<username>/<todo_id>/..."
	if strings.Contains(username, "/") {
		return apperrors.Validation("Username must not contain '/'")
	}
	return nil
}
