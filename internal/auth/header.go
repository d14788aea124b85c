package auth

import (
	"encoding/base64"
	"strings"

	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

const (
	basicPrefix  = "Basic "
	bearerPrefix = "Bearer "
)

// ParseBasicAuth decodes "Basic base64(username:password)". The username is
// everything before the first colon; the password may contain colons.
func ParseBasicAuth(header string) (username, password string, err error) {
	if !hasPrefixFold(header, basicPrefix) {
		return "", "", apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid login parameters.", nil)
	}

	decoded, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(basicPrefix):]))
	if decErr != nil {
		return "", "", apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid login parameters.", decErr)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" || password == "" {
		return "", "", apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid login parameters.", nil)
	}
	return username, password, nil
}

// ParseBearer extracts the token from "Bearer <token>".
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid authorization header.", nil)
	}
	if !hasPrefixFold(header, bearerPrefix) {
		return "", apperrors.NewAppError(apperrors.CodeBadRequest, "Authorization header must be Bearer token", nil)
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid authorization info.", nil)
	}
	return token, nil
}

// BasicAuthHeader builds a Basic Authorization header value.
func BasicAuthHeader(username, password string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
