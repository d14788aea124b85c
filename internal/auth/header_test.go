package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicAuth(t *testing.T) {
	username, password, err := ParseBasicAuth(BasicAuthHeader("alice", "a:b:c"))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "a:b:c", password)

	username, _, err = ParseBasicAuth("basic " + BasicAuthHeader("bob", "pw")[len("Basic "):])
	require.NoError(t, err)
	assert.Equal(t, "bob", username)

	for _, header := range []string{
		"",
		"Bearer abc",
		"Basic %%%",
		BasicAuthHeader("", "pw"),
		BasicAuthHeader("alice", ""),
		"Basic YWxpY2U=", // "alice" without a colon
	} {
		_, _, err := ParseBasicAuth(header)
		assert.Error(t, err, header)
	}
}

func TestParseBearer(t *testing.T) {
	token, err := ParseBearer("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	for _, header := range []string{"", "Bearer ", "Basic abc", "Bearer a b"} {
		_, err := ParseBearer(header)
		assert.Error(t, err, header)
	}
}
