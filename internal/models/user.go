package models

import "time"

// User represents a row in the users table
type User struct {
	Username     string    `json:"username" dynamodbav:"username"`                       // Partition key
	PasswordHash string    `json:"-" dynamodbav:"password"`                              // bcrypt hash (never in JSON)
	SessionKey   string    `json:"-" dynamodbav:"session_key,omitempty"`                 // SHA-256 of the active token
	Email        string    `json:"email,omitempty" dynamodbav:"email,omitempty"`         // Optional
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at,omitempty"`
}

// NewUserOptions carries the optional fields accepted at registration
type NewUserOptions struct {
	Email string
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    string  `json:"email,omitempty"`
}

// LoginResponse is returned after a successful Basic Auth login
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// ChangePasswordRequest represents a password change payload
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// DeleteUserRequest represents the admin delete payload
type DeleteUserRequest struct {
	Key      string `json:"key"`
	Username string `json:"username"`
}
