package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token cannot be parsed or its signature is invalid.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrExpiredAuthToken is returned when a token is past its expiry.
	ErrExpiredAuthToken = errors.New("expired auth token")
	// ErrUnauthenticated is returned when a request carries no acceptable credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AuthToken represents the decoded claims of a session token.
type AuthToken struct {
	Username  string `json:"username"`  // Identifier of the authenticated user
	IssuedAt  int64  `json:"issuedAt"`  // Unix timestamp when the token was created
	ExpiresAt int64  `json:"expiresAt"` // Unix timestamp when the token expires
}
