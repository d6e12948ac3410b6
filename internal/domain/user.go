package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreFailure marks faults of the persistence layer that must not reach the caller.
	ErrStoreFailure = errors.New("store failure")
)

// User is the persisted identity record. It carries the password hash and
// must not leave the credential store; use Identity for anything outbound.
type User struct {
	ID           string // Stable identifier, assigned at creation
	Username     string // Unique, case-sensitive login name
	PasswordHash string // Encoded bcrypt hash
	CreatedAt    int64  // Unix timestamp of account creation
}

// Identity returns the public projection of the user.
func (u User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// Identity is a user record without any password material.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"createdAt"`
}

// IdentityResponse is returned by register and login.
type IdentityResponse struct {
	Identity

	Token string `json:"token"`
}

// IdentityListResponse is returned by the user listing.
type IdentityListResponse struct {
	Data []Identity `json:"data"`
}
