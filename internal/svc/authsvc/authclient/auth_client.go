package authclient

import (
	"context"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

// AuthClient is a client of the account API.
type AuthClient interface {
	// Register creates a user and returns its identity with a fresh token.
	Register(ctx context.Context, username, password string) (domain.IdentityResponse, error)

	// Login verifies the password and returns the identity with a fresh token.
	Login(ctx context.Context, username, password string) (domain.IdentityResponse, error)

	// List returns all registered identities. Requires a valid token.
	List(ctx context.Context, token string) ([]domain.Identity, error)

	// Me returns the identity the token was issued for.
	Me(ctx context.Context, token string) (domain.Identity, error)
}
