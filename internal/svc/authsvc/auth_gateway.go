package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-accounts/internal/infra/transport/http"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
)

const bearerScheme = "Bearer"

// AuthGateway orchestrates registration and login, and authorizes protected
// requests by checking the presented token against the credential store.
type AuthGateway struct {
	Credentials *CredentialStore
	Tokens      *TokenService
	Log         logging.Logger
}

var _ http_.Authorizer = (*AuthGateway)(nil)

// NewAuthGateway wires the credential store and token service from configuration.
// Returns an error if the token TTL is not positive, the signing secret cannot
// be loaded, the hash cost is invalid, or the user repository cannot be created.
func NewAuthGateway(ctx context.Context, repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthGateway, error) {
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTokenTTL, cfg.TokenTTL)
	}

	secret, err := LoadSigningSecret(cfg)
	if err != nil {
		return nil, fmt.Errorf("load signing secret: %w", err)
	}

	hasher, err := NewBcryptHasher(cfg.HashCost)
	if err != nil {
		return nil, fmt.Errorf("new password hasher: %w", err)
	}

	userRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthGateway{
		Credentials: NewCredentialStore(userRepo, hasher),
		Tokens:      NewTokenService(secret, cfg.TokenTTL, nil),
		Log:         logging.GetLogger("svc.authsvc.auth_gateway"),
	}, nil
}

// Register creates the user and returns its identity with a fresh token.
// Returns domain.ErrUserAlreadyExists if the username is taken.
func (g *AuthGateway) Register(ctx context.Context, username, password string) (_ domain.IdentityResponse, err error) {
	log := g.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil && errors.Is(err, domain.ErrStoreFailure) {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else if err != nil {
			log.InfoContext(ctx, "register user rejected", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	identity, err := g.Credentials.Register(ctx, username, password)
	if err != nil {
		return domain.IdentityResponse{}, fmt.Errorf("register user: %w", err)
	}

	return g.respond(identity)
}

// Login verifies the password and returns the identity with a fresh token.
// Returns domain.ErrUserNotFound or domain.ErrInvalidCredentials on failure.
func (g *AuthGateway) Login(ctx context.Context, username, password string) (_ domain.IdentityResponse, err error) {
	log := g.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil && errors.Is(err, domain.ErrStoreFailure) {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else if err != nil {
			log.InfoContext(ctx, "login rejected", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	identity, err := g.Credentials.Verify(ctx, username, password)
	if err != nil {
		return domain.IdentityResponse{}, fmt.Errorf("verify credentials: %w", err)
	}

	return g.respond(identity)
}

func (g *AuthGateway) respond(identity domain.Identity) (domain.IdentityResponse, error) {
	token, err := g.Tokens.Issue(identity.Username)
	if err != nil {
		return domain.IdentityResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return domain.IdentityResponse{Identity: identity, Token: token}, nil
}

// Authorize runs the protected-request checks for the raw Authorization
// header: token present, token valid and unexpired, subject still registered.
// A store fault during the subject check yields domain.Failed.
func (g *AuthGateway) Authorize(ctx context.Context, authorization string) domain.Authorization {
	tokenString, ok := BearerToken(authorization)
	if !ok {
		return domain.Unauthenticated{Reason: domain.ErrNoAuthToken}
	}

	token, err := g.Tokens.Decode(tokenString)
	if err != nil {
		return domain.Unauthenticated{Reason: err}
	}

	// subject check: the user may have been deleted since the token was issued
	identity, err := g.Credentials.Identity(ctx, token.Username)
	if errors.Is(err, domain.ErrStoreFailure) {
		return domain.Failed{Err: fmt.Errorf("subject %q: %w", token.Username, err)}
	} else if err != nil {
		return domain.Unauthenticated{Reason: fmt.Errorf("subject %q: %w", token.Username, err)}
	}

	return domain.Authorized{Identity: identity}
}

// ListIdentities returns all registered identities.
func (g *AuthGateway) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	identities, err := g.Credentials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	return identities, nil
}

// Close releases resources held by the gateway, such as database connections.
func (g *AuthGateway) Close() error {
	return g.Credentials.Close()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}
