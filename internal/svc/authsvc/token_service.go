package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

var (
	// ErrEmptySubject is returned when issuing a token without a username.
	ErrEmptySubject = errors.New("empty token subject")
	// ErrInvalidTokenTTL is returned for a token lifetime that is not positive.
	ErrInvalidTokenTTL = errors.New("invalid token ttl")
)

// TokenService issues and verifies HS256 session tokens.
// It holds no state besides its immutable secret and TTL.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. now may be nil, in which case time.Now is used.
func NewTokenService(secret []byte, ttl time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    now,
	}
}

// TTL returns the fixed lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for username, valid from now until now+TTL.
func (s *TokenService) Issue(username string) (string, error) {
	if username == "" {
		return "", ErrEmptySubject
	}

	now := s.now()

	//nolint:exhaustruct
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify returns the username the token was issued for.
// Returns domain.ErrExpiredAuthToken for expired tokens and
// domain.ErrInvalidAuthToken for any other validation failure.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := s.Decode(tokenString)
	if err != nil {
		return "", err
	}

	return token.Username, nil
}

// Decode validates the token and returns its claims.
func (s *TokenService) Decode(tokenString string) (domain.AuthToken, error) {
	if tokenString == "" {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, domain.ErrNoAuthToken)
	}

	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.AuthToken{}, errors.Join(domain.ErrExpiredAuthToken, err)
		}

		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	if claims.Subject == "" {
		return domain.AuthToken{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidAuthToken)
	}

	token := domain.AuthToken{
		Username:  claims.Subject,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}

	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Unix()
	}

	return token, nil
}
