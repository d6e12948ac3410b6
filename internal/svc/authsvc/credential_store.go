package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
)

// CredentialStore owns user identity records and password verification.
// Password hashes never leave it: every method returns domain.Identity.
type CredentialStore struct {
	repo   user.Repository
	hasher PasswordHasher
	log    logging.Logger
	now    func() time.Time
}

// NewCredentialStore creates a CredentialStore on top of the given repository.
func NewCredentialStore(repo user.Repository, hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{
		repo:   repo,
		hasher: hasher,
		log:    logging.GetLogger("svc.authsvc.credential_store"),
		now:    time.Now,
	}
}

// storeFailure tags an unexpected repository error so that callers can tell it
// apart from identity errors without inspecting driver types.
func storeFailure(err error) error {
	return errors.Join(domain.ErrStoreFailure, err)
}

// Register creates a new user with a freshly salted password hash.
// Returns domain.ErrUserAlreadyExists if the username is taken.
func (s *CredentialStore) Register(ctx context.Context, username, password string) (_ domain.Identity, err error) {
	log := s.log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	passwordHash, err := s.hasher.HashPassword(password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("new user id: %w", err)
	}

	record := domain.User{
		ID:           id.String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().Unix(),
	}

	if err := s.repo.CreateUser(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			err = storeFailure(err)
		}

		return domain.Identity{}, fmt.Errorf("create user: %w", err)
	}

	return record.Identity(), nil
}

// Verify checks the password of an existing user.
// Returns domain.ErrUserNotFound or domain.ErrInvalidCredentials on failure.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (_ domain.Identity, err error) {
	log := s.log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "verify failed", "error", err)
		} else {
			log.DebugContext(ctx, "user verified")
		}
	}()

	record, err := s.lookup(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}

	if err := s.hasher.ComparePassword(record.PasswordHash, password); err != nil {
		return domain.Identity{}, err
	}

	return record.Identity(), nil
}

// Identity returns the identity registered under username.
// Returns domain.ErrUserNotFound if there is none.
func (s *CredentialStore) Identity(ctx context.Context, username string) (domain.Identity, error) {
	record, err := s.lookup(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}

	return record.Identity(), nil
}

// Exists reports whether a user with the given username is still present.
func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.Identity(ctx, username)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns every identity ordered by creation time.
func (s *CredentialStore) List(ctx context.Context) ([]domain.Identity, error) {
	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", storeFailure(err))
	}

	identities := make([]domain.Identity, 0, len(records))
	for _, record := range records {
		identities = append(identities, record.Identity())
	}

	return identities, nil
}

// Close releases the underlying repository.
func (s *CredentialStore) Close() error {
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}

func (s *CredentialStore) lookup(ctx context.Context, username string) (*domain.User, error) {
	record, ok, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}

		return nil, fmt.Errorf("get user: %w", storeFailure(err))
	} else if !ok || record == nil {
		return nil, domain.ErrUserNotFound
	}

	return record, nil
}
