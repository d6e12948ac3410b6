package authsvc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc"
)

var errRepo = errors.New("repository error")

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	m     sync.Mutex
	users []domain.User
	err   error
}

var _ user.Repository = (*mockUserRepository)(nil)

func (m *mockUserRepository) CreateUser(_ context.Context, u domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return domain.ErrUserAlreadyExists
		}
	}

	m.users = append(m.users, u)

	return nil
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}

	for _, existing := range m.users {
		if existing.Username == username {
			found := existing

			return &found, true, nil
		}
	}

	return nil, false, domain.ErrUserNotFound
}

func (m *mockUserRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	return append([]domain.User(nil), m.users...), nil
}

func (m *mockUserRepository) Close() error {
	return nil
}

func (m *mockUserRepository) fail(err error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.err = err
}

func (m *mockUserRepository) remove(username string) {
	m.m.Lock()
	defer m.m.Unlock()

	kept := m.users[:0]
	for _, existing := range m.users {
		if existing.Username != username {
			kept = append(kept, existing)
		}
	}

	m.users = kept
}

func newTestHasher(t *testing.T) *authsvc.BcryptHasher {
	t.Helper()

	hasher, err := authsvc.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	return hasher
}

// fakeClock is a settable time source.
type fakeClock struct {
	m   sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.m.Lock()
	defer c.m.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.m.Lock()
	defer c.m.Unlock()

	c.now = c.now.Add(d)
}

func newTestGateway(t *testing.T) (*authsvc.AuthGateway, *mockUserRepository, *fakeClock) {
	t.Helper()

	repo := &mockUserRepository{}
	clock := newFakeClock()

	gateway := &authsvc.AuthGateway{
		Credentials: authsvc.NewCredentialStore(repo, newTestHasher(t)),
		Tokens:      authsvc.NewTokenService(testSecret, time.Hour, clock.Now),
		Log:         logging.NewNopLogger(),
	}

	return gateway, repo, clock
}
