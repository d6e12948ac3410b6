package user_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
)

func newSQLiteRepo(t *testing.T) *user.SQLiteUserRepository {
	t.Helper()

	repo, err := user.NewSQLiteUserRepository(context.Background(), user.SQLiteUserRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLiteUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepo(t)

	alice := domain.User{ID: "0001", Username: "alice", PasswordHash: "$2a$hash", CreatedAt: 100}
	require.NoError(t, repo.CreateUser(ctx, alice))

	got, ok, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice, *got)

	_, ok, err = repo.GetUserByUsername(ctx, "Alice")
	require.ErrorIs(t, err, domain.ErrUserNotFound, "usernames are case-sensitive")
	assert.False(t, ok)
}

func TestSQLiteUserRepository_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "0001", Username: "alice", PasswordHash: "h", CreatedAt: 1}))

	err := repo.CreateUser(ctx, domain.User{ID: "0002", Username: "alice", PasswordHash: "h", CreatedAt: 2})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	err = repo.CreateUser(ctx, domain.User{ID: "0001", Username: "bob", PasswordHash: "h", CreatedAt: 3})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists, "primary key clash")
}

func TestSQLiteUserRepository_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	const writers = 16

	ctx := context.Background()
	repo := newSQLiteRepo(t)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)

	for i := range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := repo.CreateUser(ctx, domain.User{
				ID:           string(rune('a' + i)),
				Username:     "carol",
				PasswordHash: "h",
				CreatedAt:    int64(i),
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrUserAlreadyExists):
				duplicates++
			default:
				others = append(others, err)
			}
		}()
	}

	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, duplicates)
}

func TestSQLiteUserRepository_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepo(t)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "b", Username: "bob", PasswordHash: "h", CreatedAt: 20}))
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "a", Username: "alice", PasswordHash: "h", CreatedAt: 10}))

	users, err = repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestSQLiteUserRepository_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := user.SQLiteUserRepositoryConfig{DatabasePath: filepath.Join(t.TempDir(), "users.db")}

	repo, err := user.NewSQLiteUserRepository(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(ctx, domain.User{ID: "a", Username: "alice", PasswordHash: "h", CreatedAt: 1}))
	require.NoError(t, repo.Close())

	repo, err = user.NewSQLiteUserRepository(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	_, ok, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRepositoryFactory(t *testing.T) {
	t.Parallel()

	factory, err := user.NewRepositoryFactory(user.RepositoryConfig{
		Driver:                     user.DriverSQLite,
		SQLiteUserRepositoryConfig: user.SQLiteUserRepositoryConfig{DatabasePath: filepath.Join(t.TempDir(), "f.db")},
	})
	require.NoError(t, err)

	repo, err := factory(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = user.NewRepositoryFactory(user.RepositoryConfig{Driver: "mongo"})
	require.ErrorIs(t, err, user.ErrUnsupportedDriver)

	factory, err = user.NewRepositoryFactory(user.RepositoryConfig{Driver: user.DriverPostgres})
	require.NoError(t, err)

	_, err = factory(context.Background())
	require.Error(t, err, "empty dsn")
}
