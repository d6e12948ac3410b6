package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

// ErrUnsupportedDriver is returned for an unknown repository driver.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository.
	// Returns ErrUserAlreadyExists if the username is already taken; the check
	// is the storage engine's unique constraint, so concurrent callers race safely.
	CreateUser(ctx context.Context, user domain.User) error

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found. If not found, the returned
	// error wraps ErrUserNotFound and the bool is false.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// Driver names accepted by RepositoryConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RepositoryConfig selects and configures the storage backend.
type RepositoryConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `env:"DRIVER" envDefault:"sqlite" toml:"driver"`

	SQLiteUserRepositoryConfig
	PostgresUserRepositoryConfig
}

// NewRepositoryFactory returns the factory for the configured driver.
func NewRepositoryFactory(cfg RepositoryConfig) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return SQLiteUserRepositoryFactory(cfg.SQLiteUserRepositoryConfig), nil
	case DriverPostgres:
		return PostgresUserRepositoryFactory(cfg.PostgresUserRepositoryConfig), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
