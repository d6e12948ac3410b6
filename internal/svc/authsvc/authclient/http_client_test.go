package authclient_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-accounts/internal/infra/transport/http"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc/authclient"
)

func newTestClient(t *testing.T) *authclient.HTTPClient {
	t.Helper()

	factory := user.SQLiteUserRepositoryFactory(user.SQLiteUserRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
	})

	gateway, err := authsvc.NewAuthGateway(context.Background(), factory, authsvc.AuthConfig{
		SigningSecret: "0123456789abcdef0123456789abcdef",
		TokenTTL:      time.Hour,
		HashCost:      4,
	})
	require.NoError(t, err)

	server := httptest.NewServer(http_.NewHandler(authsvc.NewHTTPTransport(gateway), logging.NewNopLogger()))
	t.Cleanup(func() {
		server.Close()
		_ = gateway.Close()
	})

	return authclient.NewHTTPClient(authclient.HTTPClientConfig{BaseURL: server.URL + "/"}, server.Client())
}

func TestHTTPClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	registered, err := client.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)

	_, err = client.Register(ctx, "alice", "s3cret")
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	var apiErr *authclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Equal(t, "username", apiErr.Body.Key)

	loggedIn, err := client.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.Identity, loggedIn.Identity)

	_, err = client.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = client.Login(ctx, "bob", "s3cret")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = client.Login(ctx, "", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	identities, err := client.List(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, []domain.Identity{registered.Identity}, identities)

	me, err := client.Me(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Identity, me)

	_, err = client.List(ctx, "")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = client.Me(ctx, "garbage")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
