package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	context_ "github.com/mkrupp/homecase-accounts/internal/infra/context"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-accounts/internal/infra/transport/http"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc"
)

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	// BaseURL is the root of the account API
	BaseURL string `env:"URL" envDefault:"http://localhost:8080" toml:"url"`
}

// APIError is returned for every non-2xx response.
// It unwraps to the domain error matching the response code, if any.
type APIError struct {
	StatusCode int
	Body       http_.ErrorResponse
}

func (e *APIError) Error() string {
	switch {
	case e.Body.Message != "" && e.Body.Key != "":
		return fmt.Sprintf("%d %s (%s)", e.StatusCode, e.Body.Message, e.Body.Key)
	case e.Body.Message != "":
		return fmt.Sprintf("%d %s", e.StatusCode, e.Body.Message)
	case len(e.Body.Errors) > 0:
		verr := domain.ValidationError{Fields: e.Body.Errors}

		return fmt.Sprintf("%d %s", e.StatusCode, verr.Error())
	default:
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *APIError) Unwrap() error {
	switch {
	case len(e.Body.Errors) > 0:
		return &domain.ValidationError{Fields: e.Body.Errors}
	case e.Body.Message == authsvc.CodeUserExistsAlready:
		return domain.ErrUserAlreadyExists
	case e.Body.Message == authsvc.CodeUserDoesNotExist:
		return domain.ErrUserNotFound
	case e.Body.Message == authsvc.CodeWrongPassword:
		return domain.ErrInvalidCredentials
	case e.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	default:
		return nil
	}
}

// HTTPClient implements AuthClient over the JSON HTTP API.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.authsvc.authclient.http_client"),
		cfg:        cfg,
	}
}

// Register implements AuthClient.Register.
func (c *HTTPClient) Register(ctx context.Context, username, password string) (domain.IdentityResponse, error) {
	var resp domain.IdentityResponse

	err := c.do(ctx, http.MethodPost, "/register", "", authsvc.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.IdentityResponse{}, fmt.Errorf("register: %w", err)
	}

	return resp, nil
}

// Login implements AuthClient.Login.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (domain.IdentityResponse, error) {
	var resp domain.IdentityResponse

	err := c.do(ctx, http.MethodPost, "/login", "", authsvc.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.IdentityResponse{}, fmt.Errorf("login: %w", err)
	}

	return resp, nil
}

// List implements AuthClient.List.
func (c *HTTPClient) List(ctx context.Context, token string) ([]domain.Identity, error) {
	var resp domain.IdentityListResponse

	if err := c.do(ctx, http.MethodGet, "/", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return resp.Data, nil
}

// Me implements AuthClient.Me.
func (c *HTTPClient) Me(ctx context.Context, token string) (domain.Identity, error) {
	var resp domain.Identity

	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &resp); err != nil {
		return domain.Identity{}, fmt.Errorf("me: %w", err)
	}

	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) (err error) {
	log := c.log.With(logging.Group("http", "method", method, "path", path))

	defer func() {
		var apiErr *APIError
		if err != nil && !errors.As(err, &apiErr) {
			log.ErrorContext(ctx, "request failed", "error", err)
		} else if err != nil {
			log.DebugContext(ctx, "request rejected", "error", err)
		}
	}()

	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set(http_.AuthorizationHeader, "Bearer "+token)
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(http_.TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode} //nolint:exhaustruct
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)

		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
