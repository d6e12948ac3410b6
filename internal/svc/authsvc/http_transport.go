package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-accounts/internal/infra/transport/http"
)

// Error codes reported in the message field of error responses.
const (
	CodeUserExistsAlready  = "USER_EXISTS_ALREADY"
	CodeUserDoesNotExist   = "USER_DOES_NOT_EXIST"
	CodeWrongPassword      = "WRONG_PASSWORD"
	CodeSomethingWentWrong = http_.CodeSomethingWentWrong
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration, login, and identity lookup.
type HTTPTransport struct {
	gateway *AuthGateway
	log     logging.Logger
	mux     *http.ServeMux
	allowed map[string][]string // path -> methods, for 405 responses
}

// NewHTTPTransport creates a new HTTPTransport serving the routes:
//   - GET /: list identities (authorized)
//   - GET /me: identity of the caller (authorized)
//   - POST /register: register a new user
//   - POST /login: log in and get a token
//   - GET /healthz: liveness
func NewHTTPTransport(gateway *AuthGateway) *HTTPTransport {
	ht := &HTTPTransport{
		gateway: gateway,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		mux:     http.NewServeMux(),
		allowed: make(map[string][]string),
	}

	ht.handle(http.MethodGet, "/", http_.AuthorizingMiddleware(ht.HandleList, gateway, ht.log))
	ht.handle(http.MethodGet, "/me", http_.AuthorizingMiddleware(ht.HandleMe, gateway, ht.log))
	ht.handle(http.MethodPost, "/register", http.HandlerFunc(ht.HandleRegister))
	ht.handle(http.MethodPost, "/login", http.HandlerFunc(ht.HandleLogin))
	ht.handle(http.MethodGet, "/healthz", http.HandlerFunc(ht.HandleHealth))

	return ht
}

func (ht *HTTPTransport) handle(method, path string, handler http.Handler) {
	pattern := method + " " + path
	if path == "/" {
		pattern += "{$}"
	}

	ht.mux.Handle(pattern, handler)
	ht.allowed[path] = append(ht.allowed[path], method)
}

// ServeHTTP implements http.Handler. Requests matching no route get a JSON
// 404, or 405 with an Allow header when only the method is wrong.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := ht.mux.Handler(r); pattern != "" {
		ht.mux.ServeHTTP(w, r)

		return
	}

	if methods, ok := ht.allowed[r.URL.Path]; ok {
		allow := slices.Clone(methods)
		if slices.Contains(allow, http.MethodGet) {
			allow = append(allow, http.MethodHead)
		}

		w.Header().Set("Allow", strings.Join(allow, ", "))
		_ = http_.WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "")

		return
	}

	_ = http_.WriteError(w, http.StatusNotFound, CodeNotFound, "")
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleRegister processes user registration requests.
// Expects a JSON body: {"username": ..., "password": ...}.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "register request failed", "error", err)
		} else {
			log.DebugContext(ctx, "register request served")
		}
	}(r.Context())

	creds, err := DecodeCredentials(r.Body)
	if err != nil {
		return ht.writeError(w, err)
	}

	resp, err := ht.gateway.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		return ht.writeError(w, err)
	}

	return http_.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogin processes user login requests.
// Expects a JSON body: {"username": ..., "password": ...}.
// Returns the identity together with a fresh token.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "login request failed", "error", err)
		} else {
			log.DebugContext(ctx, "login request served")
		}
	}(r.Context())

	creds, err := DecodeCredentials(r.Body)
	if err != nil {
		return ht.writeError(w, err)
	}

	resp, err := ht.gateway.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		return ht.writeError(w, err)
	}

	return http_.WriteJSON(w, http.StatusOK, resp)
}

// HandleList returns all registered identities.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, caller domain.Identity) {
	_ = ht.handleList(w, r, caller)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request, caller domain.Identity) (err error) {
	log := ht.log.With(
		logging.Group("http", "method", r.Method, "url", r.URL.String()),
		logging.Group("caller", "id", caller.ID),
	)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list identities failed", "error", err)
		} else {
			log.DebugContext(ctx, "identities listed")
		}
	}(r.Context())

	identities, err := ht.gateway.ListIdentities(r.Context())
	if err != nil {
		return ht.writeError(w, err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.IdentityListResponse{Data: identities})
}

// HandleMe returns the identity of the caller.
func (ht *HTTPTransport) HandleMe(w http.ResponseWriter, _ *http.Request, caller domain.Identity) {
	_ = http_.WriteJSON(w, http.StatusOK, caller)
}

// HandleHealth reports liveness.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// writeError maps err to a status code and error body, and returns err so
// handlers can log it.
func (ht *HTTPTransport) writeError(w http.ResponseWriter, err error) error {
	var writeErr error

	if verr, ok := AsValidationError(err); ok {
		writeErr = http_.WriteValidationError(w, verr)
	} else {
		status, code, key := StatusOf(err)
		writeErr = http_.WriteError(w, status, code, key)
	}

	if writeErr != nil {
		return errors.Join(err, fmt.Errorf("write error response: %w", writeErr))
	}

	return err
}

// StatusOf maps a domain error to its HTTP status, error code and offending field.
func StatusOf(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "", ""
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusForbidden, CodeUserExistsAlready, "username"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, CodeUserDoesNotExist, "username"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusForbidden, CodeWrongPassword, "password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, http_.CodeUnauthenticated, ""
	default:
		return http.StatusInternalServerError, CodeSomethingWentWrong, ""
	}
}
