package http

import (
	"context"
	"net/http"

	"github.com/mkrupp/homecase-accounts/internal/domain"
	context_ "github.com/mkrupp/homecase-accounts/internal/infra/context"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
)

// AuthorizationHeader carries the bearer token on protected routes.
const AuthorizationHeader = "Authorization"

// Authorizer decides whether a request may proceed, given the raw value of
// its Authorization header (empty when absent).
type Authorizer interface {
	Authorize(ctx context.Context, authorization string) domain.Authorization
}

// AuthorizedHandler serves a request whose caller has been authenticated.
// The identity is passed explicitly rather than looked up from the request.
type AuthorizedHandler func(w http.ResponseWriter, r *http.Request, identity domain.Identity)

// AuthorizingMiddleware creates middleware that authorizes requests before
// handing them to next. Unauthenticated requests are rejected with 401, and
// checks that could not complete are answered with 500.
func AuthorizingMiddleware(
	next AuthorizedHandler,
	authorizer Authorizer,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch result := authorizer.Authorize(ctx, r.Header.Get(AuthorizationHeader)).(type) {
		case domain.Authorized:
			ctx = context_.WithUsername(ctx, result.Identity.Username)
			next(w, r.WithContext(ctx), result.Identity)
		case domain.Unauthenticated:
			log.WarnContext(ctx, "request rejected", "error", result)

			_ = WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, "")
		case domain.Failed:
			log.ErrorContext(ctx, "authorize failed", "error", result)

			_ = WriteError(w, http.StatusInternalServerError, CodeSomethingWentWrong, "")
		default:
			log.ErrorContext(ctx, "unexpected authorization result")

			_ = WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, "")
		}
	})
}
