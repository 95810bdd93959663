package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// Tokener extracts the bearer token from a request.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// CurrentUserResolver resolves a token to the user it was issued for.
type CurrentUserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey{}).(*models.User)
	return user, ok && user != nil
}

// AuthMiddleware resolves the bearer token to a user and stores it in the request context.
// Requests without valid credentials get 401 with a WWW-Authenticate challenge.
func AuthMiddleware(tokener Tokener, resolver CurrentUserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Warnw("authorization failed", "request_id", RequestIDFromContext(ctx), "err", err)
				unauthorized(w, errs.ErrInvalidToken.Error())
				return
			}

			user, err := resolver.CurrentUser(ctx, tokenString)
			if err != nil {
				if errs.IsClientError(err) {
					logger.Log.Warnw("authorization failed", "request_id", RequestIDFromContext(ctx), "err", err)
					unauthorized(w, err.Error())
					return
				}
				logger.Log.Errorw("failed to resolve current user", "request_id", RequestIDFromContext(ctx), "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
