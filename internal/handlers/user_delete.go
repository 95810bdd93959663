package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
)

// UserDeleter defines the interface that the service must implement.
type UserDeleter interface {
	Delete(ctx context.Context, id, callerID int64) error
}

// NewDeleteUserHandler returns an HTTP handler deleting the caller's own account and posts.
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "Deleted"
// @Failure 401 {object} handlers.ErrorResponse "Could not validate credentials"
// @Failure 403 {object} handlers.ErrorResponse "Not authorized to delete the user"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			writeError(w, errs.ErrInvalidToken)
			return
		}

		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, caller.ID); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
