package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

// UserGetter defines the interface that the service must implement.
type UserGetter interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

// NewGetUserHandler returns the public view of a user.
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} handlers.PublicUser "User"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid id"
// @Router /users/{id} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, publicUser(user))
	}
}
