package handlers

import (
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
)

// NewMeHandler returns the authenticated caller.
// @Summary Current user
// @Description Returns the user the bearer token was issued for
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.PrivateUser "Current user"
// @Failure 401 {object} handlers.ErrorResponse "Could not validate credentials"
// @Router /users/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			writeError(w, errs.ErrInvalidToken)
			return
		}

		writeJSON(w, http.StatusOK, privateUser(user))
	}
}
