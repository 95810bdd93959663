package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

// UserPostsLister defines the interface that the service must implement.
type UserPostsLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Post, error)
}

// NewListUserPostsHandler returns the posts of a user, newest first.
// @Summary List a user's posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Post "Posts"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid id"
// @Router /users/{id}/posts [get]
func NewListUserPostsHandler(svc UserPostsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		posts, err := svc.ListByUser(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}
