package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

// PostGetter defines the interface that the service must implement.
type PostGetter interface {
	Get(ctx context.Context, id int64) (*models.Post, error)
}

// PostLister defines the interface that the service must implement.
type PostLister interface {
	List(ctx context.Context) ([]models.Post, error)
}

// NewGetPostHandler returns a single post.
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post "Post"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid id"
// @Router /posts/{id} [get]
func NewGetPostHandler(svc PostGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		post, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

// NewListPostsHandler returns every post in publication order.
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post "Posts"
// @Router /posts [get]
func NewListPostsHandler(svc PostLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}
