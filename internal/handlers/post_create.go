package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// PostCreator defines the interface that the service must implement.
type PostCreator interface {
	Create(ctx context.Context, title, content string, authorID int64) (*models.Post, error)
}

// CreatePostRequest represents the JSON body for a new post
// swagger:model CreatePostRequest
type CreatePostRequest struct {
	// required: true
	// default: Hello
	Title string `json:"title"`

	// required: true
	// default: My first post
	Content string `json:"content"`
}

// NewCreatePostHandler returns an HTTP handler publishing a post as the caller.
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param createPostRequest body handlers.CreatePostRequest true "Post"
// @Success 201 {object} models.Post "Created post"
// @Failure 401 {object} handlers.ErrorResponse "Could not validate credentials"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid input"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Router /posts [post]
func NewCreatePostHandler(svc PostCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			writeError(w, errs.ErrInvalidToken)
			return
		}

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, bodyError(err, errMalformedBody))
			return
		}

		post, err := svc.Create(r.Context(), req.Title, req.Content, caller.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}
