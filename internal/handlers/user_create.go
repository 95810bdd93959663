package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

// UserCreator defines the interface that the service must implement.
type UserCreator interface {
	Create(ctx context.Context, username, email, password string) (*models.User, error)
}

// CreateUserRequest represents the JSON body for user registration
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// NewCreateUserHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user. Username and email are unique case-insensitively; the email is stored lower-cased.
// @Tags users
// @Accept json
// @Produce json
// @Param createUserRequest body handlers.CreateUserRequest true "User registration request"
// @Success 201 {object} handlers.PrivateUser "User created"
// @Failure 409 {object} handlers.ErrorResponse "Username or email already exists"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid input"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Failure 429 {object} handlers.ErrorResponse "Too many requests"
// @Router /users [post]
func NewCreateUserHandler(svc UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, bodyError(err, errMalformedBody))
			return
		}

		user, err := svc.Create(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, privateUser(user))
	}
}
