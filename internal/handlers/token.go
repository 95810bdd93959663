package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// TokenRequest represents the JSON body for login
// swagger:model TokenRequest
type TokenRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// TokenResponse represents a successful login response
// swagger:model TokenResponse
type TokenResponse struct {
	// JWT access token
	// default: JWT_TOKEN
	AccessToken string `json:"access_token"`

	// Always "bearer"
	// default: bearer
	TokenType string `json:"token_type"`
}

// NewTokenHandler returns an HTTP handler issuing access tokens.
// It accepts a JSON body or the OAuth2 password form, whose username field carries the email.
// @Summary Log in
// @Description Authenticates by email and password and returns a bearer token
// @Tags users
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param tokenRequest body handlers.TokenRequest false "Login request"
// @Success 200 {object} handlers.TokenResponse "Access token"
// @Failure 401 {object} handlers.ErrorResponse "Incorrect email or password"
// @Failure 422 {object} handlers.ValidationErrorResponse "Missing fields"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Failure 429 {object} handlers.ErrorResponse "Too many requests"
// @Router /users/token [post]
func NewTokenHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeTokenRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

const maxFormMemory = 1 << 20

func decodeTokenRequest(r *http.Request) (TokenRequest, error) {
	var req TokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxFormMemory) }
		}
		if err := parse(); err != nil {
			return req, bodyError(err, errs.NewValidation("body", "must be a valid form"))
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, bodyError(err, errMalformedBody)
		}
	}

	fields := make(map[string]string)
	if req.Email == "" {
		fields["email"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return req, &errs.ValidationError{Fields: fields}
	}
	return req, nil
}
