package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// UserUpdater defines the interface that the service must implement.
type UserUpdater interface {
	Update(ctx context.Context, id, callerID int64, patch models.UserPatch) (*models.User, error)
}

// UpdateUserRequest represents the JSON body for a partial update. Omitted fields are left unchanged.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// default: john_doe
	Username *string `json:"username,omitempty"`
	// default: john@example.com
	Email *string `json:"email,omitempty"`
}

// NewUpdateUserHandler returns an HTTP handler for partial user updates by the owner.
// @Summary Update user
// @Description Applies the present fields. Explicit nulls are rejected.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param updateUserRequest body handlers.UpdateUserRequest true "Fields to change"
// @Success 200 {object} handlers.PrivateUser "Updated user"
// @Failure 401 {object} handlers.ErrorResponse "Could not validate credentials"
// @Failure 403 {object} handlers.ErrorResponse "Not authorized to update the user"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 409 {object} handlers.ErrorResponse "Username or email already exists"
// @Failure 422 {object} handlers.ValidationErrorResponse "Invalid input"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Router /users/{id} [patch]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
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

		patch, err := decodeUserPatch(r)
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, caller.ID, patch)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, privateUser(user))
	}
}

// decodeUserPatch keeps "omitted" and "null" apart: omitted fields stay nil, null is rejected.
func decodeUserPatch(r *http.Request) (models.UserPatch, error) {
	var patch models.UserPatch

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return patch, bodyError(err, errMalformedBody)
	}
	if raw == nil {
		return patch, errMalformedBody
	}

	fields := make(map[string]string)
	decode := func(name string) *string {
		value, present := raw[name]
		if !present {
			return nil
		}
		if string(value) == "null" {
			fields[name] = "must not be null"
			return nil
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			fields[name] = "must be a string"
			return nil
		}
		return &s
	}

	patch.Username = decode("username")
	patch.Email = decode("email")

	if len(fields) > 0 {
		return patch, &errs.ValidationError{Fields: fields}
	}
	return patch, nil
}
