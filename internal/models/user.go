package models

import "time"

// User represents a user record in the database
type User struct {
	ID           int64     `json:"id" db:"id"`                 // Primary key, never reused
	Username     string    `json:"username" db:"username"`     // Unique case-insensitively
	Email        string    `json:"email" db:"email"`           // Unique, stored lower-cased
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt hash
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp (UTC)
}

// NewUser is the input for registering a user.
type NewUser struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,max=120,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserPatch is a partial update of a user. A nil field is left unchanged.
type UserPatch struct {
	Username *string
	Email    *string
}
