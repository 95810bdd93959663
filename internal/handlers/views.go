package handlers

import "github.com/sbilibin2017/gw-blog/internal/models"

// PublicUser is the view of a user anyone may see
// swagger:model PublicUser
type PublicUser struct {
	// default: 1
	ID int64 `json:"id"`
	// default: john_doe
	Username string `json:"username"`
}

// PrivateUser is the view of a user shown to the user themself
// swagger:model PrivateUser
type PrivateUser struct {
	// default: 1
	ID int64 `json:"id"`
	// default: john_doe
	Username string `json:"username"`
	// default: john@example.com
	Email string `json:"email"`
}

func publicUser(u *models.User) PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

func privateUser(u *models.User) PrivateUser {
	return PrivateUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
