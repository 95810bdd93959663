package models

import "time"

// Post represents a blog post joined with its author's public view.
type Post struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	UserID     int64     `json:"user_id" db:"user_id"`
	DatePosted time.Time `json:"date_posted" db:"date_posted"`
	Author     Author    `json:"author" db:"author"`
}

// Author is the public view of a post's author.
type Author struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// NewPost is the input for publishing a post.
type NewPost struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"required"`
}
