package models

import "time"

// User is the authenticated account profile.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Bio       string     `json:"bio,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// AuthSession is the payload of a successful login or registration.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
