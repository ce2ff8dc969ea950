// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash and the avatar location never
// leave the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// AvatarKey is the object-storage key of the avatar image, empty if none.
	AvatarKey         string `json:"-"`
	AvatarContentType string `json:"-"`
}

// HasAvatar reports whether an avatar image is stored for the user.
func (u *User) HasAvatar() bool {
	return u.AvatarKey != ""
}

// Profile holds the non-credential fields supplied at registration.
type Profile struct {
	Name string
	Age  int
}
