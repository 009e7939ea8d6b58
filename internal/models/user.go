// Package models defines the data models owned by the local stores.
package models

import "time"

// GuestID is the reserved user id meaning "no signed-in user".
const GuestID int64 = 0

// User is a local account. Optional string fields are empty when absent;
// placeholder users have no Username and no PasswordDigest.
type User struct {
	ID             int64
	Email          string
	Username       string
	PasswordDigest string
	DisplayName    string
	PhoneNumber    string
	Address        string
	CreatedAt      time.Time
}

// HasCredentials reports whether the user can sign in with a password.
func (u *User) HasCredentials() bool {
	return u != nil && u.Username != "" && u.PasswordDigest != ""
}

// Label returns the name to show for the user: display name, then username,
// then a generic "User <id>".
func (u *User) Label() string {
	switch {
	case u == nil:
		return ""
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return u.Username
	default:
		return "User " + itoa(u.ID)
	}
}
