package domain

import "time"

// User represents a registered account of the system.
//
// Username and Email are each unique across all users and live in separate
// namespaces; either one is accepted as a login identifier.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	IsAdmin      bool
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// ProfilePatch lists the profile fields a user may change after creation.
// Nil fields are left untouched. Username, email, password and the admin
// flag are deliberately absent: they are not reachable through profile
// updates.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
	AvatarURL   *string
}

// Apply copies the set fields onto the user.
func (p ProfilePatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = p.DateOfBirth
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}
