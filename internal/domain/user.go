package domain

import "time"

// UserRole is the authorization role of a user.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is a registered account.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Nickname        string
	Role            UserRole
	ProfileImageKey *string
	LastSeenAt      *time.Time
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// AuthUser is the identity carried by an authenticated request.
// It is reconstructed from token claims and never loaded from storage.
type AuthUser struct {
	ID       string
	Email    string
	Nickname string
	Role     UserRole
}

// IsAdmin reports whether the user holds the admin role.
func (u AuthUser) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserSummary is the public view of a user embedded in other resources.
type UserSummary struct {
	ID       string
	Email    string
	Nickname string
}

// Summary returns the public view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}
