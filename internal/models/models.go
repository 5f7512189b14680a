package models

import "time"

// Role determines what a user account is allowed to do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user record.
	ID int64
	// Name is the display name chosen at registration.
	Name string
	// Email is the unique address the account is registered under.
	Email string
	// PasswordHash is the bcrypt hash of the account secret. Repositories
	// only populate it when credentials are explicitly requested.
	PasswordHash string
	// Role is either "user" or "admin".
	Role Role
	// TotalVisitCount accumulates visits across all links the user owns.
	TotalVisitCount int64
	// PassResetToken is the outstanding password-reset credential, if any.
	PassResetToken *string
	// RefreshToken is the outstanding refresh credential, if any.
	RefreshToken *string
	// CreatedAt is the timestamp indicating when the account was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the account was last updated.
	UpdatedAt time.Time
}

// Link represents a short alias pointing at a destination URL.
type Link struct {
	// ID is the unique identifier for the link record.
	ID int64
	// Title is the human-readable label for the link.
	Title string
	// Destination is the URL visitors are redirected to.
	Destination string
	// BackHalf is the globally unique short alias.
	BackHalf string
	// ShortLink is the full short URL derived from the back half.
	ShortLink string
	// CreatorID references the owning user.
	CreatorID int64
	// TotalVisitCount tracks the number of successful resolutions.
	TotalVisitCount int64
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the link was last updated.
	UpdatedAt time.Time
}
