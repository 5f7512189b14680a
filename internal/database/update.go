package database

import "github.com/vadimbarashkov/shortly/internal/models"

// UserUpdate describes a partial update of a user record. Nil fields are
// left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *models.Role
}

// LinkUpdate describes a partial update of a link record. Nil fields are
// left untouched.
type LinkUpdate struct {
	Title       *string
	Destination *string
	BackHalf    *string
	ShortLink   *string
}

// LinkFilter narrows and orders an owner-scoped link listing. SortField and
// SortDir must already be validated; unknown values fall back to newest
// first.
type LinkFilter struct {
	// Search is matched case-insensitively as a whole word against titles.
	// Empty means no filtering.
	Search    string
	SortField string
	SortDir   string
	Offset    int
	Limit     int
}
