package service

import (
	"slices"

	"github.com/vadimbarashkov/shortly/internal/models"
)

// RoleAllowed reports whether an account with the given email may hold the
// requested role. It is the single authorization policy consulted by both
// registration and profile updates.
func RoleAllowed(role models.Role, email string, whitelist []string) bool {
	if role != models.RoleAdmin {
		return true
	}

	return slices.Contains(whitelist, email)
}
