// Package service holds the business flows of the application: account
// registration and sessions, link management, alias generation, pagination
// and redirect resolution. Services consume repository contracts and never
// touch the persistence engine directly.
package service

import (
	"context"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

// UserRepository defines the account store contract consumed by services.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// CredentialsByEmail is the only operation exposing the stored
	// password hash.
	CredentialsByEmail(ctx context.Context, email string) (int64, string, error)

	Update(ctx context.Context, id int64, upd database.UserUpdate) error
	SetRefreshToken(ctx context.Context, id int64, token *string) error
	SetPassResetToken(ctx context.Context, id int64, token *string) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	IncrementVisitCount(ctx context.Context, id int64) error

	// Delete removes the account and cascades to every owned link.
	Delete(ctx context.Context, id int64) error
}

// LinkRepository defines the link store contract consumed by services.
type LinkRepository interface {
	Create(ctx context.Context, title, destination, backHalf, shortLink string, creatorID int64) (*models.Link, error)
	GetByBackHalf(ctx context.Context, backHalf string) (*models.Link, error)
	ExistsByBackHalf(ctx context.Context, backHalf string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByIDAndCreator(ctx context.Context, id, creatorID int64) (bool, error)
	FindByCreator(ctx context.Context, creatorID int64, filter database.LinkFilter) ([]models.Link, int64, error)
	Update(ctx context.Context, id int64, upd database.LinkUpdate) error
	IncrementVisitCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// TokenIssuer defines the token-signing primitive consumed by services.
type TokenIssuer interface {
	NewAccessToken(userID int64) (string, error)
	NewRefreshToken(userID int64) (string, error)
	NewPassResetToken(email string) (string, error)
	VerifyRefreshToken(token string) (int64, error)
	VerifyPassResetToken(token string) (string, error)
}

// Mailer defines the outbound mail transport consumed by services.
type Mailer interface {
	SendResetLink(ctx context.Context, to, name, resetLink string) error
	SendPassResetInfo(ctx context.Context, to, name string) error
}
