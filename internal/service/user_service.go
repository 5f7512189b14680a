package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

// UserUpdate is a partial account update. A nil field is left untouched.
type UserUpdate struct {
	Name        *string
	Email       *string
	NewPassword *string
	Role        *models.Role
}

// UserService implements profile reads, updates and account removal.
type UserService struct {
	users     UserRepository
	whitelist []string
	timeout   time.Duration
}

func NewUserService(users UserRepository, whitelist []string, timeout time.Duration) *UserService {
	return &UserService{
		users:     users,
		whitelist: whitelist,
		timeout:   timeout,
	}
}

// Get returns the account by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.UserService.Get"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
	}

	return user, nil
}

// Update applies a partial update and returns the refreshed account.
// Escalating to the admin role requires the account's effective email,
// after any change in the same request, to be whitelisted.
func (s *UserService) Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	const op = "service.UserService.Update"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if upd.Role != nil {
		email := upd.Email
		if email == nil {
			user, err := s.users.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
			}
			email = &user.Email
		}

		if !RoleAllowed(*upd.Role, *email, s.whitelist) {
			return nil, fmt.Errorf("%s: %w", op, ErrRoleNotAllowed)
		}
	}

	rec := database.UserUpdate{
		Name:  upd.Name,
		Email: upd.Email,
		Role:  upd.Role,
	}

	if upd.NewPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}

		hashStr := string(hash)
		rec.PasswordHash = &hashStr
	}

	if err := s.users.Update(ctx, id, rec); err != nil {
		return nil, fmt.Errorf("%s: failed to update user: %w", op, mapErr(err))
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
	}

	return user, nil
}

// Delete removes the account along with every link it owns.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	const op = "service.UserService.Delete"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete user: %w", op, mapErr(err))
	}

	return nil
}
