package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

// TokenPair carries the two tokens returned by sign-in flows.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService implements registration, sessions and password recovery.
type AuthService struct {
	users        UserRepository
	tokens       TokenIssuer
	mailer       Mailer
	logger       *slog.Logger
	whitelist    []string
	clientOrigin string
	timeout      time.Duration
}

func NewAuthService(
	users UserRepository,
	tokens TokenIssuer,
	mailer Mailer,
	logger *slog.Logger,
	whitelist []string,
	clientOrigin string,
	timeout time.Duration,
) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		mailer:       mailer,
		logger:       logger,
		whitelist:    whitelist,
		clientOrigin: clientOrigin,
		timeout:      timeout,
	}
}

// Register creates an account and opens a session for it. Requesting the
// admin role requires the email to be whitelisted. A duplicate email
// surfaces database.ErrEmailExists.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, *TokenPair, error) {
	const op = "service.AuthService.Register"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if !RoleAllowed(role, email, s.whitelist) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrRoleNotAllowed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.users.Create(ctx, name, email, string(hash), role)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to create user: %w", op, mapErr(err))
	}

	pair, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, pair, nil
}

// Login verifies the credentials and opens a session. An unknown email
// surfaces database.ErrUserNotFound; a wrong password surfaces
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	const op = "service.AuthService.Login"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userID, hash, err := s.users.CredentialsByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to fetch credentials: %w", op, mapErr(err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
	}

	pair, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, pair, nil
}

// Logout clears the stored refresh token, ending the session.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	const op = "service.AuthService.Logout"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("%s: failed to clear refresh token: %w", op, mapErr(err))
	}

	return nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	const op = "service.AuthService.Refresh"

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.tokens.NewAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("%s: failed to issue access token: %w", op, err)
	}

	return accessToken, nil
}

// ForgotPassword issues a password reset token, stores it and mails the
// reset link. An unknown email is silently ignored so the endpoint does
// not reveal which addresses have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "service.AuthService.ForgotPassword"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil
		}

		return fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
	}

	resetToken, err := s.tokens.NewPassResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("%s: failed to issue reset token: %w", op, err)
	}

	resetLink := s.clientOrigin + "/reset-password?token=" + resetToken

	if err := s.mailer.SendResetLink(ctx, user.Email, user.Name, resetLink); err != nil {
		return fmt.Errorf("%s: failed to send reset link: %w", op, mapErr(err))
	}

	if err := s.users.SetPassResetToken(ctx, user.ID, &resetToken); err != nil {
		return fmt.Errorf("%s: failed to store reset token: %w", op, mapErr(err))
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password. A token
// that is expired, was never stored or was already consumed surfaces
// ErrResetTokenNotFound. The confirmation mail is best effort.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	const op = "service.AuthService.ResetPassword"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	email, err := s.tokens.VerifyPassResetToken(resetToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrResetTokenNotFound)
		}

		return fmt.Errorf("%s: failed to fetch user: %w", op, mapErr(err))
	}

	if user.PassResetToken == nil || *user.PassResetToken != resetToken {
		return fmt.Errorf("%s: %w", op, ErrResetTokenNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	if err := s.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("%s: failed to reset password: %w", op, mapErr(err))
	}

	if err := s.mailer.SendPassResetInfo(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn("failed to send password reset confirmation",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return nil
}

func (s *AuthService) openSession(ctx context.Context, userID int64) (*TokenPair, error) {
	accessToken, err := s.tokens.NewAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.NewRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, userID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", mapErr(err))
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
