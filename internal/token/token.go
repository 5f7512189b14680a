// Package token issues and verifies the JWTs used for authentication.
// Access, refresh and password reset tokens are signed with HS256 using
// separate secrets, so a token of one kind never verifies as another.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vadimbarashkov/shortly/internal/config"
)

var (
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
)

// Manager signs and verifies the three token kinds from one config.JWT.
type Manager struct {
	accessSecret    []byte
	refreshSecret   []byte
	passResetSecret []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	passResetTTL    time.Duration
}

func NewManager(cfg config.JWT) *Manager {
	return &Manager{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		passResetSecret: []byte(cfg.PassResetSecret),
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		passResetTTL:    cfg.PassResetTTL,
	}
}

// NewAccessToken issues an access token whose subject is the user ID.
func (m *Manager) NewAccessToken(userID int64) (string, error) {
	const op = "token.Manager.NewAccessToken"

	signed, err := sign(strconv.FormatInt(userID, 10), m.accessSecret, m.accessTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// NewRefreshToken issues a refresh token whose subject is the user ID.
func (m *Manager) NewRefreshToken(userID int64) (string, error) {
	const op = "token.Manager.NewRefreshToken"

	signed, err := sign(strconv.FormatInt(userID, 10), m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// NewPassResetToken issues a password reset token whose subject is the
// user's email.
func (m *Manager) NewPassResetToken(email string) (string, error) {
	const op = "token.Manager.NewPassResetToken"

	signed, err := sign(email, m.passResetSecret, m.passResetTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// VerifyAccessToken validates an access token and returns the user ID.
func (m *Manager) VerifyAccessToken(tokenStr string) (int64, error) {
	const op = "token.Manager.VerifyAccessToken"

	subject, err := verify(tokenStr, m.accessSecret)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return userID, nil
}

// VerifyRefreshToken validates a refresh token and returns the user ID.
func (m *Manager) VerifyRefreshToken(tokenStr string) (int64, error) {
	const op = "token.Manager.VerifyRefreshToken"

	subject, err := verify(tokenStr, m.refreshSecret)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return userID, nil
}

// VerifyPassResetToken validates a password reset token and returns the
// email it was issued for.
func (m *Manager) VerifyPassResetToken(tokenStr string) (string, error) {
	const op = "token.Manager.VerifyPassResetToken"

	subject, err := verify(tokenStr, m.passResetSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return subject, nil
}

func sign(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func verify(tokenStr string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
