package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) CredentialsByEmail(ctx context.Context, email string) (int64, string, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.String(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, upd database.UserUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id int64, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) SetPassResetToken(ctx context.Context, id int64, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementVisitCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, title, destination, backHalf, shortLink string, creatorID int64) (*models.Link, error) {
	args := m.Called(ctx, title, destination, backHalf, shortLink, creatorID)
	if link := args.Get(0); link != nil {
		return link.(*models.Link), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) GetByBackHalf(ctx context.Context, backHalf string) (*models.Link, error) {
	args := m.Called(ctx, backHalf)
	if link := args.Get(0); link != nil {
		return link.(*models.Link), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) ExistsByBackHalf(ctx context.Context, backHalf string) (bool, error) {
	args := m.Called(ctx, backHalf)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepository) ExistsByIDAndCreator(ctx context.Context, id, creatorID int64) (bool, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepository) FindByCreator(ctx context.Context, creatorID int64, filter database.LinkFilter) ([]models.Link, int64, error) {
	args := m.Called(ctx, creatorID, filter)
	if links := args.Get(0); links != nil {
		return links.([]models.Link), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockLinkRepository) Update(ctx context.Context, id int64, upd database.LinkUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockLinkRepository) IncrementVisitCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLinkRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) NewAccessToken(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) NewRefreshToken(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) NewPassResetToken(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) VerifyRefreshToken(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenIssuer) VerifyPassResetToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetLink(ctx context.Context, to, name, resetLink string) error {
	args := m.Called(ctx, to, name, resetLink)
	return args.Error(0)
}

func (m *MockMailer) SendPassResetInfo(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}
