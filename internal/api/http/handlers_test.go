package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/internal/token"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

type MockAuthService struct {
	mock.Mock
}

func (s *MockAuthService) Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, *service.TokenPair, error) {
	args := s.Called(ctx, name, email, password, role)
	user, _ := args.Get(0).(*models.User)
	pair, _ := args.Get(1).(*service.TokenPair)
	return user, pair, args.Error(2)
}

func (s *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *service.TokenPair, error) {
	args := s.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	pair, _ := args.Get(1).(*service.TokenPair)
	return user, pair, args.Error(2)
}

func (s *MockAuthService) Logout(ctx context.Context, userID int64) error {
	args := s.Called(ctx, userID)
	return args.Error(0)
}

func (s *MockAuthService) Refresh(refreshToken string) (string, error) {
	args := s.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (s *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	args := s.Called(ctx, email)
	return args.Error(0)
}

func (s *MockAuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	args := s.Called(ctx, resetToken, password)
	return args.Error(0)
}

type MockLinkService struct {
	mock.Mock
}

func (s *MockLinkService) CreateLink(ctx context.Context, creatorID int64, title, destination, backHalf string) (*models.Link, error) {
	args := s.Called(ctx, creatorID, title, destination, backHalf)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) BackHalfTaken(ctx context.Context, backHalf string) (bool, error) {
	args := s.Called(ctx, backHalf)
	return args.Bool(0), args.Error(1)
}

func (s *MockLinkService) ListLinks(ctx context.Context, creatorID int64, search, sortBy string, offset, limit int) ([]models.Link, int64, error) {
	args := s.Called(ctx, creatorID, search, sortBy, offset, limit)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Get(1).(int64), args.Error(2)
}

func (s *MockLinkService) UpdateLink(ctx context.Context, id, creatorID int64, upd database.LinkUpdate) error {
	args := s.Called(ctx, id, creatorID, upd)
	return args.Error(0)
}

func (s *MockLinkService) DeleteLink(ctx context.Context, id, creatorID int64) error {
	args := s.Called(ctx, id, creatorID)
	return args.Error(0)
}

func (s *MockLinkService) Resolve(ctx context.Context, backHalf string) (string, error) {
	args := s.Called(ctx, backHalf)
	return args.String(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (s *MockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	args := s.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (s *MockUserService) Update(ctx context.Context, id int64, upd service.UserUpdate) (*models.User, error) {
	args := s.Called(ctx, id, upd)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (s *MockUserService) Delete(ctx context.Context, id int64) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

// stubVerifier accepts exactly one bearer token.
type stubVerifier struct {
	userID int64
}

func (v stubVerifier) VerifyAccessToken(tokenStr string) (int64, error) {
	switch tokenStr {
	case "valid-token":
		return v.userID, nil
	case "expired-token":
		return 0, token.ErrTokenExpired
	default:
		return 0, token.ErrTokenInvalid
	}
}

type HandlersTestSuite struct {
	suite.Suite
	logger      *httplog.Logger
	authSvcMock *MockAuthService
	linkSvcMock *MockLinkService
	userSvcMock *MockUserService
	server      *httptest.Server
	e           *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.authSvcMock = new(MockAuthService)
	suite.linkSvcMock = new(MockLinkService)
	suite.userSvcMock = new(MockUserService)

	router := NewRouter(suite.logger, RouterOptions{
		AllowedOrigins:   []string{"https://*"},
		APIOrigin:        "https://api.shortly.test",
		RefreshCookieAge: 7 * 24 * time.Hour,
		RateLimit: config.RateLimit{
			Window:    time.Hour,
			Basic:     10000,
			Auth:      10000,
			PassReset: 10000,
		},
	}, suite.authSvcMock, suite.linkSvcMock, suite.userSvcMock, stubVerifier{userID: 1})

	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.authSvcMock.AssertExpectations(suite.T())
	suite.linkSvcMock.AssertExpectations(suite.T())
	suite.userSvcMock.AssertExpectations(suite.T())
	suite.server.Close()
}

func (suite *HandlersTestSuite) authorized(req *httpexpect.Request) *httpexpect.Request {
	return req.WithHeader("Authorization", "Bearer valid-token")
}

func (suite *HandlersTestSuite) TestRegister() {
	const path = "/auth/register"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("code", response.CodeBadRequest)
	})

	suite.Run("validation error", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{
				"name":     "John Doe",
				"email":    "not an email",
				"password": "short",
				"role":     "user",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError).
			ContainsKey("details")
	})

	suite.Run("duplicate email", func() {
		suite.authSvcMock.
			On("Register", mock.Anything, "John Doe", "john.doe@example.com", "qwerty123", models.RoleUser).
			Return(nil, nil, database.ErrEmailExists).
			Once()

		suite.e.POST(path).
			WithJSON(map[string]string{
				"name":     "John Doe",
				"email":    "john.doe@example.com",
				"password": "qwerty123",
				"role":     "user",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("admin not whitelisted", func() {
		suite.authSvcMock.
			On("Register", mock.Anything, "John Doe", "john.doe@example.com", "qwerty123", models.RoleAdmin).
			Return(nil, nil, service.ErrRoleNotAllowed).
			Once()

		suite.e.POST(path).
			WithJSON(map[string]string{
				"name":     "John Doe",
				"email":    "john.doe@example.com",
				"password": "qwerty123",
				"role":     "admin",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeBadRequest)
	})

	suite.Run("success", func() {
		user := &models.User{ID: 1, Name: "John Doe", Email: "john.doe@example.com", Role: models.RoleUser}
		pair := &service.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}

		suite.authSvcMock.
			On("Register", mock.Anything, "John Doe", "john.doe@example.com", "qwerty123", models.RoleUser).
			Return(user, pair, nil).
			Once()

		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"name":     "John Doe",
				"email":    "john.doe@example.com",
				"password": "qwerty123",
				"role":     "user",
			}).
			Expect().
			Status(http.StatusOK)

		resp.Cookie(refreshCookieName).Value().IsEqual("refresh-token")

		resp.JSON().Object().
			HasValue("status", response.StatusSuccess).
			Path("$.data.access_token").IsEqual("access-token")
	})
}

func (suite *HandlersTestSuite) TestLogin() {
	const path = "/auth/login"

	suite.Run("unknown email", func() {
		suite.authSvcMock.
			On("Login", mock.Anything, "ghost@example.com", "qwerty123").
			Return(nil, nil, database.ErrUserNotFound).
			Once()

		suite.e.POST(path).
			WithJSON(map[string]string{
				"email":    "ghost@example.com",
				"password": "qwerty123",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("wrong password", func() {
		suite.authSvcMock.
			On("Login", mock.Anything, "john.doe@example.com", "qwerty1234").
			Return(nil, nil, service.ErrInvalidCredentials).
			Once()

		suite.e.POST(path).
			WithJSON(map[string]string{
				"email":    "john.doe@example.com",
				"password": "qwerty1234",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("success", func() {
		user := &models.User{ID: 1, Email: "john.doe@example.com"}
		pair := &service.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}

		suite.authSvcMock.
			On("Login", mock.Anything, "john.doe@example.com", "qwerty123").
			Return(user, pair, nil).
			Once()

		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"email":    "john.doe@example.com",
				"password": "qwerty123",
			}).
			Expect().
			Status(http.StatusOK)

		resp.Cookie(refreshCookieName).Value().IsEqual("refresh-token")
		resp.JSON().Object().Path("$.data.user.email").IsEqual("john.doe@example.com")
	})
}

func (suite *HandlersTestSuite) TestLogout() {
	const path = "/auth/logout"

	suite.Run("missing token", func() {
		suite.e.DELETE(path).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeAccessTokenError)
	})

	suite.Run("expired token", func() {
		suite.e.DELETE(path).
			WithHeader("Authorization", "Bearer expired-token").
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeAccessTokenExpired)
	})

	suite.Run("success", func() {
		suite.authSvcMock.
			On("Logout", mock.Anything, int64(1)).
			Return(nil).
			Once()

		suite.authorized(suite.e.DELETE(path)).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestRefreshToken() {
	const path = "/auth/refresh-token"

	suite.Run("missing cookie", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeUnauthorized)
	})

	suite.Run("expired refresh token", func() {
		suite.authSvcMock.
			On("Refresh", "stale").
			Return("", token.ErrTokenExpired).
			Once()

		suite.e.GET(path).
			WithCookie(refreshCookieName, "stale").
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeRefreshTokenExpired)
	})

	suite.Run("invalid refresh token", func() {
		suite.authSvcMock.
			On("Refresh", "garbage").
			Return("", token.ErrTokenInvalid).
			Once()

		suite.e.GET(path).
			WithCookie(refreshCookieName, "garbage").
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeRefreshTokenError)
	})

	suite.Run("success", func() {
		suite.authSvcMock.
			On("Refresh", "refresh-token").
			Return("fresh-access-token", nil).
			Once()

		suite.e.GET(path).
			WithCookie(refreshCookieName, "refresh-token").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Path("$.data.access_token").IsEqual("fresh-access-token")
	})
}

func (suite *HandlersTestSuite) TestForgotPassword() {
	const path = "/auth/forgot-password"

	suite.Run("unknown email still accepted", func() {
		suite.authSvcMock.
			On("ForgotPassword", mock.Anything, "ghost@example.com").
			Return(nil).
			Once()

		suite.e.POST(path).
			WithJSON(map[string]string{"email": "ghost@example.com"}).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestResetPassword() {
	const path = "/auth/reset-password"

	suite.Run("consumed token", func() {
		suite.authSvcMock.
			On("ResetPassword", mock.Anything, "used-token", "newpass123").
			Return(service.ErrResetTokenNotFound).
			Once()

		suite.e.POST(path).
			WithQuery("token", "used-token").
			WithJSON(map[string]string{"password": "newpass123"}).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("code", response.CodeTokenNotFound)
	})

	suite.Run("expired token", func() {
		suite.authSvcMock.
			On("ResetPassword", mock.Anything, "stale-token", "newpass123").
			Return(token.ErrTokenExpired).
			Once()

		suite.e.POST(path).
			WithQuery("token", "stale-token").
			WithJSON(map[string]string{"password": "newpass123"}).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().
			HasValue("code", response.CodeResetTokenExpired)
	})

	suite.Run("success", func() {
		suite.authSvcMock.
			On("ResetPassword", mock.Anything, "reset-token", "newpass123").
			Return(nil).
			Once()

		suite.e.POST(path).
			WithQuery("token", "reset-token").
			WithJSON(map[string]string{"password": "newpass123"}).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestCreateLink() {
	const path = "/links/generate"

	suite.Run("requires authentication", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{
				"title":       "Docs",
				"destination": "https://docs.example.com",
			}).
			Expect().
			Status(http.StatusUnauthorized)
	})

	suite.Run("taken back half", func() {
		suite.linkSvcMock.
			On("BackHalfTaken", mock.Anything, "docs").
			Return(true, nil).
			Once()

		suite.authorized(suite.e.POST(path)).
			WithJSON(map[string]string{
				"title":       "Docs",
				"destination": "https://docs.example.com",
				"backHalf":    "docs",
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("success with generated alias", func() {
		link := &models.Link{
			ID:        10,
			Title:     "Docs",
			BackHalf:  "abc12",
			ShortLink: "https://shortly.test/abc12",
		}

		suite.linkSvcMock.
			On("CreateLink", mock.Anything, int64(1), "Docs", "https://docs.example.com", "").
			Return(link, nil).
			Once()

		suite.authorized(suite.e.POST(path)).
			WithJSON(map[string]string{
				"title":       "Docs",
				"destination": "https://docs.example.com",
			}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Path("$.data.back_half").IsEqual("abc12")
	})
}

func (suite *HandlersTestSuite) TestMyLinks() {
	const path = "/links/my-links"

	suite.Run("invalid sortby", func() {
		suite.authorized(suite.e.GET(path)).
			WithQuery("sortby", "title_up").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("invalid limit", func() {
		suite.authorized(suite.e.GET(path)).
			WithQuery("limit", "500").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("paginated response", func() {
		links := []models.Link{{ID: 1, Title: "Docs"}, {ID: 2, Title: "Blog"}}

		suite.linkSvcMock.
			On("ListLinks", mock.Anything, int64(1), "", "createdAt_desc", 0, 2).
			Return(links, int64(5), nil).
			Once()

		obj := suite.authorized(suite.e.GET(path)).
			WithQuery("limit", "2").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Object()

		obj.HasValue("total", 5)
		obj.HasValue("offset", 0)
		obj.HasValue("limit", 2)
		obj.Value("next").String().
			IsEqual("https://api.shortly.test/links/my-links?limit=2&offset=2&sortby=createdAt_desc")
		obj.Value("prev").IsNull()
		obj.Value("links").Array().Length().IsEqual(2)
	})
}

func (suite *HandlersTestSuite) TestUpdateLink() {
	suite.Run("invalid link id", func() {
		suite.authorized(suite.e.PATCH("/links/not-a-number")).
			WithJSON(map[string]string{"title": "Docs"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeValidationError)
	})

	suite.Run("foreign link", func() {
		suite.linkSvcMock.
			On("UpdateLink", mock.Anything, int64(10), int64(1), mock.Anything).
			Return(service.ErrAccessDenied).
			Once()

		suite.authorized(suite.e.PATCH("/links/10")).
			WithJSON(map[string]string{"title": "Docs"}).
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			HasValue("code", response.CodeAccessDenied)
	})

	suite.Run("missing link", func() {
		suite.linkSvcMock.
			On("UpdateLink", mock.Anything, int64(10), int64(1), mock.Anything).
			Return(database.ErrLinkNotFound).
			Once()

		suite.authorized(suite.e.PATCH("/links/10")).
			WithJSON(map[string]string{"title": "Docs"}).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("code", response.CodeNotFound)
	})

	suite.Run("success", func() {
		suite.linkSvcMock.
			On("UpdateLink", mock.Anything, int64(10), int64(1), mock.Anything).
			Return(nil).
			Once()

		suite.authorized(suite.e.PATCH("/links/10")).
			WithJSON(map[string]string{"title": "Docs"}).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestDeleteLink() {
	suite.Run("foreign link", func() {
		suite.linkSvcMock.
			On("DeleteLink", mock.Anything, int64(10), int64(1)).
			Return(service.ErrAccessDenied).
			Once()

		suite.authorized(suite.e.DELETE("/links/10")).
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			HasValue("code", response.CodeAccessDenied)
	})

	suite.Run("success", func() {
		suite.linkSvcMock.
			On("DeleteLink", mock.Anything, int64(10), int64(1)).
			Return(nil).
			Once()

		suite.authorized(suite.e.DELETE("/links/10")).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestCurrentUser() {
	const path = "/users/current"

	suite.Run("success", func() {
		user := &models.User{ID: 1, Name: "John Doe", Email: "john.doe@example.com", Role: models.RoleUser}

		suite.userSvcMock.
			On("Get", mock.Anything, int64(1)).
			Return(user, nil).
			Once()

		suite.authorized(suite.e.GET(path)).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Path("$.data.email").IsEqual("john.doe@example.com")
	})

	suite.Run("server error", func() {
		suite.userSvcMock.
			On("Get", mock.Anything, int64(1)).
			Return(nil, errors.New("unknown error")).
			Once()

		suite.authorized(suite.e.GET(path)).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("code", response.CodeServerError)
	})
}

func (suite *HandlersTestSuite) TestUpdateUser() {
	const path = "/users/current"

	suite.Run("role escalation rejected", func() {
		suite.userSvcMock.
			On("Update", mock.Anything, int64(1), mock.Anything).
			Return(nil, service.ErrRoleNotAllowed).
			Once()

		suite.authorized(suite.e.PATCH(path)).
			WithJSON(map[string]string{"role": "admin"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("code", response.CodeBadRequest)
	})

	suite.Run("success", func() {
		suite.userSvcMock.
			On("Update", mock.Anything, int64(1), mock.Anything).
			Return(&models.User{ID: 1}, nil).
			Once()

		suite.authorized(suite.e.PATCH(path)).
			WithJSON(map[string]string{"name": "Jane Doe"}).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestDeleteUser() {
	const path = "/users/current"

	suite.Run("success", func() {
		suite.userSvcMock.
			On("Delete", mock.Anything, int64(1)).
			Return(nil).
			Once()

		suite.authorized(suite.e.DELETE(path)).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	suite.Run("miss", func() {
		suite.linkSvcMock.
			On("Resolve", mock.Anything, "ghost").
			Return("", database.ErrLinkNotFound).
			Once()

		suite.e.GET("/ghost").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("code", response.CodeNotFound)
	})

	suite.Run("hit", func() {
		suite.linkSvcMock.
			On("Resolve", mock.Anything, "docs").
			Return("https://docs.example.com", nil).
			Once()

		resp := suite.e.GET("/docs").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound)

		resp.Header("Location").IsEqual("https://docs.example.com")
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
