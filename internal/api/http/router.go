// Package http exposes the REST API and the public redirect endpoint.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, *service.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *service.TokenPair, error)
	Logout(ctx context.Context, userID int64) error
	Refresh(refreshToken string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

type LinkService interface {
	CreateLink(ctx context.Context, creatorID int64, title, destination, backHalf string) (*models.Link, error)
	BackHalfTaken(ctx context.Context, backHalf string) (bool, error)
	ListLinks(ctx context.Context, creatorID int64, search, sortBy string, offset, limit int) ([]models.Link, int64, error)
	UpdateLink(ctx context.Context, id, creatorID int64, upd database.LinkUpdate) error
	DeleteLink(ctx context.Context, id, creatorID int64) error
	Resolve(ctx context.Context, backHalf string) (string, error)
}

type UserService interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, upd service.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// RouterOptions collects the non-service knobs of the API surface.
type RouterOptions struct {
	AllowedOrigins   []string
	APIOrigin        string
	RefreshCookieAge time.Duration
	RateLimit        config.RateLimit
}

func NewRouter(
	logger *httplog.Logger,
	opts RouterOptions,
	authSvc AuthService,
	linkSvc LinkService,
	userSvc UserService,
	verifier AccessTokenVerifier,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.AllowContentType("application/json"))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.NotFoundResponse)
	})

	validate := getValidate()
	rl := NewRateLimiter(opts.RateLimit)
	authn := Authentication(verifier)

	cookies := cookieWriter{maxAge: opts.RefreshCookieAge}

	r.Route("/auth", func(r chi.Router) {
		r.With(rl.Limit(rateBasic)).
			Post("/register", handleRegister(authSvc, validate, cookies))
		r.With(rl.Limit(rateAuth)).
			Post("/login", handleLogin(authSvc, validate, cookies))
		r.With(rl.Limit(rateBasic), authn).
			Delete("/logout", handleLogout(authSvc, cookies))
		r.With(rl.Limit(rateBasic)).
			Get("/refresh-token", handleRefreshToken(authSvc))
		r.With(rl.Limit(rateBasic)).
			Post("/forgot-password", handleForgotPassword(authSvc, validate))
		r.With(rl.Limit(ratePassReset)).
			Post("/reset-password", handleResetPassword(authSvc, validate))
	})

	r.Route("/links", func(r chi.Router) {
		r.Use(rl.Limit(rateBasic), authn)

		r.Post("/generate", handleCreateLink(linkSvc, validate))
		r.Get("/my-links", handleMyLinks(linkSvc, validate, opts.APIOrigin))
		r.Patch("/{linkID}", handleUpdateLink(linkSvc, validate))
		r.Delete("/{linkID}", handleDeleteLink(linkSvc))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(rl.Limit(rateBasic), authn)

		r.Get("/current", handleCurrentUser(userSvc))
		r.Patch("/current", handleUpdateUser(userSvc, validate))
		r.Delete("/current", handleDeleteUser(userSvc, cookies))
	})

	r.With(rl.Limit(rateBasic)).Get("/{backHalf}", handleRedirect(linkSvc))

	return r
}

func getValidate() *validator.Validate {
	validate := validator.New()
	response.RegisterTagName(validate)
	return validate
}
