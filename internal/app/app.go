// Package app wires the configuration, storage, services and HTTP server
// together and owns the process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "github.com/vadimbarashkov/shortly/internal/api/http"
	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/database/postgres"
	"github.com/vadimbarashkov/shortly/internal/mail"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/internal/token"
	pg "github.com/vadimbarashkov/shortly/pkg/postgres"
)

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	db, err := pg.New(
		ctx,
		cfg.Postgres.DSN(),
		pg.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pg.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pg.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pg.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	userRepo := postgres.NewUserRepository(db)
	linkRepo := postgres.NewLinkRepository(db)

	tokenMgr := token.NewManager(cfg.JWT)

	mailer, err := mail.NewClient(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("%s: failed to create mail client: %w", op, err)
	}

	logger := httplog.NewLogger("shortly", httplog.Options{
		JSON:    cfg.Env == config.EnvProd,
		Concise: cfg.Env != config.EnvProd,
	})

	authSvc := service.NewAuthService(userRepo, tokenMgr, mailer, logger.Logger,
		cfg.WhitelistedEmails, cfg.ClientOrigin, cfg.StorageTimeout)
	linkSvc := service.NewLinkService(linkRepo, userRepo, cfg.ClientOrigin, cfg.StorageTimeout)
	userSvc := service.NewUserService(userRepo, cfg.WhitelistedEmails, cfg.StorageTimeout)

	router := api.NewRouter(logger, api.RouterOptions{
		AllowedOrigins:   cfg.HTTPServer.AllowedOrigins,
		APIOrigin:        cfg.APIOrigin,
		RefreshCookieAge: cfg.JWT.RefreshCookieAge,
		RateLimit:        cfg.RateLimit,
	}, authSvc, linkSvc, userSvc, tokenMgr)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
