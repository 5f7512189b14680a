package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/internal/token"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

const refreshCookieName = "refreshToken"

// cookieWriter sets and clears the refresh token cookie.
type cookieWriter struct {
	maxAge time.Duration
}

func (c cookieWriter) set(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
	})
}

func (c cookieWriter) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

// decodeAndValidate parses the JSON body into req and runs validation,
// writing the error response itself. It reports whether the handler may
// proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidRequestBodyResponse)
		return false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

func serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.ServerErrorResponse)
}

func handleRegister(svc AuthService, validate *validator.Validate, cookies cookieWriter) http.HandlerFunc {
	const op = "api.http.handleRegister"
	const successMsg = "User registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		user, pair, err := svc.Register(r.Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
		if err != nil {
			switch {
			case errors.Is(err, database.ErrEmailExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"email", req.Email, "This email is already in use."))
			case errors.Is(err, service.ErrRoleNotAllowed):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeBadRequest, "You cannot register as an admin."))
			default:
				serverError(w, r, op, err)
			}
			return
		}

		cookies.set(w, pair.RefreshToken)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, sessionResponse{
			User:        toUserResponse(user),
			AccessToken: pair.AccessToken,
		}))
	}
}

func handleLogin(svc AuthService, validate *validator.Validate, cookies cookieWriter) http.HandlerFunc {
	const op = "api.http.handleLogin"
	const successMsg = "User logged in successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		user, pair, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"email", req.Email, "No user found with this email."))
			case errors.Is(err, service.ErrInvalidCredentials):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"password", "", "Invalid password."))
			default:
				serverError(w, r, op, err)
			}
			return
		}

		cookies.set(w, pair.RefreshToken)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, sessionResponse{
			User:        toUserResponse(user),
			AccessToken: pair.AccessToken,
		}))
	}
}

func handleLogout(svc AuthService, cookies cookieWriter) http.HandlerFunc {
	const op = "api.http.handleLogout"

	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), userIDFrom(r.Context())); err != nil {
			serverError(w, r, op, err)
			return
		}

		cookies.clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRefreshToken(svc AuthService) http.HandlerFunc {
	const op = "api.http.handleRefreshToken"
	const successMsg = "Access token refreshed successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.ErrorResponse(
				response.CodeUnauthorized, "Refresh token required."))
			return
		}

		accessToken, err := svc.Refresh(cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeRefreshTokenExpired, "Refresh token expired."))
			case errors.Is(err, token.ErrTokenInvalid):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeRefreshTokenError, "Invalid refresh token."))
			default:
				serverError(w, r, op, err)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, accessTokenResponse{
			AccessToken: accessToken,
		}))
	}
}

func handleForgotPassword(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleForgotPassword"

	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		// Unknown emails are deliberately indistinguishable from known
		// ones in the response.
		if err := svc.ForgotPassword(r.Context(), req.Email); err != nil {
			serverError(w, r, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleResetPassword(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleResetPassword"

	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		resetToken := r.URL.Query().Get("token")

		err := svc.ResetPassword(r.Context(), resetToken, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeResetTokenExpired, "Your password reset token has expired."))
			case errors.Is(err, token.ErrTokenInvalid):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeResetTokenError, "Invalid password reset token."))
			case errors.Is(err, service.ErrResetTokenNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.TokenNotFoundResponse)
			default:
				serverError(w, r, op, err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
