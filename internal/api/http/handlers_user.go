package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

func handleCurrentUser(svc UserService) http.HandlerFunc {
	const op = "api.http.handleCurrentUser"
	const successMsg = "User fetched successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
				return
			}

			serverError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleUpdateUser(svc UserService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateUser"

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		upd := service.UserUpdate{
			Name:        req.Name,
			Email:       req.Email,
			NewPassword: req.Password,
		}
		if req.Role != nil {
			role := models.Role(*req.Role)
			upd.Role = &role
		}

		_, err := svc.Update(r.Context(), userIDFrom(r.Context()), upd)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
			case errors.Is(err, database.ErrEmailExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"email", derefOrEmpty(req.Email), "This email is already in use."))
			case errors.Is(err, service.ErrRoleNotAllowed):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse(
					response.CodeBadRequest, "You cannot escalate to the admin role."))
			default:
				serverError(w, r, op, err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteUser(svc UserService, cookies cookieWriter) http.HandlerFunc {
	const op = "api.http.handleDeleteUser"

	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), userIDFrom(r.Context())); err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
				return
			}

			serverError(w, r, op, err)
			return
		}

		cookies.clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
