package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

func handleCreateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateLink"
	const successMsg = "Short link generated successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		if req.BackHalf != "" {
			taken, err := svc.BackHalfTaken(r.Context(), req.BackHalf)
			if err != nil {
				serverError(w, r, op, err)
				return
			}
			if taken {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"backHalf", req.BackHalf, "This backHalf is already in use."))
				return
			}
		}

		link, err := svc.CreateLink(r.Context(), userIDFrom(r.Context()), req.Title, req.Destination, req.BackHalf)
		if err != nil {
			// The uniqueness pre-check races with concurrent creation, so
			// the store-level violation still maps to the same field error.
			if errors.Is(err, database.ErrBackHalfExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"backHalf", req.BackHalf, "This backHalf is already in use."))
				return
			}

			serverError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link)))
	}
}

func handleMyLinks(svc LinkService, validate *validator.Validate, apiOrigin string) http.HandlerFunc {
	const op = "api.http.handleMyLinks"
	const successMsg = "Links fetched successfully."

	baseURL := apiOrigin + "/links/my-links"

	return func(w http.ResponseWriter, r *http.Request) {
		q := parseMyLinksQuery(r)

		if err := validate.Struct(q); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		links, total, err := svc.ListLinks(r.Context(), userIDFrom(r.Context()), q.Search, q.SortBy, q.Offset, q.Limit)
		if err != nil {
			serverError(w, r, op, err)
			return
		}

		resp := myLinksResponse{
			Total:  total,
			Offset: q.Offset,
			Limit:  q.Limit,
			Next:   service.NextLink(baseURL, q.Search, q.SortBy, q.Offset, q.Limit, int(total)),
			Prev:   service.PrevLink(baseURL, q.Search, q.SortBy, q.Offset, q.Limit),
			Links:  make([]linkResponse, 0, len(links)),
		}
		for i := range links {
			resp.Links = append(resp.Links, toLinkResponse(&links[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, resp))
	}
}

func handleUpdateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateLink"

	return func(w http.ResponseWriter, r *http.Request) {
		linkID, ok := linkIDFrom(w, r)
		if !ok {
			return
		}

		var req updateLinkRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		err := svc.UpdateLink(r.Context(), linkID, userIDFrom(r.Context()), database.LinkUpdate{
			Title:       req.Title,
			Destination: req.Destination,
			BackHalf:    req.BackHalf,
		})
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
			case errors.Is(err, service.ErrAccessDenied):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.AccessDeniedResponse)
			case errors.Is(err, database.ErrBackHalfExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrorResponse(
					"backHalf", derefOrEmpty(req.BackHalf), "This backHalf is already in use."))
			default:
				serverError(w, r, op, err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeleteLink"

	return func(w http.ResponseWriter, r *http.Request) {
		linkID, ok := linkIDFrom(w, r)
		if !ok {
			return
		}

		err := svc.DeleteLink(r.Context(), linkID, userIDFrom(r.Context()))
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
			case errors.Is(err, service.ErrAccessDenied):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.AccessDeniedResponse)
			default:
				serverError(w, r, op, err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		backHalf := chi.URLParam(r, "backHalf")

		destination, err := svc.Resolve(r.Context(), backHalf)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.NotFoundResponse)
				return
			}

			serverError(w, r, op, err)
			return
		}

		http.Redirect(w, r, destination, http.StatusFound)
	}
}

func linkIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	linkID, err := strconv.ParseInt(chi.URLParam(r, "linkID"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.FieldErrorResponse(
			"linkId", chi.URLParam(r, "linkID"), "Invalid link id."))
		return 0, false
	}

	return linkID, true
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
