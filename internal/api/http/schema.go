package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vadimbarashkov/shortly/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type createLinkRequest struct {
	Title       string `json:"title" validate:"required"`
	Destination string `json:"destination" validate:"required,url"`
	BackHalf    string `json:"backHalf" validate:"omitempty,min=1,max=64"`
}

type updateLinkRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Destination *string `json:"destination" validate:"omitempty,url"`
	BackHalf    *string `json:"backHalf" validate:"omitempty,min=1,max=64"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// myLinksQuery carries the validated query string of the listing endpoint.
type myLinksQuery struct {
	Search string `json:"search"`
	SortBy string `json:"sortby" validate:"oneof=title_asc title_desc destination_asc destination_desc createdAt_asc createdAt_desc"`
	Offset int    `json:"offset" validate:"gte=0"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
}

// parseMyLinksQuery reads the query string, applying defaults before
// validation. Malformed numbers fall through as out-of-range values so the
// validator reports them on the right field.
func parseMyLinksQuery(r *http.Request) myLinksQuery {
	q := myLinksQuery{
		Search: r.URL.Query().Get("search"),
		SortBy: "createdAt_desc",
		Offset: 0,
		Limit:  100,
	}

	if raw := r.URL.Query().Get("sortby"); raw != "" {
		q.SortBy = raw
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		q.Offset = n
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = 0
		}
		q.Limit = n
	}

	return q
}

type userResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	TotalVisitCount int64     `json:"total_visit_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		TotalVisitCount: user.TotalVisitCount,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

type linkResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Destination     string    `json:"destination"`
	BackHalf        string    `json:"back_half"`
	ShortLink       string    `json:"short_link"`
	TotalVisitCount int64     `json:"total_visit_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toLinkResponse(link *models.Link) linkResponse {
	return linkResponse{
		ID:              link.ID,
		Title:           link.Title,
		Destination:     link.Destination,
		BackHalf:        link.BackHalf,
		ShortLink:       link.ShortLink,
		TotalVisitCount: link.TotalVisitCount,
		CreatedAt:       link.CreatedAt,
		UpdatedAt:       link.UpdatedAt,
	}
}

type sessionResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type myLinksResponse struct {
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
	Next   *string        `json:"next"`
	Prev   *string        `json:"prev"`
	Links  []linkResponse `json:"links"`
}
