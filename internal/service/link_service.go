package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

// LinkService manages link lifecycle and redirect resolution.
type LinkService struct {
	links        LinkRepository
	users        UserRepository
	clientOrigin string
	timeout      time.Duration
}

// NewLinkService creates a LinkService. clientOrigin is the origin short
// links are served from; timeout bounds every store round trip.
func NewLinkService(links LinkRepository, users UserRepository, clientOrigin string, timeout time.Duration) *LinkService {
	return &LinkService{
		links:        links,
		users:        users,
		clientOrigin: clientOrigin,
		timeout:      timeout,
	}
}

// CreateLink persists a new link for the creator. An empty backHalf is
// filled with a generated alias, retried a bounded number of times on
// collision; a caller-supplied backHalf is never retried and surfaces
// database.ErrBackHalfExists on collision.
func (s *LinkService) CreateLink(ctx context.Context, creatorID int64, title, destination, backHalf string) (*models.Link, error) {
	const op = "service.LinkService.CreateLink"
	const maxAttempts = 5

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if backHalf != "" {
		link, err := s.links.Create(ctx, title, destination, backHalf, s.shortLink(backHalf), creatorID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create link: %w", op, mapErr(err))
		}

		return link, nil
	}

	for i := 0; i < maxAttempts; i++ {
		generated, err := GenerateBackHalf(DefaultBackHalfLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate back half: %w", op, err)
		}

		link, err := s.links.Create(ctx, title, destination, generated, s.shortLink(generated), creatorID)
		if err != nil {
			if errors.Is(err, database.ErrBackHalfExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to create link: %w", op, mapErr(err))
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrAliasExhausted)
}

// BackHalfTaken reports whether an alias is already in use.
func (s *LinkService) BackHalfTaken(ctx context.Context, backHalf string) (bool, error) {
	const op = "service.LinkService.BackHalfTaken"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	taken, err := s.links.ExistsByBackHalf(ctx, backHalf)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check back half: %w", op, mapErr(err))
	}

	return taken, nil
}

// ListLinks returns one page of the creator's links plus the number of rows
// matching the search across all pages. sortBy is a validated
// "field_direction" token.
func (s *LinkService) ListLinks(ctx context.Context, creatorID int64, search, sortBy string, offset, limit int) ([]models.Link, int64, error) {
	const op = "service.LinkService.ListLinks"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sortField, sortDir, _ := strings.Cut(sortBy, "_")

	links, total, err := s.links.FindByCreator(ctx, creatorID, database.LinkFilter{
		Search:    search,
		SortField: sortField,
		SortDir:   sortDir,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list links: %w", op, mapErr(err))
	}

	return links, total, nil
}

// UpdateLink applies a partial update to a link owned by creatorID.
// Non-existent links surface database.ErrLinkNotFound; links owned by
// someone else surface ErrAccessDenied and stay unmodified.
func (s *LinkService) UpdateLink(ctx context.Context, id, creatorID int64, upd database.LinkUpdate) error {
	const op = "service.LinkService.UpdateLink"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorizeOwner(ctx, id, creatorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if upd.BackHalf != nil {
		shortLink := s.shortLink(*upd.BackHalf)
		upd.ShortLink = &shortLink
	}

	if err := s.links.Update(ctx, id, upd); err != nil {
		return fmt.Errorf("%s: failed to update link: %w", op, mapErr(err))
	}

	return nil
}

// DeleteLink removes a link owned by creatorID, with the same not-found and
// ownership semantics as UpdateLink.
func (s *LinkService) DeleteLink(ctx context.Context, id, creatorID int64) error {
	const op = "service.LinkService.DeleteLink"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorizeOwner(ctx, id, creatorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.links.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, mapErr(err))
	}

	return nil
}

// Resolve turns a back half into the destination to redirect to,
// incrementing the link's and the owner's visit counters. The two
// increments are individually atomic but share no transaction; a failure
// between them leaves the pair inconsistent, which is accepted for this
// fire-and-forget analytics path. A miss mutates nothing.
func (s *LinkService) Resolve(ctx context.Context, backHalf string) (string, error) {
	const op = "service.LinkService.Resolve"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	link, err := s.links.GetByBackHalf(ctx, backHalf)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve back half: %w", op, mapErr(err))
	}

	if err := s.links.IncrementVisitCount(ctx, link.ID); err != nil {
		return "", fmt.Errorf("%s: failed to count link visit: %w", op, mapErr(err))
	}

	if err := s.users.IncrementVisitCount(ctx, link.CreatorID); err != nil {
		return "", fmt.Errorf("%s: failed to count user visit: %w", op, mapErr(err))
	}

	destination := link.Destination
	if !strings.HasPrefix(destination, "https://") && !strings.HasPrefix(destination, "http://") {
		destination = "https://" + destination
	}

	return destination, nil
}

func (s *LinkService) authorizeOwner(ctx context.Context, id, creatorID int64) error {
	exists, err := s.links.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check link: %w", mapErr(err))
	}
	if !exists {
		return database.ErrLinkNotFound
	}

	owned, err := s.links.ExistsByIDAndCreator(ctx, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to check link ownership: %w", mapErr(err))
	}
	if !owned {
		return ErrAccessDenied
	}

	return nil
}

func (s *LinkService) shortLink(backHalf string) string {
	return s.clientOrigin + "/" + backHalf
}
