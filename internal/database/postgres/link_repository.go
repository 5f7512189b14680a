package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type linkRecord struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Destination     string    `db:"destination"`
	BackHalf        string    `db:"back_half"`
	ShortLink       string    `db:"short_link"`
	CreatorID       int64     `db:"creator_id"`
	TotalVisitCount int64     `db:"total_visit_count"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		ID:              r.ID,
		Title:           r.Title,
		Destination:     r.Destination,
		BackHalf:        r.BackHalf,
		ShortLink:       r.ShortLink,
		CreatorID:       r.CreatorID,
		TotalVisitCount: r.TotalVisitCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// sortColumns whitelists the sortable fields; anything else falls back to
// newest first.
var sortColumns = map[string]string{
	"title":       "title",
	"destination": "destination",
	"createdAt":   "created_at",
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, title, destination, backHalf, shortLink string, creatorID int64) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(title, destination, back_half, short_link, creator_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, title, destination, backHalf, shortLink, creatorID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrBackHalfExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) GetByBackHalf(ctx context.Context, backHalf string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByBackHalf"

	rec := new(linkRecord)
	query := `SELECT * FROM links WHERE back_half = $1`

	err := r.db.GetContext(ctx, rec, query, backHalf)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) ExistsByBackHalf(ctx context.Context, backHalf string) (bool, error) {
	const op = "database.postgres.LinkRepository.ExistsByBackHalf"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE back_half = $1)`

	if err := r.db.GetContext(ctx, &exists, query, backHalf); err != nil {
		return false, fmt.Errorf("%s: failed to check back half: %w", op, err)
	}

	return exists, nil
}

func (r *LinkRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const op = "database.postgres.LinkRepository.Exists"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("%s: failed to check link: %w", op, err)
	}

	return exists, nil
}

func (r *LinkRepository) ExistsByIDAndCreator(ctx context.Context, id, creatorID int64) (bool, error) {
	const op = "database.postgres.LinkRepository.ExistsByIDAndCreator"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE id = $1 AND creator_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, id, creatorID); err != nil {
		return false, fmt.Errorf("%s: failed to check link ownership: %w", op, err)
	}

	return exists, nil
}

// FindByCreator lists the creator's links for one page and reports how many
// rows match the filter across all pages.
func (r *LinkRepository) FindByCreator(ctx context.Context, creatorID int64, filter database.LinkFilter) ([]models.Link, int64, error) {
	const op = "database.postgres.LinkRepository.FindByCreator"

	where := `WHERE creator_id = $1`
	args := []any{creatorID}

	if filter.Search != "" {
		args = append(args, `\m`+escapeSearch(filter.Search)+`\M`)
		where += fmt.Sprintf(` AND title ~* $%d`, len(args))
	}

	countQuery := `SELECT count(*) FROM links ` + where

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count link records: %w", op, err)
	}

	column, ok := sortColumns[filter.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortDir == "asc" {
		direction = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	listQuery := fmt.Sprintf(`SELECT * FROM links %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, column, direction, len(args)-1, len(args))

	var recs []linkRecord
	if err := r.db.SelectContext(ctx, &recs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for _, rec := range recs {
		links = append(links, *rec.ToLink())
	}

	return links, total, nil
}

func (r *LinkRepository) Update(ctx context.Context, id int64, upd database.LinkUpdate) error {
	const op = "database.postgres.LinkRepository.Update"

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Destination != nil {
		add("destination", *upd.Destination)
	}
	if upd.BackHalf != nil {
		add("back_half", *upd.BackHalf)
	}
	if upd.ShortLink != nil {
		add("short_link", *upd.ShortLink)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE links SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, database.ErrBackHalfExists)
		}

		return fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

// IncrementVisitCount bumps the counter atomically in a single statement so
// concurrent redirects never lose updates.
func (r *LinkRepository) IncrementVisitCount(ctx context.Context, id int64) error {
	const op = "database.postgres.LinkRepository.IncrementVisitCount"

	query := `UPDATE links SET total_visit_count = total_visit_count + 1 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to increment visit count: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, id int64) error {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return nil
}

// escapeSearch neutralizes POSIX regex metacharacters in user search input
// before it is embedded in a word-boundary pattern.
func escapeSearch(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if strings.ContainsRune(`\^$.|?*+()[]{}`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}
