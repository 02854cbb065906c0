// AngelaMos | 2026
// repository.go

package office

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type Repository interface {
	workflow.Store[*Office]

	Create(ctx context.Context, office *Office) error
	GetBySlug(ctx context.Context, slug string) (*Office, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Office, error)
	Update(ctx context.Context, office *Office, editable []workflow.Status) error
	List(ctx context.Context, params ListParams) ([]Office, int, error)
	WithCoordinates(ctx context.Context, box *BoundingBox) ([]Office, error)
	Stats(ctx context.Context) (*Stats, error)
}

const officeColumns = `id, slug, airline_id, airline_name, city, country, address,
		       phone, email, hours, image, logo, latitude, longitude, rating,
		       status, verified, rejection_reason, submitted_by, reviewed_by,
		       reviewed_at, last_updated, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Office) error {
	query := `
		INSERT INTO offices (
			id, slug, airline_id, airline_name, city, country, address, phone,
			email, hours, image, logo, latitude, longitude, rating, status,
			verified, submitted_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18)
		RETURNING last_updated, created_at, updated_at`

	err := r.db.GetContext(ctx, o, query,
		o.ID, o.Slug, o.AirlineID, o.AirlineName, o.City, o.Country,
		o.Address, o.Phone, o.Email, o.Hours, o.Image, o.Logo,
		o.Latitude, o.Longitude, o.Rating, o.Status, o.Verified, o.SubmittedBy,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create office: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create office: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Office, error) {
	return r.getOne(ctx, "find office", `SELECT `+officeColumns+` FROM offices WHERE id = $1`, id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Office, error) {
	return r.getOne(ctx, "get office", `SELECT `+officeColumns+` FROM offices WHERE slug = $1`, slug)
}

func (r *repository) GetPublishedBySlug(ctx context.Context, slug string) (*Office, error) {
	query := `SELECT ` + officeColumns + ` FROM offices WHERE slug = $1 AND status = $2`
	return r.getOne(ctx, "get published office", query, slug, workflow.StatusPublished)
}

func (r *repository) getOne(ctx context.Context, op, query string, args ...any) (*Office, error) {
	var o Office
	err := r.db.GetContext(ctx, &o, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// Transition writes the decision only if the office is still in one of
// the from states.
func (r *repository) Transition(
	ctx context.Context,
	id string,
	from []workflow.Status,
	change workflow.Change,
) (*Office, error) {
	query := `
		UPDATE offices
		SET status = $3,
		    rejection_reason = $4,
		    reviewed_by = $5,
		    reviewed_at = $6,
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + officeColumns

	var o Office
	err := r.db.GetContext(ctx, &o, query,
		id,
		workflow.StatusStrings(from),
		change.To,
		change.Reason,
		nullIfEmpty(change.ReviewerID),
		change.ReviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition office: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("transition office: %w", err)
	}

	return &o, nil
}

// Update saves editable fields only while the stored status is still one
// of editable. Status itself is never written here.
func (r *repository) Update(
	ctx context.Context,
	o *Office,
	editable []workflow.Status,
) error {
	query := `
		UPDATE offices
		SET slug = $3, airline_name = $4, city = $5, country = $6, address = $7,
		    phone = $8, email = $9, hours = $10, image = $11, logo = $12,
		    latitude = $13, longitude = $14, rating = $15, verified = $16,
		    last_updated = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + officeColumns

	err := r.db.GetContext(ctx, o, query,
		o.ID, workflow.StatusStrings(editable),
		o.Slug, o.AirlineName, o.City, o.Country, o.Address,
		o.Phone, o.Email, o.Hours, o.Image, o.Logo,
		o.Latitude, o.Longitude, o.Rating, o.Verified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update office: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update office: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update office: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Office, int, error) {
	params.Normalize()

	conditions := []string{"status = $1"}
	args := []any{params.Status}
	argIdx := 2

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(airline_name ILIKE $%d OR city ILIKE $%d OR country ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Airline != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(airline_id = $%d OR airline_name ILIKE $%d)", argIdx, argIdx+1))
		args = append(args, params.Airline, escapeLike(params.Airline))
		argIdx += 2
	}

	if params.City != "" {
		conditions = append(conditions, fmt.Sprintf("lower(city) = lower($%d)", argIdx))
		args = append(args, params.City)
		argIdx++
	}

	if params.Country != "" {
		conditions = append(conditions, fmt.Sprintf("lower(country) = lower($%d)", argIdx))
		args = append(args, params.Country)
		argIdx++
	}

	if params.Verified != nil {
		conditions = append(conditions, fmt.Sprintf("verified = $%d", argIdx))
		args = append(args, *params.Verified)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM offices WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count offices: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM offices
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		officeColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset())

	var offices []Office
	if err := r.db.SelectContext(ctx, &offices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list offices: %w", err)
	}

	return offices, total, nil
}

// WithCoordinates returns published offices that have a position, limited
// to box when one is given.
func (r *repository) WithCoordinates(ctx context.Context, box *BoundingBox) ([]Office, error) {
	query := `SELECT ` + officeColumns + `
		FROM offices
		WHERE status = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL`
	args := []any{workflow.StatusPublished}

	if box != nil {
		query += ` AND latitude BETWEEN $2 AND $3 AND longitude BETWEEN $4 AND $5`
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}

	var offices []Office
	if err := r.db.SelectContext(ctx, &offices, query, args...); err != nil {
		return nil, fmt.Errorf("offices with coordinates: %w", err)
	}

	return offices, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts,
		`SELECT status, COUNT(*) AS count FROM offices GROUP BY status`,
	); err != nil {
		return nil, fmt.Errorf("office status counts: %w", err)
	}

	stats := &Stats{ByStatus: make(map[string]int, len(counts))}
	for _, c := range counts {
		stats.ByStatus[string(c.Status)] = c.Count
		stats.Total += c.Count
	}

	var published struct {
		Verified      int     `db:"verified"`
		AverageRating float64 `db:"average_rating"`
	}
	if err := r.db.GetContext(ctx, &published, `
		SELECT COUNT(*) FILTER (WHERE verified) AS verified,
		       COALESCE(AVG(rating), 0) AS average_rating
		FROM offices
		WHERE status = $1`, workflow.StatusPublished,
	); err != nil {
		return nil, fmt.Errorf("office published stats: %w", err)
	}
	stats.Verified = published.Verified
	stats.AverageRating = published.AverageRating

	if err := r.db.SelectContext(ctx, &stats.TopCountries, `
		SELECT country, COUNT(*) AS count
		FROM offices
		WHERE status = $1
		GROUP BY country
		ORDER BY count DESC, country
		LIMIT 5`, workflow.StatusPublished,
	); err != nil {
		return nil, fmt.Errorf("office top countries: %w", err)
	}

	return stats, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
