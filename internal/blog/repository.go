// AngelaMos | 2026
// repository.go

package blog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type Repository interface {
	workflow.Store[*Post]

	Create(ctx context.Context, post *Post) error
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	ViewPublished(ctx context.Context, slug string) (*Post, error)
	Like(ctx context.Context, slug string) (int64, error)
	Update(ctx context.Context, post *Post, editable []workflow.Status) error
	List(ctx context.Context, params ListParams) ([]Post, int, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
}

const postColumns = `id, title, slug, excerpt, content, author_id, author_name,
		       author_role, author_avatar, category, tags, views, likes, status,
		       publish_date, seo, rejection_reason, submitted_by, reviewed_by,
		       reviewed_at, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO blog_posts (
			id, title, slug, excerpt, content, author_id, author_name,
			author_role, author_avatar, category, tags, status, seo, submitted_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.AuthorID, p.AuthorName,
		p.AuthorRole, p.AuthorAvatar, p.Category, p.Tags, p.Status, p.SEO,
		p.SubmittedBy,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create post: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Post, error) {
	return r.getOne(ctx, "find post", `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return r.getOne(ctx, "get post", `SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug)
}

// ViewPublished returns a published post and counts the view in the same
// statement.
func (r *repository) ViewPublished(ctx context.Context, slug string) (*Post, error) {
	query := `
		UPDATE blog_posts
		SET views = views + 1
		WHERE slug = $1 AND status = $2
		RETURNING ` + postColumns
	return r.getOne(ctx, "view post", query, slug, workflow.StatusPublished)
}

func (r *repository) Like(ctx context.Context, slug string) (int64, error) {
	var likes int64
	err := r.db.GetContext(ctx, &likes, `
		UPDATE blog_posts
		SET likes = likes + 1
		WHERE slug = $1 AND status = $2
		RETURNING likes`, slug, workflow.StatusPublished)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("like post: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("like post: %w", err)
	}
	return likes, nil
}

func (r *repository) getOne(ctx context.Context, op, query string, args ...any) (*Post, error) {
	var p Post
	err := r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// Transition applies a decision if the post is still in one of from.
// The first approval stamps publish_date; later ones keep it.
func (r *repository) Transition(
	ctx context.Context,
	id string,
	from []workflow.Status,
	change workflow.Change,
) (*Post, error) {
	query := `
		UPDATE blog_posts
		SET status = $3,
		    rejection_reason = $4,
		    reviewed_by = $5,
		    reviewed_at = $6,
		    publish_date = CASE WHEN $3 = 'published'
		                        THEN COALESCE(publish_date, $6)
		                        ELSE publish_date END,
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + postColumns

	var p Post
	err := r.db.GetContext(ctx, &p, query,
		id,
		workflow.StatusStrings(from),
		string(change.To),
		change.Reason,
		nullIfEmpty(change.ReviewerID),
		change.ReviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("transition post: %w", err)
	}

	return &p, nil
}

func (r *repository) Update(
	ctx context.Context,
	p *Post,
	editable []workflow.Status,
) error {
	query := `
		UPDATE blog_posts
		SET title = $3, slug = $4, excerpt = $5, content = $6, category = $7,
		    tags = $8, seo = $9, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + postColumns

	err := r.db.GetContext(ctx, p, query,
		p.ID, workflow.StatusStrings(editable),
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.Tags, p.SEO,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update post: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update post: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Post, int, error) {
	params.Normalize()

	conditions := []string{"status = $1"}
	args := []any{params.Status}
	argIdx := 2

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"search_vector @@ plainto_tsquery('english', $%d)", argIdx))
		args = append(args, params.Search)
		argIdx++
	}

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	if params.Tag != "" {
		tagJSON, err := json.Marshal([]string{params.Tag})
		if err != nil {
			return nil, 0, fmt.Errorf("encode tag filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("tags @> $%d::jsonb", argIdx))
		args = append(args, string(tagJSON))
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM blog_posts WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM blog_posts
		WHERE %s
		ORDER BY COALESCE(publish_date, created_at) DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset())

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return posts, total, nil
}

func (r *repository) Categories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	if err := r.db.SelectContext(ctx, &out, `
		SELECT category, COUNT(*) AS count
		FROM blog_posts
		WHERE status = $1
		GROUP BY category
		ORDER BY count DESC, category`, workflow.StatusPublished,
	); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
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
