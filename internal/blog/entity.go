// AngelaMos | 2026
// entity.go

package blog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type Post struct {
	ID              string          `db:"id"`
	Title           string          `db:"title"`
	Slug            string          `db:"slug"`
	Excerpt         string          `db:"excerpt"`
	Content         string          `db:"content"`
	AuthorID        *string         `db:"author_id"`
	AuthorName      string          `db:"author_name"`
	AuthorRole      string          `db:"author_role"`
	AuthorAvatar    string          `db:"author_avatar"`
	Category        string          `db:"category"`
	Tags            Tags            `db:"tags"`
	Views           int64           `db:"views"`
	Likes           int64           `db:"likes"`
	Status          workflow.Status `db:"status"`
	PublishDate     *time.Time      `db:"publish_date"`
	SEO             SEO             `db:"seo"`
	RejectionReason string          `db:"rejection_reason"`
	SubmittedBy     *string         `db:"submitted_by"`
	ReviewedBy      *string         `db:"reviewed_by"`
	ReviewedAt      *time.Time      `db:"reviewed_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (p *Post) WorkflowStatus() workflow.Status {
	return p.Status
}

func (p *Post) SubmittedByUser(userID string) bool {
	return p.SubmittedBy != nil && *p.SubmittedBy == userID
}

// Tags is stored as a JSONB array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) Scan(src any) error {
	return scanJSON(src, t)
}

type SEO struct {
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

func (s SEO) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SEO) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan jsonb: unsupported type %T", src)
	}
	return json.Unmarshal(data, dst)
}

type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count"    json:"count"`
}
