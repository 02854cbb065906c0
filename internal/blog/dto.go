// AngelaMos | 2026
// dto.go

package blog

import (
	"strings"
	"time"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type SEORequest struct {
	MetaTitle       string   `json:"meta_title"       validate:"max=200"`
	MetaDescription string   `json:"meta_description" validate:"max=500"`
	Keywords        []string `json:"keywords"         validate:"max=20,dive,max=50"`
}

// CreatePostRequest accepts a status field for compatibility with older
// clients. It is ignored: new posts always enter review as pending.
type CreatePostRequest struct {
	Title    string      `json:"title"    validate:"required,min=5,max=200"`
	Excerpt  string      `json:"excerpt"  validate:"max=500"`
	Content  string      `json:"content"  validate:"required"`
	Category string      `json:"category" validate:"max=50"`
	Tags     []string    `json:"tags"     validate:"max=20,dive,max=50"`
	SEO      *SEORequest `json:"seo"`
	Status   string      `json:"status,omitempty"`
}

type UpdatePostRequest struct {
	Title    *string     `json:"title,omitempty"    validate:"omitempty,min=5,max=200"`
	Excerpt  *string     `json:"excerpt,omitempty"  validate:"omitempty,max=500"`
	Content  *string     `json:"content,omitempty"  validate:"omitempty,min=1"`
	Category *string     `json:"category,omitempty" validate:"omitempty,max=50"`
	Tags     *[]string   `json:"tags,omitempty"     validate:"omitempty,max=20,dive,max=50"`
	SEO      *SEORequest `json:"seo,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=published archived"`
	Reason string `json:"reason" validate:"max=1000"`
}

type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Tag      string
	Status   workflow.Status
}

func (p *ListParams) Normalize() {
	p.Page = min(max(p.Page, 1), core.MaxPage)
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	p.Search = strings.TrimSpace(p.Search)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.Tag = strings.ToLower(strings.TrimSpace(p.Tag))
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type AuthorResponse struct {
	ID     *string `json:"id,omitempty"`
	Name   string  `json:"name"`
	Role   string  `json:"role,omitempty"`
	Avatar string  `json:"avatar,omitempty"`
}

type PostResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt"`
	Content     string          `json:"content"`
	Author      AuthorResponse  `json:"author"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Views       int64           `json:"views"`
	Likes       int64           `json:"likes"`
	Status      workflow.Status `json:"status"`
	PublishDate *time.Time      `json:"publish_date,omitempty"`
	SEO         SEO             `json:"seo"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedBy     *string    `json:"submitted_by,omitempty"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

type LikeResponse struct {
	Slug  string `json:"slug"`
	Likes int64  `json:"likes"`
}

func ToPublicResponse(p *Post) PostResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:      p.ID,
		Title:   p.Title,
		Slug:    p.Slug,
		Excerpt: p.Excerpt,
		Content: p.Content,
		Author: AuthorResponse{
			ID:     p.AuthorID,
			Name:   p.AuthorName,
			Role:   p.AuthorRole,
			Avatar: p.AuthorAvatar,
		},
		Category:    p.Category,
		Tags:        tags,
		Views:       p.Views,
		Likes:       p.Likes,
		Status:      p.Status,
		PublishDate: p.PublishDate,
		SEO:         p.SEO,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToStaffResponse(p *Post) PostResponse {
	resp := ToPublicResponse(p)
	resp.RejectionReason = p.RejectionReason
	resp.SubmittedBy = p.SubmittedBy
	resp.ReviewedBy = p.ReviewedBy
	resp.ReviewedAt = p.ReviewedAt
	return resp
}

func mapPosts(posts []Post, fn func(*Post) PostResponse) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, fn(&posts[i]))
	}
	return out
}
