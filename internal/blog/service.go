// AngelaMos | 2026
// service.go

package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/carterperez-dev/airline-directory/internal/auth"
	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
	"github.com/carterperez-dev/airline-directory/internal/slug"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

const defaultCategory = "general"

var ErrDuplicatePost = core.NewAppError(
	core.ErrDuplicateKey,
	"a post with this title already exists",
	http.StatusConflict,
	"DUPLICATE",
)

// AuthorLookup resolves the byline stored on a new post.
type AuthorLookup interface {
	GetByID(ctx context.Context, id string) (*auth.UserInfo, error)
}

type ServiceConfig struct {
	Authors  AuthorLookup
	Recorder workflow.Recorder
	Logger   *slog.Logger
}

type Service struct {
	repo      Repository
	authors   AuthorLookup
	engine    *workflow.Engine[*Post]
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		authors: cfg.Authors,
		engine: workflow.NewEngine[*Post](workflow.ContentBlog, repo, workflow.EngineConfig{
			Recorder: cfg.Recorder,
			Logger:   logger,
		}),
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With("component", "blog"),
	}
}

// Create stores a new post as pending. Any status in the request is ignored.
func (s *Service) Create(
	ctx context.Context,
	actor rbac.Actor,
	req CreatePostRequest,
) (*Post, error) {
	if err := actor.Authorize(rbac.WriteContent); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	p := &Post{
		ID:       uuid.New().String(),
		Title:    strings.TrimSpace(req.Title),
		Excerpt:  strings.TrimSpace(req.Excerpt),
		Content:  s.sanitizer.Sanitize(req.Content),
		Category: normalizeCategory(req.Category),
		Tags:     NormalizeTags(req.Tags),
		SEO:      toSEO(req.SEO),
		Status:   workflow.StatusPending,
	}
	p.Slug = slug.Make(p.Title)
	if p.Slug == "" {
		return nil, core.BadRequestError("title must contain letters or digits")
	}

	if actor.ID != "" {
		p.SubmittedBy = &actor.ID
		p.AuthorID = &actor.ID
	}
	if err := s.fillAuthor(ctx, p, actor); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicatePost
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "post submitted", "post_id", p.ID, "slug", p.Slug, "by", actor.ID)

	return p, nil
}

func (s *Service) fillAuthor(ctx context.Context, p *Post, actor rbac.Actor) error {
	p.AuthorRole = string(actor.Role)
	if s.authors == nil || actor.ID == "" {
		p.AuthorName = "Staff"
		return nil
	}

	info, err := s.authors.GetByID(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("lookup author: %w", err)
	}
	p.AuthorName = info.Name
	p.AuthorAvatar = info.Avatar
	return nil
}

// Update merges req into a post. Submitters may edit their own pending
// posts; reviewers may edit any post that is not archived.
func (s *Service) Update(
	ctx context.Context,
	actor rbac.Actor,
	postSlug string,
	req UpdatePostRequest,
) (*Post, error) {
	if err := actor.Authorize(rbac.WriteContent); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	p, err := s.repo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	reviewer := actor.Can(rbac.ReviewContent)
	editable := []workflow.Status{workflow.StatusPending, workflow.StatusDraft}
	if reviewer {
		editable = append(editable, workflow.StatusPublished)
	}

	switch {
	case p.Status.Terminal():
		return nil, fmt.Errorf("update post %s: %w", postSlug, core.ErrNotFound)
	case !slices.Contains(editable, p.Status):
		return nil, fmt.Errorf("update published post: %w", core.ErrForbidden)
	case !reviewer && !p.SubmittedByUser(actor.ID):
		return nil, fmt.Errorf("update post submitted by another user: %w", core.ErrForbidden)
	}

	s.applyUpdate(p, req)
	if p.Slug == "" {
		return nil, core.BadRequestError("title must contain letters or digits")
	}

	if err := s.repo.Update(ctx, p, editable); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicatePost
		}
		return nil, err
	}

	return p, nil
}

func (s *Service) applyUpdate(p *Post, req UpdatePostRequest) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
		if p.Status.Editable() {
			p.Slug = slug.Make(p.Title)
		}
	}
	if req.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil {
		p.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.Category != nil {
		p.Category = normalizeCategory(*req.Category)
	}
	if req.Tags != nil {
		p.Tags = NormalizeTags(*req.Tags)
	}
	if req.SEO != nil {
		p.SEO = toSEO(req.SEO)
	}
}

// SetStatus maps a requested status onto the workflow action reaching it.
func (s *Service) SetStatus(
	ctx context.Context,
	actor rbac.Actor,
	postSlug string,
	req StatusRequest,
) (*Post, error) {
	target, err := workflow.ParseStatus(req.Status)
	if err != nil {
		return nil, core.BadRequestError("status must be published or archived")
	}
	action, err := workflow.ActionFor(target)
	if err != nil {
		return nil, core.BadRequestError("status must be published or archived")
	}

	return s.decide(ctx, postSlug, workflow.Decision{
		Action:       action,
		Reason:       strings.TrimSpace(req.Reason),
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
	})
}

// Archive is the soft delete for posts and requires review rights.
func (s *Service) Archive(ctx context.Context, actor rbac.Actor, postSlug string) (*Post, error) {
	if err := actor.Authorize(rbac.ReviewContent); err != nil {
		return nil, fmt.Errorf("archive post: %w", err)
	}

	return s.decide(ctx, postSlug, workflow.Decision{
		Action:       workflow.ActionArchive,
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
	})
}

func (s *Service) decide(ctx context.Context, postSlug string, d workflow.Decision) (*Post, error) {
	p, err := s.repo.GetBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%s post %s: %w", d.Action, postSlug, workflow.ErrNotTransitionable)
		}
		return nil, err
	}

	return s.engine.Apply(ctx, p.ID, d)
}

// View returns a published post and counts the read.
func (s *Service) View(ctx context.Context, postSlug string) (*Post, error) {
	return s.repo.ViewPublished(ctx, postSlug)
}

func (s *Service) Like(ctx context.Context, postSlug string) (int64, error) {
	return s.repo.Like(ctx, postSlug)
}

func (s *Service) ListPublished(ctx context.Context, params ListParams) ([]Post, int, error) {
	params.Status = workflow.StatusPublished
	return s.repo.List(ctx, params)
}

func (s *Service) ListPending(
	ctx context.Context,
	actor rbac.Actor,
	params ListParams,
) ([]Post, int, error) {
	if err := actor.Authorize(rbac.ReviewContent); err != nil {
		return nil, 0, fmt.Errorf("list pending posts: %w", err)
	}

	params.Status = workflow.StatusPending
	return s.repo.List(ctx, params)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	_, total, err := s.repo.List(ctx, ListParams{
		Page:   1,
		Limit:  1,
		Status: workflow.StatusPending,
	})
	return total, err
}

func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	return s.repo.Categories(ctx)
}

// NormalizeTags lowercases and trims tags, dropping blanks and repeats
// while keeping first-seen order.
func NormalizeTags(tags []string) Tags {
	out := make(Tags, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return defaultCategory
	}
	return c
}

func toSEO(req *SEORequest) SEO {
	if req == nil {
		return SEO{}
	}
	return SEO{
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		Keywords:        []string(NormalizeTags(req.Keywords)),
	}
}
