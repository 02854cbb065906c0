// AngelaMos | 2026
// handler.go

package blog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/middleware"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/blogs", func(r chi.Router) {
		r.Get("/categories", h.Categories)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/{slug}", h.Get)
			r.Post("/{slug}/like", h.Like)

			r.Group(func(r chi.Router) {
				r.Use(authenticator)
				r.With(middleware.RequireCapability(rbac.WriteContent)).Post("/", h.Create)
				r.With(middleware.RequireCapability(rbac.WriteContent)).Put("/{slug}", h.Update)
				r.With(middleware.RequireCapability(rbac.ReviewContent)).Delete("/{slug}", h.Archive)
				r.With(middleware.RequireCapability(rbac.ReviewContent)).Patch("/{slug}/status", h.SetStatus)
			})
		})

		r.With(authenticator, middleware.RequireCapability(rbac.ReviewContent)).
			Get("/pending-posts", h.ListPending)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	posts, total, err := h.service.ListPublished(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, mapPosts(posts, ToPublicResponse), params.Page, params.Limit, total)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	posts, total, err := h.service.ListPending(r.Context(), middleware.GetActor(r.Context()), params)
	if err != nil {
		writePostError(w, err)
		return
	}

	core.Paginated(w, mapPosts(posts, ToStaffResponse), params.Page, params.Limit, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.View(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writePostError(w, err)
		return
	}

	core.OK(w, ToPublicResponse(p))
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")

	likes, err := h.service.Like(r.Context(), postSlug)
	if err != nil {
		writePostError(w, err)
		return
	}

	core.OK(w, LikeResponse{Slug: postSlug, Likes: likes})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writePostError(w, err)
		return
	}

	core.CreatedWithMessage(w, ToStaffResponse(p), "post submitted for review")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Update(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"), req)
	if err != nil {
		writePostError(w, err)
		return
	}

	core.OK(w, ToStaffResponse(p))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Archive(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		writePostError(w, err)
		return
	}

	core.OKWithMessage(w, ToStaffResponse(p), "post archived")
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.SetStatus(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"), req)
	if err != nil {
		writePostError(w, err)
		return
	}

	core.OK(w, ToStaffResponse(p))
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if categories == nil {
		categories = []CategoryCount{}
	}

	core.OK(w, categories)
}

func parseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		Limit:    parseIntQuery(r, "limit", 10),
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	}
	params.Normalize()
	return params
}

func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotTransitionable):
		core.JSONError(w, core.NewAppError(
			err,
			"no item in a transitionable state",
			http.StatusNotFound,
			"NOT_FOUND",
		))
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	default:
		core.JSONError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
