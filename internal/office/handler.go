// AngelaMos | 2026
// handler.go

package office

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
	r.Route("/offices", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/stats/summary", h.Stats)
		r.Get("/search/nearby", h.Nearby)
		r.Get("/{slug}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.With(middleware.RequireCapability(rbac.WriteContent)).Post("/", h.Create)
			r.With(middleware.RequireCapability(rbac.WriteContent)).Put("/{slug}", h.Update)
			r.With(middleware.RequireCapability(rbac.WriteContent)).Patch("/{slug}", h.Update)
			r.With(middleware.RequireCapability(rbac.ManageOffices)).Delete("/{slug}", h.Archive)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(rbac.ReviewContent))
				r.Get("/pending", h.ListPending)
				r.Post("/{slug}/approve", h.Approve)
				r.Post("/{slug}/reject", h.Reject)
			})
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	offices, total, err := h.service.ListPublished(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, mapOffices(offices, ToPublicResponse), params.Page, params.Limit, total)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	offices, total, err := h.service.ListPending(r.Context(), middleware.GetActor(r.Context()), params)
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.Paginated(w, mapOffices(offices, ToStaffResponse), params.Page, params.Limit, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.OK(w, ToPublicResponse(o))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOfficeRequest
	if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	o, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.CreatedWithMessage(w, ToStaffResponse(o), "office submitted for review")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOfficeRequest
	if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	o, err := h.service.Update(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"), req)
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.OK(w, ToStaffResponse(o))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Archive(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.OKWithMessage(w, ToStaffResponse(o), "office archived")
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Approve(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.OKWithMessage(w, ToStaffResponse(o), "office approved")
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if r.ContentLength != 0 {
		if err := core.DecodeAndValidate(w, r, h.validator, &req); err != nil {
			core.JSONError(w, err)
			return
		}
	}

	o, err := h.service.Reject(r.Context(), middleware.GetActor(r.Context()), chi.URLParam(r, "slug"), req.Reason)
	if err != nil {
		writeOfficeError(w, err)
		return
	}

	core.OKWithMessage(w, ToStaffResponse(o), "office rejected")
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		core.BadRequest(w, "lat must be a number between -90 and 90")
		return
	}

	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		core.BadRequest(w, "lng must be a number between -180 and 180")
		return
	}

	params := NearbyParams{Latitude: lat, Longitude: lng}
	if v := q.Get("maxDistance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d <= 0 {
			core.BadRequest(w, "maxDistance must be a positive number of kilometres")
			return
		}
		params.MaxDistance = d
	}
	if v := q.Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}

	found, err := h.service.Nearby(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	out := make([]OfficeResponse, 0, len(found))
	for i := range found {
		resp := ToPublicResponse(&found[i].Office)
		d := found[i].DistanceKm
		resp.DistanceKm = &d
		out = append(out, resp)
	}

	core.OK(w, out)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := ListParams{
		Page:    parseIntQuery(r, "page", 1),
		Limit:   parseIntQuery(r, "limit", 10),
		Search:  q.Get("search"),
		Airline: q.Get("airline"),
		City:    q.Get("city"),
		Country: q.Get("country"),
	}

	if v := q.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			return params, core.BadRequestError("verified must be true or false")
		}
		params.Verified = &verified
	}

	params.Normalize()
	return params, nil
}

func writeOfficeError(w http.ResponseWriter, err error) {
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
		core.NotFound(w, "office")
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
