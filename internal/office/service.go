// AngelaMos | 2026
// service.go

package office

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
	"github.com/carterperez-dev/airline-directory/internal/slug"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

var ErrDuplicateOffice = core.NewAppError(
	core.ErrDuplicateKey,
	"office already exists for this airline in this city",
	http.StatusConflict,
	"DUPLICATE",
)

type ServiceConfig struct {
	Recorder workflow.Recorder
	Logger   *slog.Logger
}

type Service struct {
	repo   Repository
	engine *workflow.Engine[*Office]
	logger *slog.Logger
}

func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo: repo,
		engine: workflow.NewEngine[*Office](workflow.ContentOffice, repo, workflow.EngineConfig{
			Recorder: cfg.Recorder,
			Logger:   logger,
		}),
		logger: logger.With("component", "office"),
	}
}

// Create always stores a new office as pending, whoever submits it.
func (s *Service) Create(
	ctx context.Context,
	actor rbac.Actor,
	req CreateOfficeRequest,
) (*Office, error) {
	if err := actor.Authorize(rbac.WriteContent); err != nil {
		return nil, fmt.Errorf("create office: %w", err)
	}

	o := &Office{
		ID:          uuid.New().String(),
		AirlineID:   strings.TrimSpace(req.AirlineID),
		AirlineName: strings.TrimSpace(req.AirlineName),
		City:        strings.TrimSpace(req.City),
		Country:     strings.TrimSpace(req.Country),
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       strings.ToLower(req.Email),
		Hours:       req.Hours,
		Image:       strings.TrimSpace(req.Image),
		Logo:        strings.TrimSpace(req.Logo),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      workflow.StatusPending,
	}
	if req.Rating != nil {
		o.Rating = *req.Rating
	}
	if actor.ID != "" {
		o.SubmittedBy = &actor.ID
	}
	o.Slug = slug.Join(o.AirlineName, o.City, o.Country)

	if err := checkFields(o); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicateOffice
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "office submitted", "office_id", o.ID, "slug", o.Slug, "by", actor.ID)

	return o, nil
}

// Update merges req into the stored office. Pending offices can be edited
// by their submitter or by office managers; published ones only by office
// managers. Archived offices are never found.
func (s *Service) Update(
	ctx context.Context,
	actor rbac.Actor,
	officeSlug string,
	req UpdateOfficeRequest,
) (*Office, error) {
	if err := actor.Authorize(rbac.WriteContent); err != nil {
		return nil, fmt.Errorf("update office: %w", err)
	}

	o, err := s.repo.GetBySlug(ctx, officeSlug)
	if err != nil {
		return nil, err
	}

	manager := actor.Can(rbac.ManageOffices)
	editable := []workflow.Status{workflow.StatusPending}
	if manager {
		editable = append(editable, workflow.StatusPublished)
	}

	switch {
	case o.Status.Terminal():
		return nil, fmt.Errorf("update office %s: %w", officeSlug, core.ErrNotFound)
	case !o.Status.Editable() && !manager:
		return nil, fmt.Errorf("update published office: %w", core.ErrForbidden)
	case !manager && !o.SubmittedByUser(actor.ID):
		return nil, fmt.Errorf("update office submitted by another user: %w", core.ErrForbidden)
	}

	if req.Verified != nil && *req.Verified != o.Verified && !manager {
		return nil, fmt.Errorf("set verified: %w", core.ErrForbidden)
	}

	applyUpdate(o, req)

	if err := checkFields(o); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, o, editable); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicateOffice
		}
		return nil, err
	}

	return o, nil
}

// checkFields runs on the trimmed office, so whitespace-only identity
// fields are caught whatever the caller validated.
func checkFields(o *Office) error {
	switch {
	case o.AirlineID == "" || o.AirlineName == "" || o.City == "" || o.Country == "":
		return core.BadRequestError("airline id, airline name, city and country must not be blank")
	case o.Slug == "":
		return core.BadRequestError("airline name, city and country must contain letters or digits")
	case !core.ValidUploadPath(o.Image) || !core.ValidUploadPath(o.Logo):
		return core.BadRequestError("image and logo must be paths under uploads/")
	}
	return nil
}

func applyUpdate(o *Office, req UpdateOfficeRequest) {
	rename := false
	setString := func(dst *string, v *string, identity bool) {
		if v == nil {
			return
		}
		trimmed := strings.TrimSpace(*v)
		if identity && trimmed != *dst {
			rename = true
		}
		*dst = trimmed
	}

	setString(&o.AirlineName, req.AirlineName, true)
	setString(&o.City, req.City, true)
	setString(&o.Country, req.Country, true)
	setString(&o.Address, req.Address, false)
	setString(&o.Phone, req.Phone, false)
	setString(&o.Hours, req.Hours, false)
	setString(&o.Image, req.Image, false)
	setString(&o.Logo, req.Logo, false)
	if req.Email != nil {
		o.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Latitude != nil {
		o.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		o.Longitude = req.Longitude
	}
	if req.Rating != nil {
		o.Rating = *req.Rating
	}
	if req.Verified != nil {
		o.Verified = *req.Verified
	}

	// published slugs are public links and stay stable
	if rename && o.Status.Editable() {
		o.Slug = slug.Join(o.AirlineName, o.City, o.Country)
	}
}

func (s *Service) Approve(ctx context.Context, actor rbac.Actor, officeSlug string) (*Office, error) {
	return s.decide(ctx, officeSlug, workflow.Decision{
		Action:       workflow.ActionApprove,
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
	})
}

func (s *Service) Reject(
	ctx context.Context,
	actor rbac.Actor,
	officeSlug, reason string,
) (*Office, error) {
	return s.decide(ctx, officeSlug, workflow.Decision{
		Action:       workflow.ActionReject,
		Reason:       strings.TrimSpace(reason),
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
	})
}

// Archive is the soft delete for offices.
func (s *Service) Archive(ctx context.Context, actor rbac.Actor, officeSlug string) (*Office, error) {
	if err := actor.Authorize(rbac.ManageOffices); err != nil {
		return nil, fmt.Errorf("archive office: %w", err)
	}

	return s.decide(ctx, officeSlug, workflow.Decision{
		Action:       workflow.ActionArchive,
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
	})
}

func (s *Service) decide(ctx context.Context, officeSlug string, d workflow.Decision) (*Office, error) {
	o, err := s.repo.GetBySlug(ctx, officeSlug)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%s office %s: %w", d.Action, officeSlug, workflow.ErrNotTransitionable)
		}
		return nil, err
	}

	return s.engine.Apply(ctx, o.ID, d)
}

func (s *Service) GetPublished(ctx context.Context, officeSlug string) (*Office, error) {
	return s.repo.GetPublishedBySlug(ctx, officeSlug)
}

func (s *Service) ListPublished(ctx context.Context, params ListParams) ([]Office, int, error) {
	params.Status = workflow.StatusPublished
	return s.repo.List(ctx, params)
}

func (s *Service) ListPending(
	ctx context.Context,
	actor rbac.Actor,
	params ListParams,
) ([]Office, int, error) {
	if err := actor.Authorize(rbac.ReviewContent); err != nil {
		return nil, 0, fmt.Errorf("list pending offices: %w", err)
	}

	params.Status = workflow.StatusPending
	return s.repo.List(ctx, params)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

type NearbyOffice struct {
	Office
	DistanceKm float64
}

// Nearby narrows candidates with a bounding box in SQL, then ranks them by
// exact great-circle distance.
func (s *Service) Nearby(ctx context.Context, params NearbyParams) ([]NearbyOffice, error) {
	params.Normalize()

	var boxPtr *BoundingBox
	if box, ok := BoundingBoxAround(params.Latitude, params.Longitude, params.MaxDistance); ok {
		boxPtr = &box
	}

	candidates, err := s.repo.WithCoordinates(ctx, boxPtr)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyOffice, 0, len(candidates))
	for _, o := range candidates {
		if !o.HasCoordinates() {
			continue
		}
		d := Haversine(params.Latitude, params.Longitude, *o.Latitude, *o.Longitude)
		if d <= params.MaxDistance {
			out = append(out, NearbyOffice{Office: o, DistanceKm: d})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })

	if len(out) > params.Limit {
		out = out[:params.Limit]
	}

	return out, nil
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	_, total, err := s.repo.List(ctx, ListParams{
		Page:   1,
		Limit:  1,
		Status: workflow.StatusPending,
	})
	return total, err
}
