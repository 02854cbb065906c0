// AngelaMos | 2026
// service_test.go

package office

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
	"github.com/carterperez-dev/airline-directory/internal/workflow"
)

type memRepo struct {
	mu      sync.Mutex
	offices map[string]*Office
}

func newMemRepo() *memRepo {
	return &memRepo{offices: map[string]*Office{}}
}

func (r *memRepo) Create(_ context.Context, o *Office) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.offices {
		if existing.Slug == o.Slug {
			return fmt.Errorf("create office: %w", core.ErrDuplicateKey)
		}
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt, o.LastUpdated = now, now, now
	cp := *o
	r.offices[o.ID] = &cp
	return nil
}

func (r *memRepo) find(match func(*Office) bool) (*Office, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.offices {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find office: %w", core.ErrNotFound)
}

func (r *memRepo) FindByID(_ context.Context, id string) (*Office, error) {
	return r.find(func(o *Office) bool { return o.ID == id })
}

func (r *memRepo) GetBySlug(_ context.Context, s string) (*Office, error) {
	return r.find(func(o *Office) bool { return o.Slug == s })
}

func (r *memRepo) GetPublishedBySlug(_ context.Context, s string) (*Office, error) {
	return r.find(func(o *Office) bool { return o.Slug == s && o.Status.Visible() })
}

func (r *memRepo) Transition(
	_ context.Context,
	id string,
	from []workflow.Status,
	change workflow.Change,
) (*Office, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offices[id]
	if !ok || !slices.Contains(from, o.Status) {
		return nil, fmt.Errorf("transition office: %w", core.ErrNotFound)
	}
	o.Status = change.To
	o.RejectionReason = change.Reason
	reviewer := change.ReviewerID
	reviewedAt := change.ReviewedAt
	o.ReviewedBy = &reviewer
	o.ReviewedAt = &reviewedAt
	cp := *o
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, o *Office, editable []workflow.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.offices[o.ID]
	if !ok || !slices.Contains(editable, current.Status) {
		return fmt.Errorf("update office: %w", core.ErrNotFound)
	}
	for id, other := range r.offices {
		if id != o.ID && other.Slug == o.Slug {
			return fmt.Errorf("update office: %w", core.ErrDuplicateKey)
		}
	}
	o.LastUpdated = time.Now()
	cp := *o
	r.offices[o.ID] = &cp
	return nil
}

func (r *memRepo) List(_ context.Context, params ListParams) ([]Office, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Office
	for _, o := range r.offices {
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		if params.Search != "" && !strings.Contains(
			strings.ToLower(o.AirlineName+" "+o.City),
			strings.ToLower(params.Search),
		) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	total := len(out)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return out[start:end], total, nil
}

func (r *memRepo) WithCoordinates(_ context.Context, box *BoundingBox) ([]Office, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Office
	for _, o := range r.offices {
		if !o.Status.Visible() || !o.HasCoordinates() {
			continue
		}
		if box == nil || box.Contains(*o.Latitude, *o.Longitude) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memRepo) Stats(_ context.Context) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &Stats{ByStatus: map[string]int{}}
	for _, o := range r.offices {
		s.Total++
		s.ByStatus[string(o.Status)]++
	}
	return s, nil
}

var (
	editor  = rbac.Actor{ID: "ed-1", Role: rbac.RoleEditor}
	editor2 = rbac.Actor{ID: "ed-2", Role: rbac.RoleEditor}
	manager = rbac.Actor{ID: "mgr-1", Role: rbac.RoleManager}
)

func ptr[T any](v T) *T { return &v }

func emiratesDubai() CreateOfficeRequest {
	return CreateOfficeRequest{
		AirlineID:   "EK",
		AirlineName: "Emirates",
		City:        "Dubai",
		Country:     "UAE",
		Latitude:    ptr(25.2048),
		Longitude:   ptr(55.2708),
	}
}

func TestCreateForcesPendingAndSlug(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})

	o, err := svc.Create(context.Background(), manager, emiratesDubai())
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusPending, o.Status)
	assert.Equal(t, "emirates-dubai-uae", o.Slug)
	assert.True(t, o.SubmittedByUser(manager.ID))
}

func TestCreateDuplicate(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, err = svc.Create(ctx, editor2, emiratesDubai())
	require.ErrorIs(t, err, ErrDuplicateOffice)
	assert.Equal(t, "office already exists for this airline in this city", core.ToAppError(err).Message)
}

func TestPendingHiddenUntilApproved(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, err = svc.GetPublished(ctx, o.Slug)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Approve(ctx, editor, o.Slug)
	require.ErrorIs(t, err, core.ErrForbidden)

	approved, err := svc.Approve(ctx, manager, o.Slug)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, manager.ID, *approved.ReviewedBy)

	again, err := svc.Approve(ctx, manager, o.Slug)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, again.Status)

	got, err := svc.GetPublished(ctx, o.Slug)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	list, total, err := svc.ListPublished(ctx, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestRejectKeepsReason(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, manager, o.Slug, "  wrong address ")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusArchived, rejected.Status)
	assert.Equal(t, "wrong address", rejected.RejectionReason)
}

func TestArchiveThenApproveNotTransitionable(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, err = svc.Archive(ctx, editor, o.Slug)
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Archive(ctx, manager, o.Slug)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, manager, o.Slug)
	require.ErrorIs(t, err, workflow.ErrNotTransitionable)
}

func TestUpdateOwnership(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, err = svc.Update(ctx, editor2, o.Slug, UpdateOfficeRequest{Phone: ptr("+971")})
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{Verified: ptr(true)})
	require.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{City: ptr("Abu Dhabi")})
	require.NoError(t, err)
	assert.Equal(t, "emirates-abu-dhabi-uae", updated.Slug)
	assert.Equal(t, 25.2048, *updated.Latitude)
}

func TestBlankAndForeignFieldsRejected(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	blankCity := emiratesDubai()
	blankCity.City = "  \t "
	_, err := svc.Create(ctx, editor, blankCity)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	remoteLogo := emiratesDubai()
	remoteLogo.Logo = "https://cdn.example.com/ek.png"
	_, err = svc.Create(ctx, editor, remoteLogo)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, err = svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{Country: ptr("   ")})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{Image: ptr("//evil.example.com/x.png")})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	stored, err := svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{Image: ptr("/uploads/offices/dxb.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "UAE", stored.Country)
	assert.Equal(t, "/uploads/offices/dxb.jpg", stored.Image)
}

func TestUpdatePublishedKeepsSlug(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, manager, o.Slug)
	require.NoError(t, err)

	_, err = svc.Update(ctx, editor, o.Slug, UpdateOfficeRequest{Phone: ptr("+971")})
	require.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.Update(ctx, manager, o.Slug, UpdateOfficeRequest{
		City:     ptr("Sharjah"),
		Verified: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "emirates-dubai-uae", updated.Slug)
	assert.Equal(t, "Sharjah", updated.City)
	assert.True(t, updated.Verified)
}

func TestNearbyOrdersByDistance(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	seed := []CreateOfficeRequest{
		{AirlineID: "EK", AirlineName: "Emirates", City: "Dubai", Country: "UAE",
			Latitude: ptr(25.2048), Longitude: ptr(55.2708)},
		{AirlineID: "G9", AirlineName: "Air Arabia", City: "Sharjah", Country: "UAE",
			Latitude: ptr(25.3463), Longitude: ptr(55.4209)},
		{AirlineID: "BA", AirlineName: "British Airways", City: "London", Country: "UK",
			Latitude: ptr(51.5074), Longitude: ptr(-0.1278)},
		{AirlineID: "FZ", AirlineName: "flydubai", City: "Dubai", Country: "UAE"},
	}
	for _, req := range seed {
		o, err := svc.Create(ctx, editor, req)
		require.NoError(t, err)
		_, err = svc.Approve(ctx, manager, o.Slug)
		require.NoError(t, err)
	}

	found, err := svc.Nearby(ctx, NearbyParams{Latitude: 25.33, Longitude: 55.40})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Sharjah", found[0].City)
	assert.Equal(t, "Dubai", found[1].City)
	assert.Less(t, found[0].DistanceKm, found[1].DistanceKm)
}

func TestNearbyWideRadiusAtHighLatitude(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	o, err := svc.Create(ctx, editor, CreateOfficeRequest{
		AirlineID: "SU", AirlineName: "Aeroflot", City: "Usinsk", Country: "Russia",
		Latitude: ptr(68.0), Longitude: ptr(58.0),
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, manager, o.Slug)
	require.NoError(t, err)

	found, err := svc.Nearby(ctx, NearbyParams{Latitude: 60, Longitude: 0, MaxDistance: 3000})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Usinsk", found[0].City)
	assert.Less(t, found[0].DistanceKm, 3000.0)
}

func TestListPendingRequiresReview(t *testing.T) {
	svc := NewService(newMemRepo(), ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Create(ctx, editor, emiratesDubai())
	require.NoError(t, err)

	_, _, err = svc.ListPending(ctx, editor, ListParams{Page: 1, Limit: 10})
	require.ErrorIs(t, err, core.ErrForbidden)

	list, total, err := svc.ListPending(ctx, manager, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}
