// AngelaMos | 2026
// engine_test.go

package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

type doc struct {
	ID     string
	Status Status
	Reason string
	Writes int
}

func (d *doc) WorkflowStatus() Status { return d.Status }

type memStore struct {
	mu      sync.Mutex
	docs    map[string]*doc
	failErr error
}

func newMemStore(docs ...*doc) *memStore {
	s := &memStore{docs: make(map[string]*doc)}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *memStore) Transition(
	_ context.Context,
	id string,
	from []Status,
	change Change,
) (*doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	d, ok := s.docs[id]
	if !ok || !slices.Contains(from, d.Status) {
		return nil, fmt.Errorf("transition: %w", core.ErrNotFound)
	}

	d.Status = change.To
	d.Reason = change.Reason
	d.Writes++
	cp := *d
	return &cp, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("find: %w", core.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *countingRecorder) ObserveTransition(_, action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, action+":"+outcome)
}

func manager(a Action) Decision {
	return Decision{Action: a, ReviewerID: "m-1", ReviewerRole: rbac.RoleManager}
}

func TestApproveFromPending(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusPending})
	rec := &countingRecorder{}
	e := NewEngine[*doc](ContentBlog, store, EngineConfig{Recorder: rec})

	got, err := e.Apply(context.Background(), "a", manager(ActionApprove))
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)
	assert.Equal(t, []string{"approve:applied"}, rec.outcomes)
}

func TestApproveAlreadyPublishedIsIdempotent(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusPublished})
	rec := &countingRecorder{}
	e := NewEngine[*doc](ContentOffice, store, EngineConfig{Recorder: rec})

	for range 3 {
		got, err := e.Apply(context.Background(), "a", manager(ActionApprove))
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, got.Status)
	}

	assert.Equal(t, 0, store.docs["a"].Writes)
	assert.Equal(t, "approve:noop", rec.outcomes[2])
}

func TestApproveArchivedIsNotFound(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusArchived})
	e := NewEngine[*doc](ContentBlog, store, EngineConfig{})

	_, err := e.Apply(context.Background(), "a", manager(ActionApprove))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, err, ErrNotTransitionable)
	assert.Equal(t, StatusArchived, store.docs["a"].Status)
}

func TestApplyMissingItem(t *testing.T) {
	e := NewEngine[*doc](ContentBlog, newMemStore(), EngineConfig{})

	_, err := e.Apply(context.Background(), "missing", manager(ActionReject))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRejectPersistsReason(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusPending})
	e := NewEngine[*doc](ContentOffice, store, EngineConfig{})

	d := manager(ActionReject)
	d.Reason = "duplicate listing"

	got, err := e.Apply(context.Background(), "a", d)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, got.Status)
	assert.Equal(t, "duplicate listing", got.Reason)
}

func TestEditorCannotDecide(t *testing.T) {
	for _, action := range []Action{ActionApprove, ActionReject} {
		t.Run(string(action), func(t *testing.T) {
			store := newMemStore(&doc{ID: "a", Status: StatusPending})
			rec := &countingRecorder{}
			e := NewEngine[*doc](ContentBlog, store, EngineConfig{Recorder: rec})

			_, err := e.Apply(context.Background(), "a", Decision{
				Action:       action,
				ReviewerID:   "e-1",
				ReviewerRole: rbac.RoleEditor,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrForbidden)
			assert.Equal(t, StatusPending, store.docs["a"].Status)
			assert.Equal(t, 0, store.docs["a"].Writes)
			assert.Equal(t, []string{string(action) + ":forbidden"}, rec.outcomes)
		})
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusPending})
	store.failErr = errors.New("connection reset")
	e := NewEngine[*doc](ContentBlog, store, EngineConfig{})

	_, err := e.Apply(context.Background(), "a", manager(ActionApprove))
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestConcurrentDecisionsLastWriteWins(t *testing.T) {
	store := newMemStore(&doc{ID: "a", Status: StatusPending})
	e := NewEngine[*doc](ContentBlog, store, EngineConfig{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			//nolint:errcheck // outcome asserted on the store
			_, _ = e.Apply(context.Background(), "a", manager(ActionApprove))
		}()
	}
	wg.Wait()

	assert.Equal(t, StatusPublished, store.docs["a"].Status)
	assert.Equal(t, 1, store.docs["a"].Writes)
}
