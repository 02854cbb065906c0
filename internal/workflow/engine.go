// AngelaMos | 2026
// engine.go

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

// Item is anything carrying a workflow status.
type Item interface {
	WorkflowStatus() Status
}

type Decision struct {
	Action       Action
	Reason       string
	ReviewerID   string
	ReviewerRole rbac.Role
}

// Change is what a Store writes when a transition applies.
type Change struct {
	To         Status
	Reason     string
	ReviewerID string
	ReviewedAt time.Time
}

// Store performs the conditional status write. Transition must update the
// item only if its current status is one of from, in a single statement,
// and return core.ErrNotFound when no row matched.
type Store[T Item] interface {
	Transition(ctx context.Context, id string, from []Status, change Change) (T, error)
	FindByID(ctx context.Context, id string) (T, error)
}

type Recorder interface {
	ObserveTransition(contentType, action, outcome string)
}

const (
	OutcomeApplied   = "applied"
	OutcomeNoop      = "noop"
	OutcomeRejected  = "not_transitionable"
	OutcomeNotFound  = "not_found"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

type Engine[T Item] struct {
	contentType ContentType
	store       Store[T]
	recorder    Recorder
	logger      *slog.Logger
	now         func() time.Time
}

type EngineConfig struct {
	Recorder Recorder
	Logger   *slog.Logger
}

func NewEngine[T Item](
	contentType ContentType,
	store Store[T],
	cfg EngineConfig,
) *Engine[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine[T]{
		contentType: contentType,
		store:       store,
		recorder:    cfg.Recorder,
		logger:      logger.With("content_type", string(contentType)),
		now:         time.Now,
	}
}

// Apply authorises and applies d to the item identified by id.
//
// A decision whose target equals the current status returns the item
// untouched. Items missing or in a state the action cannot leave yield an
// error matching core.ErrNotFound.
func (e *Engine[T]) Apply(ctx context.Context, id string, d Decision) (T, error) {
	var zero T

	ctx, span := core.StartSpan(ctx, "workflow.apply",
		attribute.String("content_type", string(e.contentType)),
		attribute.String("action", string(d.Action)),
		attribute.String("item_id", id),
	)

	item, outcome, err := e.apply(ctx, id, d)
	core.EndSpan(span, err)

	e.observe(d.Action, outcome)
	e.logger.InfoContext(ctx, "workflow decision",
		"item_id", id,
		"action", string(d.Action),
		"reviewer_id", d.ReviewerID,
		"outcome", outcome,
	)

	if err != nil {
		return zero, err
	}
	return item, nil
}

func (e *Engine[T]) apply(
	ctx context.Context,
	id string,
	d Decision,
) (T, string, error) {
	var zero T

	if d.Action == ActionApprove || d.Action == ActionReject {
		if err := rbac.Authorize(d.ReviewerRole, rbac.ReviewContent); err != nil {
			return zero, OutcomeForbidden, fmt.Errorf("%s %s: %w", d.Action, e.contentType, err)
		}
	}

	to, err := Target(d.Action)
	if err != nil {
		return zero, OutcomeError, err
	}

	reason := ""
	if d.Action == ActionReject {
		reason = d.Reason
	}

	item, err := e.store.Transition(ctx, id, Sources(d.Action), Change{
		To:         to,
		Reason:     reason,
		ReviewerID: d.ReviewerID,
		ReviewedAt: e.now().UTC(),
	})
	if err == nil {
		return item, OutcomeApplied, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return zero, OutcomeError, fmt.Errorf("%s %s: %w", d.Action, e.contentType, err)
	}

	current, err := e.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return zero, OutcomeNotFound, fmt.Errorf("%s %s: %w", d.Action, e.contentType, err)
		}
		return zero, OutcomeError, fmt.Errorf("%s %s: %w", d.Action, e.contentType, err)
	}

	if current.WorkflowStatus() == to {
		return current, OutcomeNoop, nil
	}

	return zero, OutcomeRejected, fmt.Errorf(
		"%s %s from %s: %w",
		d.Action,
		e.contentType,
		current.WorkflowStatus(),
		ErrNotTransitionable,
	)
}

func (e *Engine[T]) observe(action Action, outcome string) {
	if e.recorder == nil {
		return
	}
	e.recorder.ObserveTransition(string(e.contentType), string(action), outcome)
}
