// AngelaMos | 2026
// status.go

// Package workflow implements the publication state machine shared by
// offices and blog posts.
package workflow

import (
	"fmt"

	"github.com/carterperez-dev/airline-directory/internal/core"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionArchive Action = "archive"
)

type ContentType string

const (
	ContentOffice ContentType = "office"
	ContentBlog   ContentType = "blog"
)

// ErrNotTransitionable is returned when the item exists but sits in a state
// from which the requested action is not permitted. It matches
// core.ErrNotFound so callers render it as a 404.
var ErrNotTransitionable = fmt.Errorf(
	"no item in a transitionable state: %w",
	core.ErrNotFound,
)

type edge struct {
	from []Status
	to   Status
}

var transitions = map[Action]edge{
	ActionApprove: {
		from: []Status{StatusPending, StatusDraft},
		to:   StatusPublished,
	},
	ActionReject: {
		from: []Status{StatusPending, StatusDraft, StatusPublished},
		to:   StatusArchived,
	},
	ActionArchive: {
		from: []Status{StatusPending, StatusDraft, StatusPublished},
		to:   StatusArchived,
	},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusDraft, StatusPublished, StatusArchived:
		return st, nil
	default:
		return "", fmt.Errorf("parse status %q: %w", s, core.ErrInvalidInput)
	}
}

func (s Status) Visible() bool {
	return s == StatusPublished
}

// Editable reports whether the item is still awaiting a decision.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusDraft
}

func (s Status) Terminal() bool {
	return s == StatusArchived
}

// Target is the state an action leads to.
func Target(a Action) (Status, error) {
	e, ok := transitions[a]
	if !ok {
		return "", fmt.Errorf("unknown action %q: %w", a, core.ErrInvalidInput)
	}
	return e.to, nil
}

// Sources lists the states from which a is permitted.
func Sources(a Action) []Status {
	e, ok := transitions[a]
	if !ok {
		return nil
	}
	out := make([]Status, len(e.from))
	copy(out, e.from)
	return out
}

// Next resolves the state reached by applying a to from. Applying an action
// whose target equals from is a no-op and returns from unchanged.
func Next(from Status, a Action) (Status, error) {
	e, ok := transitions[a]
	if !ok {
		return "", fmt.Errorf("unknown action %q: %w", a, core.ErrInvalidInput)
	}

	if from == e.to {
		return from, nil
	}

	for _, s := range e.from {
		if s == from {
			return e.to, nil
		}
	}

	return "", fmt.Errorf("%s from %s: %w", a, from, ErrNotTransitionable)
}

// ActionFor maps a requested target status onto the decision that reaches it.
func ActionFor(target Status) (Action, error) {
	switch target {
	case StatusPublished:
		return ActionApprove, nil
	case StatusArchived:
		return ActionReject, nil
	default:
		return "", fmt.Errorf(
			"status %q cannot be set directly: %w",
			target,
			core.ErrInvalidInput,
		)
	}
}

func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
