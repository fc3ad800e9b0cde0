// Package controller drives the extract → confirm → publish pipeline shared
// by the line-mode and TUI bindings.
package controller

import (
	"context"
	"fmt"

	"textcal/internal/event"
	"textcal/internal/publish"
)

// State is the pipeline position. Idle is re-entrant: a new extraction may
// start after Done or after a cancellation from any state.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateAwaitingConfirmation
	StatePublishing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateAwaitingConfirmation:
		return "awaiting confirmation"
	case StatePublishing:
		return "publishing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StateError rejects an operation invoked from the wrong state, e.g. a
// second Submit while one is already in flight.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

// Extractor and Publisher are the controller's collaborators, satisfied by
// extract.Extractor and publish.Publisher.
type Extractor interface {
	Extract(ctx context.Context, text string) (event.Extracted, error)
}

type Publisher interface {
	Publish(ctx context.Context, obj *event.Object) (publish.Result, error)
}

// Controller owns the pipeline state and the single in-flight record.
// Constructed once at startup; one operation runs at a time, callers gate
// concurrency (busy-state gating in the TUI, blocking calls in line mode).
type Controller struct {
	extractor Extractor
	builder   *event.Builder
	publisher Publisher

	state     State
	extracted *event.Extracted
}

func New(x Extractor, b *event.Builder, p Publisher) *Controller {
	return &Controller{extractor: x, builder: b, publisher: p, state: StateIdle}
}

func (c *Controller) State() State { return c.state }

// Extracted returns the record held for confirmation, if any.
func (c *Controller) Extracted() (event.Extracted, bool) {
	if c.extracted == nil {
		return event.Extracted{}, false
	}
	return *c.extracted, true
}

// Submit runs extraction on the given text. Valid from Idle or Done. On
// failure the controller returns to Idle holding nothing; on success it
// holds the record and awaits confirmation.
func (c *Controller) Submit(ctx context.Context, text string) (event.Extracted, error) {
	if c.state != StateIdle && c.state != StateDone {
		return event.Extracted{}, &StateError{Op: "submit", State: c.state}
	}

	c.state = StateExtracting
	c.extracted = nil

	ev, err := c.extractor.Extract(ctx, text)
	if err != nil {
		c.state = StateIdle
		return event.Extracted{}, err
	}

	c.extracted = &ev
	c.state = StateAwaitingConfirmation
	return ev, nil
}

// Confirm builds and publishes the held record. Valid only while awaiting
// confirmation. On failure the record is retained and the controller returns
// to AwaitingConfirmation so the user can retry without re-extracting.
func (c *Controller) Confirm(ctx context.Context) (publish.Result, error) {
	if c.state != StateAwaitingConfirmation || c.extracted == nil {
		return publish.Result{}, &StateError{Op: "confirm", State: c.state}
	}

	c.state = StatePublishing

	obj, err := c.builder.Build(*c.extracted)
	if err != nil {
		c.state = StateAwaitingConfirmation
		return publish.Result{}, err
	}

	res, err := c.publisher.Publish(ctx, obj)
	if err != nil {
		c.state = StateAwaitingConfirmation
		return publish.Result{}, err
	}

	c.extracted = nil
	c.state = StateDone
	return res, nil
}

// Cancel drops the held record and returns to Idle. No network call is made.
func (c *Controller) Cancel() {
	c.extracted = nil
	c.state = StateIdle
}
