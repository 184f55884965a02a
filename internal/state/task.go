package state

import (
	"context"
	"errors"
)

// Status is the single fetch state shared by the view models.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Ticket identifies one fetch attempt. Only the most recent ticket may
// commit results.
type Ticket uint64

// ErrDiscarded is returned by Run when a newer attempt, Leave or Close made the
// result irrelevant.
var ErrDiscarded = errors.New("fetch result discarded")

// Favorites is the part of the favorites store the view models need.
type Favorites interface {
	Toggle(ctx context.Context, id int64) bool
	IsFavorite(id int64) bool
}

// tracker bookkeeps fetch attempts. Callers hold the owning model's lock.
type tracker struct {
	current  Ticket
	cancel   context.CancelFunc
	inFlight bool
	closed   bool
}

func (t *tracker) begin() Ticket {
	t.stop()
	t.current++
	t.inFlight = true
	return t.current
}

// attach binds cancel to tk. It fails when tk is stale.
func (t *tracker) attach(tk Ticket, cancel context.CancelFunc) bool {
	if t.closed || tk != t.current {
		return false
	}
	t.cancel = cancel
	return true
}

// finish reports whether tk may commit, and clears the in-flight marker if so.
func (t *tracker) finish(tk Ticket) bool {
	if t.closed || tk != t.current {
		return false
	}
	t.inFlight = false
	t.cancel = nil
	return true
}

func (t *tracker) stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// invalidate cancels the attempt in flight and makes its ticket stale.
func (t *tracker) invalidate() {
	t.stop()
	t.current++
	t.inFlight = false
}

func (t *tracker) close() {
	t.closed = true
	t.inFlight = false
	t.stop()
}
