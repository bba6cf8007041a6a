// Package ledger tracks automated remediation attempts against
// bare-metal nodes. The attempt history lives in the node's own
// extensible metadata, so the ledger survives process restarts without
// any local storage, and refuses further action once a configured
// ceiling is reached.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ExtraKey is the node metadata field holding the attempt timestamps.
const ExtraKey = "hammer_resets_ipmi"

// DefaultCeiling is the maximum number of automated resets before a
// node is marked exhausted.
const DefaultCeiling = 3

// ErrExhausted signals that the retry ceiling has been reached and no
// further remediation is attempted. Callers must treat this distinctly
// from "nothing to do".
var ErrExhausted = errors.New("retry ceiling reached")

// State describes where a node sits in the remediation lifecycle.
type State int

const (
	// StateHealthy means no attempt record exists.
	StateHealthy State = iota
	// StateRetrying means at least one reset has been performed and
	// the ceiling has not been reached.
	StateRetrying
	// StateExhausted means the ceiling has been reached.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateRetrying:
		return "retrying"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Record is the per-node attempt history: one timestamp per reset
// performed, oldest first.
type Record struct {
	Attempts []time.Time `json:"hammer_resets_ipmi"`
}

// Count returns the number of resets already performed.
func (r Record) Count() int {
	return len(r.Attempts)
}

// LastAttempt returns the most recent reset timestamp, or the zero time
// if none exist.
func (r Record) LastAttempt() time.Time {
	if len(r.Attempts) == 0 {
		return time.Time{}
	}
	return r.Attempts[len(r.Attempts)-1]
}

// State classifies the record against a retry ceiling.
func (r Record) State(ceiling int) State {
	switch {
	case r.Count() == 0:
		return StateHealthy
	case r.Count() >= ceiling:
		return StateExhausted
	default:
		return StateRetrying
	}
}

// Store is the persistence port for attempt records. The production
// implementation keeps the record inside the Ironic node's extra field;
// tests substitute an in-memory map. Read on a node with no record
// returns an empty Record, not an error.
type Store interface {
	Read(ctx context.Context, nodeID string) (Record, error)
	Mark(ctx context.Context, nodeID string, at time.Time) error
	Clear(ctx context.Context, nodeID string) error
}

// Resetter drives the remediation state machine for one class of
// failure. Action performs the actual reset; it is never invoked once
// the ceiling is reached, and never in dry-run mode.
type Resetter struct {
	Store   Store
	Ceiling int
	Action  func(ctx context.Context, nodeID string) error
	DryRun  bool
}

// Reset performs one remediation attempt against a failing node.
//
// It returns the attempt number just performed (1-based). If the node
// has already consumed its ceiling, it returns ErrExhausted without
// touching the node. In dry-run mode the decision logic runs but
// neither the action nor the ledger write happens.
func (r *Resetter) Reset(ctx context.Context, nodeID string, now time.Time) (int, error) {
	ceiling := r.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	rec, err := r.Store.Read(ctx, nodeID)
	if err != nil {
		return 0, err
	}

	if rec.Count() >= ceiling {
		return rec.Count(), ErrExhausted
	}

	if r.DryRun {
		return rec.Count() + 1, nil
	}

	if err := r.Action(ctx, nodeID); err != nil {
		return rec.Count(), err
	}

	if err := r.Store.Mark(ctx, nodeID, now); err != nil {
		return rec.Count() + 1, err
	}

	return rec.Count() + 1, nil
}

// Recover clears the attempt record for a node whose error condition is
// no longer observed, returning it to the healthy state.
func (r *Resetter) Recover(ctx context.Context, nodeID string) error {
	if r.DryRun {
		return nil
	}
	return r.Store.Clear(ctx, nodeID)
}
