// Package progress tracks the per-service steps of a long-running agent
// query for display purposes.
package progress

import "github.com/minseo-dev/worklight/internal/models"

// Status is the state of a single step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// rank orders statuses for the monotonicity check. Completed and error are
// both terminal.
func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusActive:
		return 1
	case StatusCompleted, StatusError:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether a status is an end state for its step.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Step is one tracked data-gathering call.
type Step struct {
	ServiceID string
	Order     int // 1-based, display only; completion order is unconstrained
	Label     string
	Color     string
	Status    Status
}

// Tracker follows a fixed ordered list of steps for one agent run. It never
// invents steps: updates for unknown services are dropped.
type Tracker struct {
	steps []Step
	index map[string]int
}

// NewTracker builds a tracker from the configured step list of an agent
// type. All steps start pending.
func NewTracker(specs []StepSpec) *Tracker {
	t := &Tracker{index: make(map[string]int, len(specs))}
	for _, spec := range specs {
		if _, dup := t.index[spec.ServiceID]; dup {
			continue
		}
		t.index[spec.ServiceID] = len(t.steps)
		t.steps = append(t.steps, Step{
			ServiceID: spec.ServiceID,
			Order:     len(t.steps) + 1,
			Label:     spec.Label,
			Color:     spec.Color,
			Status:    StatusPending,
		})
	}
	return t
}

// Advance transitions the named step. It is a no-op (returning false) when
// the service is unknown, the transition would move a step backward, or a
// second step tries to go active while one already is. The first update
// wins; steps only ever move forward.
func (t *Tracker) Advance(serviceID string, status Status) bool {
	i, ok := t.index[serviceID]
	if !ok {
		return false
	}
	if rank(status) < 0 || rank(status) < rank(t.steps[i].Status) {
		return false
	}
	if status == t.steps[i].Status {
		return false
	}
	if status == StatusActive && t.activeIndex() >= 0 {
		return false
	}
	t.steps[i].Status = status
	return true
}

// Apply folds a batch of backend step updates into the tracker, typically
// one poll response. Unknown services and backward moves are skipped.
func (t *Tracker) Apply(updates []models.StepUpdate) {
	for _, u := range updates {
		t.Advance(u.ServiceID, Status(u.Status))
	}
}

// Fraction returns the displayed progress: terminal steps over total steps.
// It is monotonically non-decreasing within a run and reaches exactly 1.0
// when and only when every step has finished.
func (t *Tracker) Fraction() float64 {
	if len(t.steps) == 0 {
		return 1.0
	}
	done := 0
	for _, s := range t.steps {
		if s.Status.Terminal() {
			done++
		}
	}
	return float64(done) / float64(len(t.steps))
}

// Done reports whether every step reached a terminal state. A step ending
// in error still counts: the run completes degraded, not blocked.
func (t *Tracker) Done() bool {
	for _, s := range t.steps {
		if !s.Status.Terminal() {
			return false
		}
	}
	return true
}

// Degraded reports whether any step ended in error.
func (t *Tracker) Degraded() bool {
	for _, s := range t.steps {
		if s.Status == StatusError {
			return true
		}
	}
	return false
}

// Steps returns a copy of the tracked steps in display order.
func (t *Tracker) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of configured steps.
func (t *Tracker) Len() int {
	return len(t.steps)
}

func (t *Tracker) activeIndex() int {
	for i, s := range t.steps {
		if s.Status == StatusActive {
			return i
		}
	}
	return -1
}
