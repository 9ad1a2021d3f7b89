// Package vector_clock gates trace events on causal order: an event is
// delivered only when every process it involves has seen all of the event's
// causal dependencies.
package vector_clock

import (
	"github.com/sirupsen/logrus"

	"github.com/jtomasevic/poet/pkg/trace"
)

// Admission tracks the expected vector clock of delivered progress and holds
// back events whose dependencies are not satisfied yet.
type Admission struct {
	expected []int
	holding  []*trace.Event
	log      *logrus.Entry
}

func NewAdmission(numProcesses int, log *logrus.Entry) *Admission {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Admission{
		expected: make([]int, numProcesses),
		log:      log,
	}
}

// IsDeliverable reports whether the event can be admitted now. Only the
// slots the event involves are checked: each must be exactly one ahead of
// the expected clock. Non-involved slots are ignored, whatever their value.
func (a *Admission) IsDeliverable(ev *trace.Event) bool {
	for _, i := range ev.ActiveSlots() {
		if i >= len(ev.VectorClock) {
			return false
		}
		if ev.VectorClock[i] != a.expected[i]+1 {
			return false
		}
	}
	return true
}

// Admit advances the expected clock with the event's involved slots. Call
// only after IsDeliverable reported true.
func (a *Admission) Admit(ev *trace.Event) {
	for _, i := range ev.ActiveSlots() {
		a.expected[i] = ev.VectorClock[i]
	}
	a.log.WithFields(logrus.Fields{
		"event":    ev.Name,
		"expected": a.expected,
	}).Debug("event admitted")
}

// Enqueue parks an out-of-order event until its dependencies arrive.
func (a *Admission) Enqueue(ev *trace.Event) {
	a.holding = append(a.holding, ev)
	a.log.WithField("event", ev.Name).Debug("event held, out of causal order")
}

// DrainReady removes and returns every held event that became deliverable,
// in arrival order. One pass only; admitting the returned events may unlock
// more, so callers loop until the drain comes back empty.
func (a *Admission) DrainReady() []*trace.Event {
	var ready, still []*trace.Event
	for _, ev := range a.holding {
		if a.IsDeliverable(ev) {
			ready = append(ready, ev)
		} else {
			still = append(still, ev)
		}
	}
	a.holding = still
	return ready
}

// Pending returns how many events are still held.
func (a *Admission) Pending() int {
	return len(a.holding)
}

// PendingNames lists the held events' names, in arrival order.
func (a *Admission) PendingNames() []string {
	names := make([]string, len(a.holding))
	for i, ev := range a.holding {
		names[i] = ev.Name
	}
	return names
}

// Expected returns a copy of the current expected vector clock.
func (a *Admission) Expected() []int {
	out := make([]int, len(a.expected))
	copy(out, a.expected)
	return out
}
