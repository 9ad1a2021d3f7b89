// Package state_graph builds the lattice of consistent global states
// (frontiers) of a partial-order execution, and evaluates a PCTL formula
// incrementally on every frontier it creates.
package state_graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jtomasevic/poet/pkg/formula"
	"github.com/jtomasevic/poet/pkg/trace"
)

// rootPredecessor is the synthetic predecessor entry carried by the initial
// frontier and inherited by every descendant. Its snapshot is all-false and
// it is excluded from Predecessors(): for the temporal operators the initial
// frontier has no past.
const rootPredecessor = "_"

// Component is one slot of a frontier's component vector: either a reference
// to the event currently occupying that process, or a bare mode.
type Component struct {
	Event *trace.Event
	Mode  trace.ProcessMode
}

func eventComponent(e *trace.Event) Component {
	return Component{Event: e}
}

func modeComponent(m trace.ProcessMode) Component {
	return Component{Mode: m}
}

// IsClosed reports whether the slot counts as closed: an event superseded on
// this slot, or the literal closed mode. Iota and undefined do not count.
func (c Component) IsClosed(slot int) bool {
	if c.Event != nil {
		return c.Event.ClosedOn(slot)
	}
	return c.Mode == trace.ModeClosed
}

func (c Component) String() string {
	if c.Event != nil {
		return c.Event.Name
	}
	return c.Mode.String()
}

func (c Component) equal(other Component) bool {
	if (c.Event == nil) != (other.Event == nil) {
		return false
	}
	if c.Event != nil {
		return c.Event.ID == other.Event.ID
	}
	return c.Mode == other.Mode
}

// signature is the dedup key for a component vector: event IDs and modes are
// disjoint name spaces, so two vectors share a signature iff equal slot-wise.
func signature(components []Component) string {
	var b strings.Builder
	for i, c := range components {
		if i > 0 {
			b.WriteByte(',')
		}
		if c.Event != nil {
			b.WriteByte('e')
			b.WriteString(c.Event.Name)
			b.WriteByte('#')
			b.WriteString(strconv.Itoa(int(c.Event.ID)))
		} else {
			b.WriteByte('m')
			b.WriteString(c.Mode.String())
		}
	}
	return b.String()
}

// Transition is one outgoing edge of a frontier.
type Transition struct {
	Event *trace.Event
	To    *Frontier
}

// Frontier is a consistent global state: one component per process, plus the
// evaluation caches the PCTL evaluator reads and writes.
//
// The pre map holds predecessor name -> that predecessor's now slice. Entries
// share the predecessor's backing array, so a predecessor evaluated after the
// edge was wired is still visible through the map.
type Frontier struct {
	name       string
	seq        int
	components []Component
	now        formula.Snapshot
	pre        map[string]formula.Snapshot
	successors map[string]Transition
	enabled    bool
	value      bool
}

func (f *Frontier) Name() string { return f.name }
func (f *Frontier) Seq() int     { return f.seq }

// Components returns the frontier's component vector. Callers must not
// modify it.
func (f *Frontier) Components() []Component { return f.components }

// Value is the root formula's verdict on this frontier. Meaningful only for
// frontiers that were enabled when created.
func (f *Frontier) Value() bool { return f.value }

func (f *Frontier) Enabled() bool { return f.enabled }

// Successors returns the outgoing edges keyed by target frontier name.
// Callers must not modify the map.
func (f *Frontier) Successors() map[string]Transition { return f.successors }

// Propositions returns the sorted union of the propositions of the events
// occupying the frontier's slots.
func (f *Frontier) Propositions() []string {
	seen := map[string]struct{}{}
	for _, c := range f.components {
		if c.Event == nil {
			continue
		}
		for _, p := range c.Event.Propositions {
			seen[p] = struct{}{}
		}
	}
	props := make([]string, 0, len(seen))
	for p := range seen {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}

// PredecessorNames returns the sorted names of the frontier's pre entries,
// the synthetic root entry included.
func (f *Frontier) PredecessorNames() []string {
	names := make([]string, 0, len(f.pre))
	for name := range f.pre {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PreSnapshot exposes one pre entry, for inspection.
func (f *Frontier) PreSnapshot(name string) (formula.Snapshot, bool) {
	snap, ok := f.pre[name]
	return snap, ok
}

// NowValue returns the cached evaluation of one formula node.
func (f *Frontier) NowValue(id formula.ID) bool { return f.now[id] }

// HasProposition implements formula.State.
func (f *Frontier) HasProposition(name string) bool {
	for _, c := range f.components {
		if c.Event != nil && c.Event.HasProposition(name) {
			return true
		}
	}
	return false
}

// Predecessors implements formula.State. The synthetic root entry is
// skipped: only real predecessors take part in temporal quantification.
func (f *Frontier) Predecessors() []formula.Snapshot {
	snaps := make([]formula.Snapshot, 0, len(f.pre))
	for name, snap := range f.pre {
		if name == rootPredecessor {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// SetNow implements formula.State.
func (f *Frontier) SetNow(id formula.ID, value bool) {
	f.now[id] = value
}

// allClosed reports whether every slot is closed, which retires the frontier.
func (f *Frontier) allClosed() bool {
	for i, c := range f.components {
		if !c.IsClosed(i) {
			return false
		}
	}
	return true
}

// closeUndefined settles slots that were left undefined during construction.
func (f *Frontier) closeUndefined() {
	for i, c := range f.components {
		if c.Event == nil && c.Mode == trace.ModeUndefined {
			f.components[i] = modeComponent(trace.ModeClosed)
		}
	}
}

func (f *Frontier) hasEnabledSuccessor() bool {
	for _, t := range f.successors {
		if t.To.enabled {
			return true
		}
	}
	return false
}

func (f *Frontier) String() string {
	parts := make([]string, len(f.components))
	for i, c := range f.components {
		parts[i] = c.String()
	}
	return f.name + "=[" + strings.Join(parts, ",") + "]"
}
