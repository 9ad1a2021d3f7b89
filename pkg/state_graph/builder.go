package state_graph

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jtomasevic/poet/pkg/formula"
	"github.com/jtomasevic/poet/pkg/trace"
)

// Verdict strings reported by FinalVerdict.
const (
	VerdictTrue         = "TRUE"
	VerdictFalse        = "FALSE"
	VerdictUndetermined = "UNDETERMINED"
)

// Builder owns the frontier graph. It applies every admitted event to the
// enabled frontiers, wires predecessor and successor edges, closes superseded
// events, and evaluates the formula on each new frontier.
type Builder struct {
	root      formula.Formula
	nodes     []formula.Formula
	num       int
	states    []*Frontier
	processes []*trace.Process
	seq       int
	reduce    bool
	log       *logrus.Entry
}

// NewBuilder creates the graph with its initial frontier: all slots iota, a
// synthetic all-false pre entry, and the formula already evaluated on it.
func NewBuilder(numProcesses int, root formula.Formula, reduce bool, log *logrus.Entry) *Builder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	b := &Builder{
		root:      root,
		nodes:     formula.Index(root),
		num:       numProcesses,
		reduce:    reduce,
		log:       log,
		processes: make([]*trace.Process, numProcesses),
	}
	for i := range b.processes {
		b.processes[i] = trace.NewProcess(trace.ProcessKey(i))
	}

	components := make([]Component, numProcesses)
	for i := range components {
		components[i] = modeComponent(trace.ModeIota)
	}
	s0 := b.newFrontier(components)
	s0.pre[rootPredecessor] = make(formula.Snapshot, len(b.nodes))
	s0.value = b.root.Eval(s0)
	b.states = append(b.states, s0)
	return b
}

func (b *Builder) newFrontier(components []Component) *Frontier {
	f := &Frontier{
		name:       fmt.Sprintf("S%d", b.seq),
		seq:        b.seq,
		components: components,
		now:        make(formula.Snapshot, len(b.nodes)),
		pre:        make(map[string]formula.Snapshot),
		successors: make(map[string]Transition),
		enabled:    true,
	}
	b.seq++
	return f
}

// closedPair records an event superseded on a slot during one round.
type closedPair struct {
	event *trace.Event
	slot  int
}

// compareResult is the outcome of applying an event to one frontier.
type compareResult struct {
	components []Component
	closed     []closedPair // occupants superseded by the new event
	flips      []int        // source slots to flip to closed mode
	ok         bool         // false when any slot resolved to an error
}

// compareToEvent applies an event to a component vector and returns the
// candidate successor vector. It never mutates its inputs; the caller applies
// the reported flips to the source frontier and closes the reported pairs.
func compareToEvent(components []Component, ev *trace.Event) compareResult {
	res := compareResult{
		components: make([]Component, len(components)),
		ok:         true,
	}
	for i, pc := range components {
		active := ev.Active[i]
		empty := pc.Event == nil && pc.Mode == trace.ModeIota
		closed := pc.IsClosed(i)
		switch {
		case empty && !active:
			res.components[i] = modeComponent(trace.ModeIota)
		case empty && active:
			res.components[i] = eventComponent(ev)
			res.flips = append(res.flips, i)
		case pc.Event != nil && !closed && !active:
			res.components[i] = pc
		case closed && !active:
			res.components[i] = modeComponent(trace.ModeUndefined)
		case pc.Event != nil && !closed && active && pc.Event.ID != ev.ID:
			res.components[i] = eventComponent(ev)
			res.closed = append(res.closed, closedPair{pc.Event, i})
		default:
			// same event again on an open slot, or an active closed slot
			res.components[i] = modeComponent(trace.ModeError)
			res.ok = false
		}
	}
	return res
}

// ProcessEvent runs the full per-event pipeline: apply the event to every
// enabled frontier (merging duplicate candidates), close superseded events,
// disable fully-closed frontiers, complete diagonal edges, evaluate the
// formula on the new frontiers, and optionally prune disabled ones.
// It returns the frontiers created for this event.
func (b *Builder) ProcessEvent(ev *trace.Event) ([]*Frontier, error) {
	if len(ev.Mode) != b.num {
		return nil, fmt.Errorf("event %q has %d slots, graph has %d", ev.Name, len(ev.Mode), b.num)
	}
	for _, i := range ev.ActiveSlots() {
		b.processes[i].Append(ev)
	}

	var created []*Frontier
	var closed []closedPair
	merged := map[string]*Frontier{}

	sources := b.states
	for _, src := range sources {
		if !src.enabled {
			continue
		}
		res := compareToEvent(src.components, ev)
		for _, slot := range res.flips {
			src.components[slot] = modeComponent(trace.ModeClosed)
		}
		if !res.ok {
			continue
		}
		closed = append(closed, res.closed...)

		sig := signature(res.components)
		if kept, ok := merged[sig]; ok {
			// same candidate reached from another frontier: merge, keep one
			kept.pre[src.name] = src.now
			src.successors[kept.name] = Transition{Event: ev, To: kept}
			b.log.WithFields(logrus.Fields{
				"state": kept.name,
				"from":  src.name,
			}).Debug("duplicate frontier merged")
			continue
		}

		nf := b.newFrontier(res.components)
		for name, snap := range src.pre {
			nf.pre[name] = snap
		}
		nf.pre[src.name] = src.now
		src.successors[nf.name] = Transition{Event: ev, To: nf}
		merged[sig] = nf
		created = append(created, nf)
		b.log.WithFields(logrus.Fields{
			"state": nf.String(),
			"from":  src.name,
			"event": ev.Name,
		}).Debug("frontier created")
	}

	for _, cp := range closed {
		cp.event.Mode[cp.slot] = trace.ModeClosed
	}

	all := make([]*Frontier, 0, len(b.states)+len(created))
	all = append(all, b.states...)
	all = append(all, created...)
	for _, st := range all {
		if st.enabled && st.allClosed() {
			st.enabled = false
			b.log.WithField("state", st.name).Debug("frontier disabled, all slots closed")
		}
	}

	b.completeEdges(all, created)

	for _, st := range created {
		st.closeUndefined()
	}

	for _, st := range created {
		if st.enabled {
			st.value = b.root.Eval(st)
		}
	}

	b.states = append(b.states, created...)
	if b.reduce {
		b.dropDisabled()
	}
	return created, nil
}

// completeEdges wires the diagonal edges duplicate merging alone cannot see:
// for every (existing, new) frontier pair exactly one event apart, add the
// edge and the pre entry.
func (b *Builder) completeEdges(all, created []*Frontier) {
	for _, from := range all {
		for _, to := range created {
			if from == to {
				continue
			}
			if _, wired := from.successors[to.name]; wired {
				continue
			}
			ev, ok := b.immediateReplacement(from, to)
			if !ok {
				continue
			}
			from.successors[to.name] = Transition{Event: ev, To: to}
			to.pre[from.name] = from.now
			b.log.WithFields(logrus.Fields{
				"from":  from.name,
				"to":    to.name,
				"event": ev.Name,
			}).Debug("edge completed")
		}
	}
}

// immediateReplacement decides whether frontier to sits exactly one event
// ahead of frontier from: every differing slot must advance by one position
// in that process's history, and all differing slots must advance via the
// same event. Modes order before every event in a history.
func (b *Builder) immediateReplacement(from, to *Frontier) (*trace.Event, bool) {
	var replacement *trace.Event
	changed := false
	for i := range from.components {
		cf, ct := from.components[i], to.components[i]
		if cf.equal(ct) {
			continue
		}
		if cf.Event == nil && ct.Event == nil {
			// mode drift on an inactive slot, not a displacement
			continue
		}
		proc := b.processes[i]
		dist := proc.IndexOf(ct.Event) - proc.IndexOf(cf.Event)
		if dist != 1 || ct.Event == nil {
			return nil, false
		}
		if replacement != nil && replacement.ID != ct.Event.ID {
			return nil, false
		}
		replacement = ct.Event
		changed = true
	}
	if !changed || replacement == nil {
		return nil, false
	}
	return replacement, true
}

func (b *Builder) dropDisabled() {
	kept := b.states[:0]
	removed := 0
	for _, st := range b.states {
		if st.enabled {
			kept = append(kept, st)
		} else {
			removed++
		}
	}
	b.states = kept
	if removed > 0 {
		b.log.WithField("removed", removed).Debug("disabled frontiers pruned")
	}
}

// States returns every live frontier, in creation order.
func (b *Builder) States() []*Frontier { return b.states }

// EnabledStates returns the frontiers still accepting events.
func (b *Builder) EnabledStates() []*Frontier {
	var out []*Frontier
	for _, st := range b.states {
		if st.enabled {
			out = append(out, st)
		}
	}
	return out
}

// MaximalStates returns the enabled frontiers with no enabled successor,
// the candidates the final verdict is read from.
func (b *Builder) MaximalStates() []*Frontier {
	var out []*Frontier
	for _, st := range b.states {
		if st.enabled && !st.hasEnabledSuccessor() {
			out = append(out, st)
		}
	}
	return out
}

// FindByComponents returns the most recent frontier whose component vector
// matches target slot for slot, or nil.
func (b *Builder) FindByComponents(target []Component) *Frontier {
	for i := len(b.states) - 1; i >= 0; i-- {
		st := b.states[i]
		if len(st.components) != len(target) {
			continue
		}
		match := true
		for j := range target {
			if !st.components[j].equal(target[j]) {
				match = false
				break
			}
		}
		if match {
			return st
		}
	}
	return nil
}

// History returns the event history of process slot i.
func (b *Builder) History(i int) *trace.Process {
	return b.processes[i]
}

// FinalVerdict reads the verdict off the latest maximal frontier. When no
// frontier is maximal it falls back to the latest enabled one, then to the
// latest overall; with no frontiers at all the run is undetermined.
func (b *Builder) FinalVerdict() string {
	pick := func(candidates []*Frontier) *Frontier {
		var best *Frontier
		for _, st := range candidates {
			if best == nil || st.seq > best.seq {
				best = st
			}
		}
		return best
	}
	best := pick(b.MaximalStates())
	if best == nil {
		best = pick(b.EnabledStates())
	}
	if best == nil {
		best = pick(b.states)
	}
	if best == nil {
		return VerdictUndetermined
	}
	if best.value {
		return VerdictTrue
	}
	return VerdictFalse
}
