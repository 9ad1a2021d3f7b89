package monitor

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jtomasevic/poet/pkg/state_graph"
	"github.com/jtomasevic/poet/pkg/trace"
	"github.com/jtomasevic/poet/pkg/vector_clock"
)

// maxStateTracker reconstructs, after every admitted event, the frontier
// implied by the current expected vector clock and records which live
// frontier realizes it. Used by the max_state output level.
type maxStateTracker struct {
	doc       *trace.Doc
	builder   *state_graph.Builder
	admission *vector_clock.Admission
	log       *logrus.Entry
	history   []string
}

func newMaxStateTracker(doc *trace.Doc, builder *state_graph.Builder, admission *vector_clock.Admission, log *logrus.Entry) *maxStateTracker {
	return &maxStateTracker{
		doc:       doc,
		builder:   builder,
		admission: admission,
		log:       log,
	}
}

// track runs after ev was admitted and applied. The expected clock names,
// per slot, how many events that process has seen; the event at that
// position in the process history is the slot's occupant.
func (t *maxStateTracker) track(ev *trace.Event) {
	expected := t.admission.Expected()
	target := make([]state_graph.Component, len(expected))
	for i, count := range expected {
		if count == 0 {
			target[i] = state_graph.Component{Mode: trace.ModeIota}
			continue
		}
		hist := t.builder.History(i)
		if count > len(hist.Events) {
			t.record(ev, expected, "no frontier matches the expected clock yet")
			return
		}
		target[i] = state_graph.Component{Event: hist.Events[count-1]}
	}

	frontier := t.builder.FindByComponents(target)
	if frontier == nil {
		t.record(ev, expected, "frontier not found in the live graph")
		return
	}
	t.record(ev, expected, fmt.Sprintf("frontier=%s, verdict=%t", frontier.Name(), frontier.Value()))
}

func (t *maxStateTracker) record(ev *trace.Event, expected []int, outcome string) {
	parts := make([]string, len(expected))
	for i, v := range expected {
		parts[i] = fmt.Sprintf("%s:%d", t.doc.Alias(i), v)
	}
	line := fmt.Sprintf("%s@[%s] %s", ev.Name, strings.Join(parts, ", "), outcome)
	t.history = append(t.history, line)
	t.log.Info(line)
}

func (t *maxStateTracker) report() {
	t.log.WithField("tracked", len(t.history)).Info("max-state tracking summary")
	for _, line := range t.history {
		t.log.Info(line)
	}
}
