package trace

import (
	"fmt"
	"strings"
)

// EventID identifies an event within one monitoring run. IDs are the event's
// timeline number, assigned sequentially by the Ingestor. Same-event checks in
// the state graph compare IDs, never pointers.
type EventID int

// Event is one occurrence from the monitored trace.
//
// Everything is fixed at ingestion except Mode: the state-graph builder flips
// Mode[i] to ModeClosed when a later event on slot i supersedes this one.
type Event struct {
	ID           EventID
	Name         string
	Active       []bool // Active[i] is true when the event involves process i+1
	Propositions []string
	VectorClock  []int
	Mode         []ProcessMode
	Timeline     int
}

// ActiveSlots returns the indices of the processes this event involves.
func (e *Event) ActiveSlots() []int {
	var slots []int
	for i, on := range e.Active {
		if on {
			slots = append(slots, i)
		}
	}
	return slots
}

// HasProposition reports whether the event carries the named proposition.
func (e *Event) HasProposition(name string) bool {
	for _, p := range e.Propositions {
		if p == name {
			return true
		}
	}
	return false
}

// ClosedOn reports whether this event has been superseded on the given slot.
func (e *Event) ClosedOn(slot int) bool {
	return e.Mode[slot] == ModeClosed
}

func (e *Event) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteByte('[')
	for i, m := range e.Mode {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m.String())
	}
	b.WriteByte(']')
	return b.String()
}

// repairVectorClock pads or truncates a raw vector clock to n entries.
// Returns the fixed clock and whether it had to change anything.
func repairVectorClock(raw []int, n int) ([]int, bool) {
	if len(raw) == n {
		return raw, false
	}
	fixed := make([]int, n)
	copy(fixed, raw)
	return fixed, true
}

func formatClock(vc []int) string {
	parts := make([]string, len(vc))
	for i, v := range vc {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
