package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// Process is the append-only event history of one system process. The builder
// keeps one per slot; histories grow in admission order, which for a single
// process is its local order.
type Process struct {
	Name   string
	Events []*Event
}

func NewProcess(name string) *Process {
	return &Process{Name: name}
}

func (p *Process) Append(e *Event) {
	p.Events = append(p.Events, e)
}

// IndexOf returns the position of ev in this history, or -1 when ev is nil.
// A nil event stands for a mode-occupied slot, which orders before every
// real event.
func (p *Process) IndexOf(ev *Event) int {
	if ev == nil {
		return -1
	}
	for i, e := range p.Events {
		if e.ID == ev.ID {
			return i
		}
	}
	return -1
}

// ProcessKey is the canonical slot name for process index i (zero-based):
// "P1" for slot 0 and so on. Trace files and formulas both use this form.
func ProcessKey(i int) string {
	return fmt.Sprintf("P%d", i+1)
}

// DistributeProcesses turns a record's process list ("P1", "P3", ...) into an
// active-slot mask of length n.
func DistributeProcesses(names []string, n int) ([]bool, error) {
	active := make([]bool, n)
	for _, name := range names {
		num, ok := strings.CutPrefix(name, "P")
		if !ok {
			return nil, fmt.Errorf("bad process reference %q: want P<number>", name)
		}
		idx, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("bad process reference %q: %w", name, err)
		}
		if idx < 1 || idx > n {
			return nil, fmt.Errorf("process reference %q out of range 1..%d", name, n)
		}
		active[idx-1] = true
	}
	return active, nil
}
