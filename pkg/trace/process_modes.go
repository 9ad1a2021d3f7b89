package trace

import "fmt"

// ProcessMode describes the occupancy of one process slot, either inside an
// event's per-slot mode array or inside a frontier's component vector.
type ProcessMode int

const (
	// ModeOpen is the raw "-" marker produced by trace parsing. It never
	// survives ingestion: open slots become ModeIota.
	ModeOpen ProcessMode = iota
	// ModeIota marks a slot that has seen no event yet.
	ModeIota
	// ModeClosed marks a slot whose occupant has been superseded by a later
	// event on the same slot.
	ModeClosed
	// ModeUndefined appears mid-computation when a closed slot has no
	// replacement yet. Edge completion converts it to ModeClosed before a
	// frontier is published.
	ModeUndefined
	// ModeError marks a same-slot conflict. Its presence anywhere in a
	// candidate component vector invalidates the whole frontier.
	ModeError
)

func (m ProcessMode) String() string {
	switch m {
	case ModeOpen:
		return "-"
	case ModeIota:
		return "i"
	case ModeClosed:
		return "+"
	case ModeUndefined:
		return "?"
	case ModeError:
		return "*"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}
