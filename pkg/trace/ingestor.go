package trace

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ingestor turns raw trace records into events. It owns the run's timeline
// counter, so event IDs are unique per Ingestor rather than process-wide.
type Ingestor struct {
	numProcesses int
	timeline     int
	log          *logrus.Entry
}

func NewIngestor(numProcesses int, log *logrus.Entry) *Ingestor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Ingestor{numProcesses: numProcesses, log: log}
}

// Ingest validates a record and builds the event for it. The returned event
// has all slots in ModeIota; the state graph flips modes later.
func (in *Ingestor) Ingest(rec Record) (*Event, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	active, err := DistributeProcesses(rec.Processes, in.numProcesses)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", rec.Name, err)
	}

	vc, fixed := repairVectorClock(rec.VectorClock, in.numProcesses)
	if fixed && rec.HasClock {
		in.log.WithFields(logrus.Fields{
			"event": rec.Name,
			"got":   len(rec.VectorClock),
			"want":  in.numProcesses,
		}).Warnf("vector clock resized to %s", formatClock(vc))
	}

	mode := make([]ProcessMode, in.numProcesses)
	for i := range mode {
		mode[i] = ModeIota
	}

	ev := &Event{
		ID:           EventID(in.timeline),
		Name:         rec.Name,
		Active:       active,
		Propositions: rec.Propositions,
		VectorClock:  vc,
		Mode:         mode,
		Timeline:     in.timeline,
	}
	in.timeline++
	return ev, nil
}

// Timeline returns the number of events ingested so far.
func (in *Ingestor) Timeline() int {
	return in.timeline
}
