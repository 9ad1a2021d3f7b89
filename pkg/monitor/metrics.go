package monitor

import (
	"time"

	"github.com/sirupsen/logrus"
)

// eventMetrics collects per-event processing durations for the experiment
// output level.
type eventMetrics struct {
	durations []time.Duration
}

func (m *eventMetrics) add(d time.Duration) {
	m.durations = append(m.durations, d)
}

func (m *eventMetrics) report(log *logrus.Entry, states int) {
	if len(m.durations) == 0 {
		return
	}
	min, max := m.durations[0], m.durations[0]
	var total time.Duration
	for _, d := range m.durations {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		total += d
	}
	avg := total / time.Duration(len(m.durations))
	log.WithFields(logrus.Fields{
		"events": len(m.durations),
		"states": states,
		"min":    min,
		"max":    max,
		"avg":    avg,
		"total":  total,
	}).Warn("per-event processing metrics")
}
