// Package monitor orchestrates a monitoring run: load the property and the
// trace, push every event through admission and the state graph, and report
// the final verdict.
package monitor

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jtomasevic/poet/pkg/formula"
	"github.com/jtomasevic/poet/pkg/render"
	"github.com/jtomasevic/poet/pkg/state_graph"
	"github.com/jtomasevic/poet/pkg/trace"
	"github.com/jtomasevic/poet/pkg/vector_clock"
)

// Phase tracks where in its lifecycle the monitor is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhaseProcessing
	PhaseReporting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSetup:
		return "setup"
	case PhaseProcessing:
		return "processing"
	case PhaseReporting:
		return "reporting"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// maxFlushPasses bounds the holding-queue drain loop. A trace that does not
// converge in this many passes has a dependency cycle or a hole.
const maxFlushPasses = 1000

// Monitor runs one property over one trace.
type Monitor struct {
	cfg   Config
	runID uuid.UUID
	log   *logrus.Entry
	phase Phase

	root      formula.Formula
	doc       *trace.Doc
	ingestor  *trace.Ingestor
	admission *vector_clock.Admission
	builder   *state_graph.Builder
	tracker   *maxStateTracker
	metrics   *eventMetrics

	// Verdict is set during reporting: TRUE, FALSE or UNDETERMINED.
	Verdict string
}

// New validates the config and prepares the logger. Loading and processing
// happen in Run.
func New(cfg Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.logLevel())
	runID := uuid.New()
	return &Monitor{
		cfg:   cfg,
		runID: runID,
		log:   logger.WithField("run_id", runID),
		phase: PhaseIdle,
	}, nil
}

// Phase returns the monitor's current lifecycle phase.
func (m *Monitor) Phase() Phase { return m.phase }

// Run executes the whole pipeline. A returned error means setup failed;
// trace-level problems (bad records, stuck events) are logged and absorbed
// into the verdict instead.
func (m *Monitor) Run() error {
	if err := m.setup(); err != nil {
		return err
	}
	m.processTrace()
	m.report()
	return nil
}

func (m *Monitor) setup() error {
	m.phase = PhaseSetup

	property, err := trace.ReadProperty(m.cfg.PropertyFile)
	if err != nil {
		return err
	}
	root, _, err := formula.Parse(property)
	if err != nil {
		return err
	}
	m.root = root

	doc, err := trace.ReadTrace(m.cfg.TraceFile)
	if err != nil {
		return err
	}
	m.doc = doc

	m.ingestor = trace.NewIngestor(doc.Processes, m.log)
	m.admission = vector_clock.NewAdmission(doc.Processes, m.log)
	m.builder = state_graph.NewBuilder(doc.Processes, root, m.cfg.Reduce, m.log)
	if m.cfg.OutputLevel == OutputMaxState {
		m.tracker = newMaxStateTracker(doc, m.builder, m.admission, m.log)
	}
	if m.cfg.OutputLevel == OutputExperiment {
		m.metrics = &eventMetrics{}
	}

	m.log.WithFields(logrus.Fields{
		"property":  root.Key(),
		"processes": doc.Processes,
		"events":    len(doc.Events),
	}).Info("monitoring run ready")
	return nil
}

func (m *Monitor) processTrace() {
	m.phase = PhaseProcessing
	for _, rec := range m.doc.Events {
		started := time.Now()
		ev, err := m.ingestor.Ingest(rec)
		if err != nil {
			m.log.WithError(err).Warn("event record skipped")
			continue
		}
		m.processEvent(ev)
		m.flushHolding()
		if m.metrics != nil {
			m.metrics.add(time.Since(started))
		}
	}
	m.flushHolding()
	if n := m.admission.Pending(); n > 0 {
		m.log.WithFields(logrus.Fields{
			"pending": n,
			"events":  m.admission.PendingNames(),
		}).Warn("events still held after trace end, dependencies never arrived")
	}
}

// processEvent admits one event if its causal dependencies are satisfied,
// otherwise parks it.
func (m *Monitor) processEvent(ev *trace.Event) {
	if !m.admission.IsDeliverable(ev) {
		m.admission.Enqueue(ev)
		return
	}
	m.admission.Admit(ev)
	if _, err := m.builder.ProcessEvent(ev); err != nil {
		m.log.WithError(err).WithField("event", ev.Name).Warn("event dropped")
		return
	}
	if m.tracker != nil {
		m.tracker.track(ev)
	}
}

// flushHolding re-offers held events until no further progress is made.
// Deliverability is re-checked per event inside processEvent: admitting one
// drained event can invalidate another from the same batch.
func (m *Monitor) flushHolding() {
	for pass := 0; m.admission.Pending() > 0; pass++ {
		if pass >= maxFlushPasses {
			m.log.WithField("pending", m.admission.Pending()).
				Warn("holding queue did not converge, giving up")
			return
		}
		ready := m.admission.DrainReady()
		if len(ready) == 0 {
			return
		}
		for _, ev := range ready {
			m.processEvent(ev)
		}
	}
}

func (m *Monitor) report() {
	m.phase = PhaseReporting
	m.Verdict = m.builder.FinalVerdict()

	for _, st := range m.builder.MaximalStates() {
		m.log.WithFields(logrus.Fields{
			"state":   st.String(),
			"props":   st.Propositions(),
			"verdict": st.Value(),
		}).Info("maximal state")
	}
	m.log.WithFields(logrus.Fields{
		"states":  len(m.builder.States()),
		"verdict": m.Verdict,
	}).Info("run finished")

	if m.metrics != nil {
		m.metrics.report(m.log, len(m.builder.States()))
	}
	if m.tracker != nil {
		m.tracker.report()
	}
	if m.cfg.DotFile != "" {
		if err := m.writeDot(); err != nil {
			m.log.WithError(err).Warn("dot export failed")
		}
	}
	m.phase = PhaseDone
}

func (m *Monitor) writeDot() error {
	f, err := os.Create(m.cfg.DotFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return render.WriteDOT(f, m.builder.States())
}

// Builder exposes the state graph, for inspection after Run.
func (m *Monitor) Builder() *state_graph.Builder { return m.builder }
