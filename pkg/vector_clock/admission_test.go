package vector_clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtomasevic/poet/pkg/trace"
)

func mkEvent(t *testing.T, ing *trace.Ingestor, name string, procs []string, vc []int) *trace.Event {
	t.Helper()
	ev, err := ing.Ingest(trace.Record{
		Name:         name,
		Processes:    procs,
		Propositions: []string{},
		VectorClock:  vc,
		HasClock:     true,
	})
	require.NoError(t, err)
	return ev
}

// Only the slots an event touches are checked; a wildly ahead clock value on
// an uninvolved slot must not block delivery.
func TestDeliverabilityIgnoresUninvolvedSlots(t *testing.T) {
	ing := trace.NewIngestor(2, nil)
	adm := NewAdmission(2, nil)

	ev := mkEvent(t, ing, "local", []string{"P1"}, []int{1, 99})
	assert.True(t, adm.IsDeliverable(ev))

	adm.Admit(ev)
	// only the involved slot advanced
	assert.Equal(t, []int{1, 0}, adm.Expected())
}

func TestDeliverabilityRequiresExactSuccessor(t *testing.T) {
	ing := trace.NewIngestor(2, nil)
	adm := NewAdmission(2, nil)

	tooFar := mkEvent(t, ing, "skip", []string{"P1"}, []int{2, 0})
	assert.False(t, adm.IsDeliverable(tooFar))

	stale := mkEvent(t, ing, "stale", []string{"P1"}, []int{0, 0})
	assert.False(t, adm.IsDeliverable(stale))

	handshake := mkEvent(t, ing, "sync", []string{"P1", "P2"}, []int{1, 2})
	// P1 coordinate fits, P2 does not
	assert.False(t, adm.IsDeliverable(handshake))
}

// Feeding a trace in fully reversed causal order must converge: every drain
// pass after an admission releases the next event.
func TestHoldingQueueConvergesOnReversedTrace(t *testing.T) {
	ing := trace.NewIngestor(1, nil)
	adm := NewAdmission(1, nil)

	e1 := mkEvent(t, ing, "e1", []string{"P1"}, []int{1})
	e2 := mkEvent(t, ing, "e2", []string{"P1"}, []int{2})
	e3 := mkEvent(t, ing, "e3", []string{"P1"}, []int{3})

	var admitted []string
	offer := func(ev *trace.Event) {
		if adm.IsDeliverable(ev) {
			adm.Admit(ev)
			admitted = append(admitted, ev.Name)
		} else {
			adm.Enqueue(ev)
		}
	}

	offer(e3)
	offer(e2)
	assert.Equal(t, 2, adm.Pending())
	assert.Equal(t, []string{"e3", "e2"}, adm.PendingNames())

	offer(e1)
	for pass := 0; adm.Pending() > 0 && pass < 10; pass++ {
		for _, ev := range adm.DrainReady() {
			offer(ev)
		}
	}
	assert.Zero(t, adm.Pending())
	assert.Equal(t, []string{"e1", "e2", "e3"}, admitted)
	assert.Equal(t, []int{3}, adm.Expected())
}

func TestDrainReadyKeepsArrivalOrder(t *testing.T) {
	ing := trace.NewIngestor(2, nil)
	adm := NewAdmission(2, nil)

	a := mkEvent(t, ing, "a", []string{"P1"}, []int{1, 0})
	b := mkEvent(t, ing, "b", []string{"P2"}, []int{0, 1})
	adm.Enqueue(a)
	adm.Enqueue(b)

	ready := adm.DrainReady()
	require.Len(t, ready, 2)
	assert.Equal(t, "a", ready[0].Name)
	assert.Equal(t, "b", ready[1].Name)
	assert.Zero(t, adm.Pending())
}
