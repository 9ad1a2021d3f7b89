package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubState is a minimal State for evaluator tests.
type stubState struct {
	props map[string]bool
	preds []Snapshot
	now   Snapshot
}

func newStubState(size int, props map[string]bool, preds ...Snapshot) *stubState {
	return &stubState{
		props: props,
		preds: preds,
		now:   make(Snapshot, size),
	}
}

func (s *stubState) HasProposition(name string) bool { return s.props[name] }
func (s *stubState) Predecessors() []Snapshot        { return s.preds }
func (s *stubState) SetNow(id ID, value bool)        { s.now[id] = value }

func evalOn(t *testing.T, input string, props map[string]bool, preds ...Snapshot) bool {
	t.Helper()
	root, nodes, err := Parse(input)
	require.NoError(t, err)
	return root.Eval(newStubState(len(nodes), props, preds...))
}

func TestEvalBooleanConnectives(t *testing.T) {
	props := map[string]bool{"p": true}
	assert.True(t, evalOn(t, "p", props))
	assert.False(t, evalOn(t, "q", props))
	assert.True(t, evalOn(t, "TRUE", props))
	assert.False(t, evalOn(t, "FALSE", props))
	assert.False(t, evalOn(t, "! p", props))
	assert.False(t, evalOn(t, "p & q", props))
	assert.True(t, evalOn(t, "p | q", props))
	assert.False(t, evalOn(t, "p -> q", props))
	assert.True(t, evalOn(t, "q -> p", props))
	assert.False(t, evalOn(t, "p <-> q", props))
	assert.True(t, evalOn(t, "(p)", props))
}

// A state with no predecessors is the lattice root. The universal operators
// must not be vacuously true there: AP and AS reduce to their operand.
func TestEvalRootCases(t *testing.T) {
	pTrue := map[string]bool{"p": true}
	pFalse := map[string]bool{}

	assert.False(t, evalOn(t, "EY(p)", pTrue))
	assert.True(t, evalOn(t, "AY(p)", pFalse))

	assert.True(t, evalOn(t, "EP(p)", pTrue))
	assert.False(t, evalOn(t, "EP(p)", pFalse))
	assert.True(t, evalOn(t, "AP(p)", pTrue))
	assert.False(t, evalOn(t, "AP(p)", pFalse))

	assert.True(t, evalOn(t, "EH(p)", pTrue))
	assert.False(t, evalOn(t, "EH(p)", pFalse))
	assert.True(t, evalOn(t, "AH(p)", pTrue))
	assert.False(t, evalOn(t, "AH(p)", pFalse))

	q := map[string]bool{"q": true}
	assert.True(t, evalOn(t, "E(p S q)", q))
	assert.False(t, evalOn(t, "E(p S q)", pTrue))
	assert.True(t, evalOn(t, "A(p S q)", q))
	assert.False(t, evalOn(t, "A(p S q)", pTrue))
}

func TestEvalYesterdayQuantifiesOverPredecessors(t *testing.T) {
	root, nodes, err := Parse("EY(p)")
	require.NoError(t, err)
	pID := nodes[1].nodeID()

	yes := make(Snapshot, len(nodes))
	yes[pID] = true
	no := make(Snapshot, len(nodes))

	assert.True(t, root.Eval(newStubState(len(nodes), nil, yes, no)))
	assert.False(t, root.Eval(newStubState(len(nodes), nil, no, no)))

	ayRoot, ayNodes, err := Parse("AY(p)")
	require.NoError(t, err)
	assert.False(t, ayRoot.Eval(newStubState(len(ayNodes), nil, yes, no)))
	assert.True(t, ayRoot.Eval(newStubState(len(ayNodes), nil, yes, yes)))
}

func TestEvalSinceCarriesThroughPredecessors(t *testing.T) {
	root, nodes, err := Parse("E(p S q)")
	require.NoError(t, err)
	selfID := nodes[0].nodeID()

	held := make(Snapshot, len(nodes))
	held[selfID] = true
	broken := make(Snapshot, len(nodes))

	p := map[string]bool{"p": true}
	// p still holds and some predecessor satisfied the since
	assert.True(t, root.Eval(newStubState(len(nodes), p, held, broken)))
	// p still holds but no predecessor did
	assert.False(t, root.Eval(newStubState(len(nodes), p, broken)))
	// p itself broke
	assert.False(t, root.Eval(newStubState(len(nodes), nil, held)))

	asRoot, asNodes, err := Parse("A(p S q)")
	require.NoError(t, err)
	heldAS := make(Snapshot, len(asNodes))
	heldAS[asNodes[0].nodeID()] = true
	assert.False(t, asRoot.Eval(newStubState(len(asNodes), p, heldAS, make(Snapshot, len(asNodes)))))
	assert.True(t, asRoot.Eval(newStubState(len(asNodes), p, heldAS, heldAS)))
}

// evalChain evaluates a formula along a linear chain of states, each state's
// only predecessor being the previous one, and returns the root value per
// state.
func evalChain(t *testing.T, input string, chain []map[string]bool) []bool {
	t.Helper()
	root, nodes, err := Parse(input)
	require.NoError(t, err)
	var results []bool
	var prev Snapshot
	for _, props := range chain {
		var st *stubState
		if prev == nil {
			st = newStubState(len(nodes), props)
		} else {
			st = newStubState(len(nodes), props, prev)
		}
		results = append(results, root.Eval(st))
		prev = st.now
	}
	return results
}

func TestEvalHistoricallyDualities(t *testing.T) {
	chains := [][]map[string]bool{
		{{"p": true}, {"p": true}, {}},
		{{}, {"p": true}, {"p": true}},
		{{"p": true}, {}, {"p": true}},
		{{"p": true}, {"p": true}, {"p": true}},
	}
	for _, chain := range chains {
		ah := evalChain(t, "AH(p)", chain)
		notEPNot := evalChain(t, "! EP(! p)", chain)
		assert.Equal(t, ah, notEPNot)

		eh := evalChain(t, "EH(p)", chain)
		notAPNot := evalChain(t, "! AP(! p)", chain)
		assert.Equal(t, eh, notAPNot)
	}
}

func TestEvalPopulatesEveryNodeCache(t *testing.T) {
	root, nodes, err := Parse("p & FALSE | q")
	require.NoError(t, err)
	st := newStubState(len(nodes), map[string]bool{"p": true, "q": true})
	assert.True(t, root.Eval(st))
	// both operands of every connective are evaluated, short circuit or not
	for _, n := range nodes {
		if prop, ok := n.(*Proposition); ok {
			assert.True(t, st.now[prop.nodeID()], "cache entry for %s", prop.Key())
		}
	}
}
