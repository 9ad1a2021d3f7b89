// Package formula holds the PCTL formula tree, its evaluator, and the
// property-file parser.
//
// Evaluation is predecessor-local: a formula node reads only the state's own
// propositions and the cached values its predecessors computed for the same
// node. Each node in a parsed tree gets a dense ID in one pre-order pass, and
// every state's cache is a []bool indexed by that ID.
package formula

// ID is the cache index of one formula node within its tree.
type ID int

// Snapshot is one state's evaluation cache: one bool per formula node,
// indexed by ID.
type Snapshot []bool

// State is the view of a global state the evaluator needs.
type State interface {
	// HasProposition reports whether the named proposition holds in the state.
	HasProposition(name string) bool
	// Predecessors returns the evaluation caches of the state's immediate
	// predecessors. A root state returns an empty slice.
	Predecessors() []Snapshot
	// SetNow records the value this evaluation computed for the given node.
	SetNow(id ID, value bool)
}

// Formula is one PCTL formula node.
//
// Eval computes the node's value on a state and records it, along with every
// descendant's value, through State.SetNow. Key is the canonical string form,
// used for display and duplicate detection.
type Formula interface {
	Key() string
	Eval(s State) bool
	Children() []Formula

	setID(id ID)
	nodeID() ID
}

type node struct {
	id ID
}

func (n *node) setID(id ID) { n.id = id }
func (n *node) nodeID() ID  { return n.id }

// Index assigns every node of the tree its ID in pre-order and returns the
// node list. The slice length is the size every Snapshot for this tree must
// have; nodes[i].nodeID() == i.
func Index(root Formula) []Formula {
	var nodes []Formula
	var walk func(f Formula)
	walk = func(f Formula) {
		f.setID(ID(len(nodes)))
		nodes = append(nodes, f)
		for _, c := range f.Children() {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

// quantifier helpers over predecessor caches

func anyPred(s State, id ID) bool {
	for _, snap := range s.Predecessors() {
		if snap[id] {
			return true
		}
	}
	return false
}

func allPreds(s State, id ID) bool {
	for _, snap := range s.Predecessors() {
		if !snap[id] {
			return false
		}
	}
	return true
}

func hasPreds(s State) bool {
	return len(s.Predecessors()) > 0
}
