// Package render exports the frontier graph in Graphviz DOT form.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jtomasevic/poet/pkg/state_graph"
)

// WriteDOT renders the frontier graph. States are labeled with their name,
// propositions, and verdict; disabled states are dashed; edges carry the
// event that produced them.
func WriteDOT(w io.Writer, states []*state_graph.Frontier) error {
	_, err := io.WriteString(w, DOT(states))
	return err
}

// DOT returns the graph as a string. Output is deterministic: states in
// creation order, edges sorted by target name.
func DOT(states []*state_graph.Frontier) string {
	var b strings.Builder
	b.WriteString("digraph frontiers {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	for _, st := range states {
		style := "solid"
		if !st.Enabled() {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  \"%s\" [label=\"%s\\n{%s}\\n%t\", style=%s];\n",
			st.Name(), st.Name(), strings.Join(st.Propositions(), ","), st.Value(), style)
	}
	for _, st := range states {
		succ := st.Successors()
		targets := make([]string, 0, len(succ))
		for name := range succ {
			targets = append(targets, name)
		}
		sort.Strings(targets)
		for _, name := range targets {
			tr := succ[name]
			fmt.Fprintf(&b, "  \"%s\" -> \"%s\" [label=\"%s\"];\n",
				st.Name(), tr.To.Name(), tr.Event.Name)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
