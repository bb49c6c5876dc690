package pdag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mike-wendt/liblognorm/pkg/pdag/fields"
)

// Dump writes an indented textual tree of the main pdag to w, one line per
// edge, depth reflected by indentation. It never mutates the graph.
func Dump(ctx *Context, w io.Writer) {
	dumpNode(w, ctx.Root, 0)
}

func dumpNode(w io.Writer, node *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range node.Edges {
		fmt.Fprintf(w, "%s%s:%s\n", indent, fields.Name(e.PrsID), edgeLabel(e))
		dumpNode(w, e.Node, depth+1)
	}
	if node.IsTerminal {
		fmt.Fprintf(w, "%s(terminal, tags=%v)\n", indent, node.Tags)
	}
}

// WriteDOT exports the main pdag as a Graphviz DOT graph: nodes labeled
// "n0", "n1", ...; terminal nodes drawn bold; edges labeled
// "parser:literal-payload" (the payload only shown for literal edges).
func WriteDOT(ctx *Context, w io.Writer) {
	fmt.Fprintln(w, "digraph pdag {")
	ids := map[*Node]int{}
	next := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, ok := ids[n]; ok {
			return
		}
		ids[n] = next
		next++
		if n.IsTerminal {
			fmt.Fprintf(w, "  n%d [style=bold];\n", ids[n])
		}
		for _, e := range n.Edges {
			walk(e.Node)
			fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", ids[n], ids[e.Node], edgeLabel(e))
		}
	}
	walk(ctx.Root)
	fmt.Fprintln(w, "}")
}

func edgeLabel(e *Edge) string {
	if e.PrsID == fields.IDOf("literal") {
		return fmt.Sprintf("%s:%s", fields.Name(e.PrsID), e.literalPayload())
	}
	return fields.Name(e.PrsID)
}

// Stats summarizes the shape of one pdag component.
type Stats struct {
	Nodes         int
	TerminalNodes int
	Edges         int
	EdgesByParser map[string]int
	LongestPath   int
	EdgesPerNode  map[int]int // histogram: edge count -> number of nodes with that count
}

func newStats() *Stats {
	return &Stats{
		EdgesByParser: map[string]int{},
		EdgesPerNode:  map[int]int{},
	}
}

// ComponentStats gathers Stats for a single component rooted at root.
func ComponentStats(root *Node) *Stats {
	s := newStats()
	gatherStats(root, s, 0)
	return s
}

func gatherStats(node *Node, s *Stats, depth int) {
	s.Nodes++
	if node.IsTerminal {
		s.TerminalNodes++
	}
	s.EdgesPerNode[len(node.Edges)]++
	if depth > s.LongestPath {
		s.LongestPath = depth
	}
	for _, e := range node.Edges {
		s.Edges++
		s.EdgesByParser[fields.Name(e.PrsID)]++
		gatherStats(e.Node, s, depth+1)
	}
}

// FullStats gathers Stats across every component of ctx: the main pdag plus
// every user-defined type, merged into one report.
func FullStats(ctx *Context) *Stats {
	total := newStats()
	mergeStats(total, ComponentStats(ctx.Root))
	for _, ut := range ctx.Types {
		mergeStats(total, ComponentStats(ut.Root))
	}
	return total
}

func mergeStats(into, from *Stats) {
	into.Nodes += from.Nodes
	into.TerminalNodes += from.TerminalNodes
	into.Edges += from.Edges
	if from.LongestPath > into.LongestPath {
		into.LongestPath = from.LongestPath
	}
	for k, v := range from.EdgesByParser {
		into.EdgesByParser[k] += v
	}
	for k, v := range from.EdgesPerNode {
		into.EdgesPerNode[k] += v
	}
}

// String renders a stable, sorted textual summary for CLI output and tests.
func (s *Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nodes=%d terminal=%d edges=%d longest-path=%d\n", s.Nodes, s.TerminalNodes, s.Edges, s.LongestPath)
	names := make([]string, 0, len(s.EdgesByParser))
	for name := range s.EdgesByParser {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, s.EdgesByParser[name])
	}
	return b.String()
}
