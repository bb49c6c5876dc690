package pdag

import "github.com/mike-wendt/liblognorm/pkg/pdag/fields"

// Optimize runs literal-path compaction once over every component of ctx:
// each user-defined type's root, then the main root. It must run after the
// rulebase is fully built and before any call to Normalize; the pdag is not
// safe to mutate with AddParser afterward without re-running Optimize.
func Optimize(ctx *Context) {
	for _, ut := range ctx.Types {
		optimizeNode(ut.Root)
	}
	optimizeNode(ctx.Root)
}

var literalID = fields.IDOf("literal")

// optimizeNode fuses runs of single-character literal edges starting at
// each of node's outgoing edges, then recurses into the (possibly new)
// child nodes. Fusion stops at a node that is terminal or whose only edge
// isn't itself a plain "-" literal, since either case carries semantics
// that can't be merged away.
func optimizeNode(node *Node) {
	for _, e := range node.Edges {
		for canFuse(e) {
			child := e.Node
			grandEdge := child.Edges[0]
			e.data = fields.Lookup(literalID).Combine(e.data, grandEdge.data)
			e.Node = grandEdge.Node
			grandEdge.Node = nil // owned by e now, don't let deleteEdge recurse into it
			child.Edges = nil
			deleteNode(child)
			deleteEdgeShallow(grandEdge)
		}
	}
	for _, e := range node.Edges {
		optimizeNode(e.Node)
	}
}

// canFuse reports whether e is a literal edge whose child has exactly one
// outgoing edge, that edge is also a plain literal, and the child isn't
// terminal.
func canFuse(e *Edge) bool {
	if e.PrsID != literalID || e.Name != "-" {
		return false
	}
	child := e.Node
	if child == nil || child.IsTerminal || len(child.Edges) != 1 {
		return false
	}
	next := child.Edges[0]
	return next.PrsID == literalID && next.Name == "-"
}

// deleteEdgeShallow clears an edge's own fields without touching the child
// node it used to own, since ownership of that node has already been
// transferred to the fusing parent edge.
func deleteEdgeShallow(e *Edge) {
	e.data = nil
	e.Node = nil
}
