package pdag

// Node is one state of the parse dag: an ordered list of outgoing parser
// edges, plus terminal flags and tags. The edge list is append-only while a
// rulebase is being built and is frozen once Optimize has run.
type Node struct {
	Edges      []*Edge
	IsTerminal bool
	Tags       []any

	ctx *Context
}

// newNode allocates an empty Node owned by ctx and accounts for it in the
// Context's node count. A nil Context is not a valid input; callers always
// have one in hand (the Context itself, when building its own root).
func newNode(ctx *Context) *Node {
	ctx.nodeCount++
	return &Node{ctx: ctx}
}

// deleteNode recursively releases n's edges (and their children and parser
// data), then n itself. A nil Node is a no-op.
func deleteNode(n *Node) {
	if n == nil {
		return
	}
	for _, e := range n.Edges {
		deleteEdge(n.ctx, e)
	}
	n.Edges = nil
	n.Tags = nil
}
