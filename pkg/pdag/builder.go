package pdag

import "github.com/mike-wendt/liblognorm/pkg/pdag/fields"

// AddParser installs edge as an outgoing transition of *root, merging it
// with an existing equivalent edge when one is found, and advances *root to
// the resulting child node. It is the only mutator a rulebase loader needs:
// one call per parser placeholder in a sample, threading *root through the
// whole sample line.
//
// Equivalence is {PrsID, Name} for every parser, plus the literal payload
// for the "literal" parser — two literal edges with the same name
// but different first characters are never merged, matching the original
// literal-split design (see DESIGN.md).
func AddParser(root **Node, edge *Edge) error {
	node := *root
	if existing := findEquivalent(node, edge); existing != nil {
		deleteEdge(node.ctx, edge)
		*root = existing.Node
		return nil
	}
	child := newNode(node.ctx)
	edge.Node = child
	node.Edges = append(node.Edges, edge)
	*root = child
	return nil
}

func findEquivalent(node *Node, edge *Edge) *Edge {
	for _, e := range node.Edges {
		if e.PrsID != edge.PrsID || e.Name != edge.Name {
			continue
		}
		if e.PrsID == fields.IDOf("literal") {
			if e.literalPayload() != edge.literalPayload() {
				continue
			}
		}
		return e
	}
	return nil
}

// SetTerminal marks node as an accepting state, optionally attaching tags
// that the normalizer will fold into a successful result under the
// reserved event.tags field.
func SetTerminal(node *Node, tags ...any) {
	node.IsTerminal = true
	node.Tags = append(node.Tags, tags...)
}
