package pdag

import (
	"fmt"

	"github.com/mike-wendt/liblognorm/pkg/pdag/fields"
)

// Edge is one outgoing transition from a Node: a field parser paired with
// the result-field name under which its extracted value is recorded.
// "-" discards the value; "." merges it as an object into the enclosing
// result. An Edge exclusively owns its child Node and its ParserData,
// except when PrsID is fields.CustomType, in which case CustType is a
// non-owning reference into the Context's user-type table.
type Edge struct {
	PrsID fields.ID
	Name  string
	Prio  int // reserved; always 0 until a comparator-based ordering rule exists

	CustType *UserType
	data     any
	Node     *Node
}

// NewEdge constructs a parser edge. If prsid is fields.CustomType, custType
// must be non-nil and is stored by reference. Otherwise, if the registry
// entry has a Construct hook, it is invoked with extraData and params to
// produce the edge's parser data.
func NewEdge(name string, prsid fields.ID, custType *UserType, extraData string, params map[string]string) (*Edge, error) {
	e := &Edge{
		Name:  name,
		PrsID: prsid,
	}
	if prsid == fields.CustomType {
		if custType == nil {
			return nil, fmt.Errorf("%w: custom type edge with no type reference", ErrBuild)
		}
		e.CustType = custType
		return e, nil
	}
	entry := fields.Lookup(prsid)
	if entry.Construct != nil {
		data, err := entry.Construct(extraData, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBuild, err)
		}
		e.data = data
	}
	return e, nil
}

// NewLiteralEdge is a convenience constructor for a single-character
// literal edge, the unit addParser works with before the optimizer fuses
// runs of them back together.
func NewLiteralEdge(lit byte) (*Edge, error) {
	literalID := fields.IDOf("literal")
	return NewEdge("-", literalID, nil, string(lit), nil)
}

// deleteEdge recursively deletes e's child node, invokes the parser's
// Destruct hook on e's parser data, and clears e.
func deleteEdge(ctx *Context, e *Edge) {
	if e.Node != nil {
		deleteNode(e.Node)
	}
	if e.PrsID != fields.CustomType && e.data != nil {
		if destruct := fields.Lookup(e.PrsID).Destruct; destruct != nil {
			destruct(e.data)
		}
	}
	e.data = nil
	e.Node = nil
}

// literalPayload returns a literal edge's payload: a single character before
// optimization, or a fused run afterward. It returns "" for any other edge.
func (e *Edge) literalPayload() string {
	s, _ := e.data.(string)
	return s
}
