// Package pdag implements the parse directed-acyclic-graph: the in-memory
// rule graph that recognizes a raw log line, extracts its named fields, and
// folds them into a structured result record.
//
// A Context owns the main pdag root and any number of named user-defined
// types. It is mutable only while a rulebase is being built (via AddParser)
// and during the single Optimize pass that follows; after that, concurrent
// read-only calls to Normalize are safe provided the field parsers'
// configured data is itself safe for concurrent reads, since the core
// performs no internal locking.
package pdag

// UserType is a named sub-pdag referenced from elsewhere in the graph via a
// CustomType edge. It is matched with partial semantics: the subtype is
// considered satisfied as soon as its pdag reaches any terminal node, and
// whatever input remains is handed back to the enclosing walk.
type UserType struct {
	Name string
	Root *Node
}

// Context is the process-wide handle for one compiled rulebase: the main
// pdag root, the table of user-defined types, and build-time bookkeeping.
// A Context exclusively owns every Node it transitively reaches; Destroy
// releases all of them.
type Context struct {
	Root  *Node
	Types []*UserType

	Debug     bool
	nodeCount int
}

// NewContext creates an empty Context with a single, non-terminal main
// root node, ready to receive AddParser calls.
func NewContext() *Context {
	ctx := &Context{}
	ctx.Root = newNode(ctx)
	return ctx
}

// NodeCount reports how many Node values this Context has allocated across
// its main root and every user-defined type.
func (ctx *Context) NodeCount() int {
	return ctx.nodeCount
}

// DefineType registers a new, empty user-defined type rooted at its own
// node and returns it so the rulebase loader can grow it with AddParser.
// The name must be unique within the Context; callers are expected to
// enforce that (the rulebase loader does, the core does not).
func (ctx *Context) DefineType(name string) *UserType {
	ut := &UserType{
		Name: name,
		Root: newNode(ctx),
	}
	ctx.Types = append(ctx.Types, ut)
	return ut
}

// LookupType returns the named user-defined type, or nil if none was
// defined.
func (ctx *Context) LookupType(name string) *UserType {
	for _, ut := range ctx.Types {
		if ut.Name == name {
			return ut
		}
	}
	return nil
}

// Destroy releases every Node reachable from the main root and every
// user-defined type. The Context must not be used afterward.
func (ctx *Context) Destroy() {
	deleteNode(ctx.Root)
	for _, ut := range ctx.Types {
		deleteNode(ut.Root)
	}
	ctx.Root = nil
	ctx.Types = nil
}
