package pdag

import (
	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/pkg/pdag/fields"
)

// Normalize walks ctx's main pdag against input and returns the folded
// result tree. A nil error means some terminal node was reached with the
// entire input consumed; its tags, if any, are attached under
// entries.TagsField. A non-nil error (always ErrNoMatch) means no rule
// matched, and the returned entry still carries originalmsg/unparsed-data
// so the caller can see how far parsing got.
func Normalize(ctx *Context, input string) (entries.LogEntry, error) {
	result := entries.LogEntry{}
	var parsedTo int
	_, endNode, err := normalizeRec(ctx.Root, input, 0, false, &parsedTo, result)
	if err != nil {
		result.SetUnparsed(input, input[parsedTo:])
		return result, ErrNoMatch
	}
	result.SetTags(endNode.Tags)
	return result, nil
}

// normalizeRec is the recursive backtracking matcher. It tries node's
// outgoing edges in insertion order, recursing into the first one whose
// parser succeeds and whose child subtree also succeeds, folding the
// parsed value into result as it unwinds. parsedTo is advanced past every
// position any attempted edge reached, win or lose, so a caller can report
// the furthest point reached on total failure.
func normalizeRec(node *Node, str string, offs int, partial bool, parsedTo *int, result entries.LogEntry) (int, *Node, error) {
	for _, e := range node.Edges {
		nextOffs, value, ok := tryEdge(e, str, offs, partial, parsedTo, result)
		if !ok {
			continue
		}
		endOffs, endNode, err := normalizeRec(e.Node, str, nextOffs, partial, parsedTo, result)
		if err != nil {
			continue
		}
		foldValue(result, e.Name, value)
		return endOffs, endNode, nil
	}
	if node.IsTerminal && (offs == len(str) || partial) {
		return offs, node, nil
	}
	return offs, nil, errWrongParser
}

// tryEdge invokes one edge's parser (or, for a CustomType edge, recurses
// into the referenced user-defined type's pdag with partial forced true)
// and reports the offset just past what it consumed along with the raw
// extracted value, un-folded.
func tryEdge(e *Edge, str string, offs int, partial bool, parsedTo *int, result entries.LogEntry) (int, any, bool) {
	var nextOffs int
	var value any

	if e.PrsID == fields.CustomType {
		sub := entries.LogEntry{}
		subEnd, _, err := normalizeRec(e.CustType.Root, str, offs, true, parsedTo, sub)
		if err != nil {
			return 0, nil, false
		}
		nextOffs = subEnd
		if e.Name != "-" {
			value = sub
		}
	} else {
		entry := fields.Lookup(e.PrsID)
		suppress := e.Name == "-"
		parsed, v, err := entry.Parse(str, offs, e.data, suppress)
		if err != nil {
			return 0, nil, false
		}
		nextOffs = offs + parsed
		value = v
	}

	if nextOffs > *parsedTo {
		*parsedTo = nextOffs
	}
	return nextOffs, value, true
}
