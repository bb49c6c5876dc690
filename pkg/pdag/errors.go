package pdag

import "errors"

var (
	// ErrBuild is returned when node or edge construction, or AddParser,
	// fails to allocate or wire up the requested state. The pdag is left in
	// its previous valid state.
	ErrBuild = errors.New("pdag: build error")

	// ErrNoMatch is returned by Normalize when no rule in the pdag matched
	// the input. It is not exceptional; the returned Result still carries
	// originalmsg and unparsed-data.
	ErrNoMatch = errors.New("pdag: no match")

	// errWrongParser is the internal status a field parser returns to the
	// recursive matcher to drive backtracking. It must never escape
	// Normalize.
	errWrongParser = errors.New("pdag: wrong parser")

	// ErrInvalidParserName is the error the rulebase loader reports when a
	// name given to it does not correspond to any built-in parser (the
	// registry itself signals that case with the fields.Invalid id).
	ErrInvalidParserName = errors.New("pdag: invalid parser name")
)
