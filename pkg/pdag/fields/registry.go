// Package fields implements the built-in field parser registry: the fixed,
// ordered lookup table of parser plug-ins that the pdag normalizer dispatches
// through while walking a rule graph.
package fields

import "errors"

// ErrNoMatch is returned by a ConstructFunc's Parse when the input at the
// current offset does not satisfy that parser. It is purely a backtracking
// signal for the caller (pdag.Normalize); it carries no other meaning and is
// never surfaced past the normalizer.
var ErrNoMatch = errors.New("fields: no match")

// ID identifies a registry entry. Per the registry ABI, the id IS the array
// position in Table; entries are appended, never reordered or removed.
type ID int

const (
	// Invalid is returned by IDOf when a name has no registry entry.
	Invalid ID = -2
	// CustomType is the sentinel id for an edge that recurses into a
	// user-defined type's pdag instead of calling a leaf parser. It
	// deliberately falls outside Table's index range.
	CustomType ID = -1
)

// ConstructFunc builds parser-specific configuration data once, at edge
// construction time, from the rulebase-supplied extra data and parameters.
type ConstructFunc func(extraData string, params map[string]string) (any, error)

// ParseFunc attempts to match str[offs:] against this parser. On success it
// returns the number of bytes consumed and, unless the caller suppressed it
// (discard name "-"), the extracted value. On failure it returns ErrNoMatch
// (or a wrapping of it); offs is passed by value, so the caller's offset is
// never modified.
type ParseFunc func(str string, offs int, data any, suppressValue bool) (parsed int, value any, err error)

// DestructFunc releases any resources held by parser-specific data created
// by ConstructFunc. Most parsers are data-less and leave this nil.
type DestructFunc func(data any)

// CombineFunc fuses two adjacent parser_data instances of the same kind into
// one, used only by the literal-path-compaction optimizer.
type CombineFunc func(left, right any) any

// Entry is one row of the registry: a named parser with its lifecycle hooks.
type Entry struct {
	Name      string
	Construct ConstructFunc // optional
	Parse     ParseFunc
	Destruct  DestructFunc // optional
	Combine   CombineFunc  // optional, literal only
}

// Table is the fixed, ordered parser registry. Its order is part of the
// on-disk rulebase compatibility contract with the rulebase loader: new
// entries are appended at the end, never inserted or reordered. The order
// mirrors the original liblognorm parser_lookup_table (original_source/src/pdag.c).
var Table = []Entry{
	{Name: "literal", Construct: constructLiteral, Parse: parseLiteral, Combine: combineLiteral},
	{Name: "date-rfc3164", Parse: parseRFC3164Date},
	{Name: "date-rfc5424", Parse: parseRFC5424Date},
	{Name: "number", Parse: parseNumber},
	{Name: "float", Parse: parseFloat},
	{Name: "hexnumber", Parse: parseHexNumber},
	{Name: "kernel-timestamp", Parse: parseKernelTimestamp},
	{Name: "whitespace", Parse: parseWhitespace},
	{Name: "ipv4", Parse: parseIPv4},
	{Name: "ipv6", Parse: parseIPv6},
	{Name: "word", Parse: parseWord},
	{Name: "alpha", Parse: parseAlpha},
	{Name: "rest", Parse: parseRest},
	{Name: "op-quoted-string", Parse: parseOpQuotedString},
	{Name: "quoted-string", Parse: parseQuotedString},
	{Name: "date-iso", Parse: parseISODate},
	{Name: "time-24hr", Parse: parseTime24hr},
	{Name: "time-12hr", Parse: parseTime12hr},
	{Name: "duration", Parse: parseDuration},
	{Name: "cisco-interface-spec", Parse: parseCiscoInterfaceSpec},
	{Name: "name-value-list", Parse: parseNameValueList},
	{Name: "json", Parse: parseJSON},
	{Name: "cee-syslog", Parse: parseCEESyslog},
	{Name: "mac48", Parse: parseMAC48},
	{Name: "cef", Parse: parseCEF},
	{Name: "checkpoint-lea", Parse: parseCheckpointLEA},
	{Name: "v2-iptables", Parse: parseV2IPTables},
	{Name: "string-to", Construct: constructStringTo, Parse: parseStringTo},
	{Name: "char-to", Construct: constructCharTo, Parse: parseCharTo},
	{Name: "char-sep", Construct: constructCharTo, Parse: parseCharSeparated},
}

// IDOf returns the registry id for name, or Invalid if no such parser
// exists. A linear scan is acceptable: the table has tens of entries.
func IDOf(name string) ID {
	for i, e := range Table {
		if e.Name == name {
			return ID(i)
		}
	}
	return Invalid
}

// Name returns the display name for id, including the special-cased display
// name for CustomType.
func Name(id ID) string {
	if id == CustomType {
		return "USER-DEFINED"
	}
	if int(id) < 0 || int(id) >= len(Table) {
		return "INVALID"
	}
	return Table[id].Name
}

// Lookup returns the registry entry for id. The caller must only pass ids
// obtained from IDOf or already known to be valid; CustomType is handled by
// the normalizer itself and never indexes into Table.
func Lookup(id ID) Entry {
	return Table[id]
}
