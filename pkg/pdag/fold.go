package pdag

import "github.com/mike-wendt/liblognorm/pkg/entries"

// foldValue applies the three result-assembly rules of the named-field
// contract to one successfully parsed edge value:
//
//   - "-" discards it.
//   - "." merges it into result key-by-key when it's itself a map; falls
//     back to attaching it under the literal name "." otherwise.
//   - anything else attaches it under that name.
func foldValue(result entries.LogEntry, name string, value any) {
	switch name {
	case "-":
		return
	case ".":
		if m, ok := asMap(value); ok {
			result.Merge(m)
			return
		}
		result[name] = value
	default:
		result[name] = value
	}
}

// asMap recognizes the shapes a field parser may hand back as a mergeable
// object: entries.LogEntry itself, or a plain map[string]any (what
// name-value-list and friends construct without depending on pkg/entries).
func asMap(value any) (entries.LogEntry, bool) {
	switch v := value.(type) {
	case entries.LogEntry:
		return v, true
	case map[string]any:
		return entries.LogEntry(v), true
	default:
		return nil, false
	}
}
