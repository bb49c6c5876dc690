package script

// GrammarDescription is printed by the CLI's help/plugins output to explain
// the pipeline script syntax this package parses.
const GrammarDescription = `[Script Concepts]
A source/sink CLASS is identified by two identifiers separated by a dot ("."), and they are provided by plugins. Both source and sink plugins may require arguments.
(Run 'lognorm plugins' for details)

Certain transformations and all sinks will consume a source. This means that the source IDENTIFIER is no longer valid for consumption.

The general flow of a script is to wire one or more raw-line sources, load a rulebase, normalize a source through it, and sink the resulting records.

[Script Syntax]
Source identifies a raw-line log source and exposes it in the runtime.
  source IDENTIFIER as CLASS [ARG [, ARG]]

Merge will combine two sources with a new identifier. The combined sources will be marked as consumed.
  merge IDENTIFIER and IDENTIFIER as IDENTIFIER

Dupe will duplicate a source into two new sources, sending every entry to both. This is useful when you want to treat the same stream two different ways.
The input source will be marked as consumed.
  dupe IDENTIFIER as IDENTIFIER and IDENTIFIER

Append will forward a source stream into a target stream, consuming the source.
  append IDENTIFIER to IDENTIFIER

Fanout will split the entries in one stream alternately between two new streams, consuming the source.
  fanout IDENTIFIER as IDENTIFIER and IDENTIFIER

Join folds continuation lines (stack traces, wrapped messages) into the entry that started them, using one or more regular expressions to recognize a start line. Consumes the source.
  join IDENTIFIER as IDENTIFIER using "PATTERN" [, "PATTERN"]

Rulebase loads and compiles a rulebase manifest under a new identifier for later use in a normalize statement.
  rulebase IDENTIFIER from "PATH"

Normalize runs every raw line in a source through a loaded rulebase, producing a new source of normalized records.
  normalize IDENTIFIER using IDENTIFIER as IDENTIFIER

Sink writes log entries to a plugin provided output sink. This will consume the specified stream.
  sink IDENTIFIER [async as IDENTIFIER] to CLASS [ARG [, ARG]]
`
