// Package script implements the pipeline configuration language a
// normalization run is described in: wiring raw-line sources, loading a
// rulebase, normalizing sources through it, and wiring sinks for the
// resulting records.
package script

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrUndefinedIdentifier = errors.New("undefined identifier")
	ErrAlreadyDefined      = errors.New("identifier is already defined")
	ErrAlreadyConsumed     = errors.New("iterator is no longer consumable")
	errNotAMatch           = errors.New("not a match")
)

func errUndefined(id string) error {
	return fmt.Errorf("%w '%s'", ErrUndefinedIdentifier, id)
}

func errAlreadyDefined(id string) error {
	return fmt.Errorf("'%s' %w", id, ErrAlreadyDefined)
}

func errAlreadyConsumed(id string) error {
	return fmt.Errorf("'%s' %w", id, ErrAlreadyConsumed)
}

type AstType int

const (
	EOL AstType = iota
	ARG
	SOURCE_CLASS
	SOURCE
	SINK_CLASS
	SINK
	ASYNC_SINK
	MERGE
	DUPE
	APPEND
	FANOUT
	RULEBASE
	NORMALIZE
	JOIN
)

// ParseString parses a script from in-memory text.
func ParseString(s string) ([]AstNode, error) {
	p := newParser(lexString(s))
	nodes, err := p.parse()
	if err != nil {
		consumeTokens(p.l.tokens)
	}
	return nodes, err
}

// ParseFile parses a script from a file on disk.
func ParseFile(file string) ([]AstNode, error) {
	l, err := lexFile(file)
	if err != nil {
		return nil, err
	}
	p := newParser(l)
	nodes, err := p.parse()
	if err != nil {
		consumeTokens(p.l.tokens)
	}
	return nodes, err
}

func consumeTokens(ch <-chan token) {
	for range ch {
	}
}

// AstNode is one parsed statement of a script.
type AstNode interface {
	Line() int
	Pos() int
	Text() string
	Type() AstType
}

type ast struct {
	AstLine int
	AstPos  int
	AstText string
	AstType AstType
}

func (a *ast) Line() int     { return a.AstLine }
func (a *ast) Pos() int      { return a.AstPos }
func (a *ast) Text() string  { return a.AstText }
func (a *ast) Type() AstType { return a.AstType }

func (a *ast) setVals(t token, typ AstType) {
	a.AstLine = t.Line
	a.AstPos = t.Pos
	a.AstText = t.Text
	a.AstType = typ
}
func (a *ast) append(t token)            { a.AstText += t.Text }
func (a *ast) appendSpace(t token)        { a.AstText += " " + t.Text }
func (a *ast) appendText(s string)       { a.AstText += s }
func (a *ast) appendTextSpace(s string)  { a.AstText += " " + s }

type parser struct {
	l         *lexer
	sources   map[string]bool
	consumed  map[string]bool
	sinks     map[string]bool
	rulebases map[string]bool
}

func newParser(l *lexer) *parser {
	return &parser{
		l:         l,
		sources:   map[string]bool{},
		consumed:  map[string]bool{},
		sinks:     map[string]bool{},
		rulebases: map[string]bool{},
	}
}

func (p *parser) parse() ([]AstNode, error) {
	str := p.l.stream()
	var nodes []AstNode

	go func() {
		p.l.lex()
	}()

	for {
		t := str.peek()
		switch t.Type {
		case tEof:
			return nodes, nil
		case tErr:
			return nodes, errors.New(t.Text)
		case tEol:
			eol, err := p.parseEol(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, eol)
		case tSource:
			n, err := p.parseSource(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tSink:
			n, err := p.parseSink(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tMerge:
			n, err := p.parseMerge(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tDupe:
			n, err := p.parseDupe(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tAppend:
			n, err := p.parseAppend(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tFanout:
			n, err := p.parseFanout(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tRulebase:
			n, err := p.parseRulebase(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tNormalize:
			n, err := p.parseNormalize(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case tJoin:
			n, err := p.parseJoin(str)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		default:
			return nil, unexpected(str.next(), "EOL", "EOF", "source", "sink", "merge", "dupe", "append", "fanout", "rulebase", "normalize", "join")
		}
	}
}

func unexpected(t token, expected ...string) error {
	expect := "one of " + strings.Join(expected, ", ")
	return fmt.Errorf("%w: expected %s at line %d position %d", ErrUnexpectedToken, expect, t.Line, t.Pos)
}

func semantic(t token, err error) error {
	return fmt.Errorf("%w at line %d position %d", err, t.Line, t.Pos)
}

func notAMatch(err error) bool {
	return errors.Is(err, errNotAMatch)
}

type Eol struct{ ast }

func (p *parser) parseRequiredEol(str *tokenStream) (*Eol, error) {
	eol, err := p.parseEol(str)
	if notAMatch(err) {
		return nil, unexpected(str.peek(), "end of file", "end of line")
	}
	return eol, err
}

func (p *parser) parseEol(str *tokenStream) (*Eol, error) {
	t := str.next()
	if t.Type == tEof || t.Type == tEol {
		eol := new(Eol)
		eol.setVals(t, EOL)
		return eol, nil
	}
	str.pushBack(t)
	return nil, errNotAMatch
}

// Arg is one positional argument to a source or sink call.
type Arg struct {
	ast
	String     string
	Number     float64
	Int        int64
	Identifier string
}

func escapeString(s string) string {
	s = strings.TrimPrefix(strings.TrimSuffix(s, `"`), `"`)
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

func (p *parser) parseArg(str *tokenStream) (*Arg, error) {
	t := str.next()
	switch t.Type {
	case tString:
		a := &Arg{String: escapeString(t.Text)}
		a.setVals(t, ARG)
		return a, nil
	case tNumber:
		n, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, errors.New("invalid float")
		}
		a := &Arg{Number: n}
		a.setVals(t, ARG)
		return a, nil
	case tInt:
		i, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, errors.New("invalid int")
		}
		a := &Arg{Int: i}
		a.setVals(t, ARG)
		return a, nil
	case tIdentifier:
		id := t.Text
		if !p.sources[id] && !p.sinks[id] {
			return nil, semantic(t, errUndefined(id))
		}
		a := &Arg{Identifier: id}
		a.setVals(t, ARG)
		return a, nil
	default:
		str.pushBack(t)
		return nil, errNotAMatch
	}
}

func (p *parser) parseArgs(str *tokenStream) ([]*Arg, error) {
	var args []*Arg
	for {
		if len(args) > 0 {
			t := str.next()
			if t.Type != tComma {
				str.pushBack(t)
				return args, nil
			}
		}
		a, err := p.parseArg(str)
		if err != nil {
			if notAMatch(err) {
				if len(args) == 0 {
					return nil, unexpected(str.peek(), "argument")
				}
				return args, nil
			}
			return nil, err
		}
		args = append(args, a)
	}
}

// SourceClass and SinkClass identify a registered plugin source/sink by
// "qualifier.class", e.g. "file.Tail" or "sqlite.Table".
type SourceClass struct {
	ast
	Qualifier   string
	SourceClass string
}

func (p *parser) parseSourceClass(str *tokenStream) (*SourceClass, error) {
	sc := new(SourceClass)
	qual := str.next()
	if qual.Type != tIdentifier {
		str.pushBack(qual)
		return nil, unexpected(qual, "source class qualifier")
	}
	sc.Qualifier = qual.Text
	sc.setVals(qual, SOURCE_CLASS)

	dot := str.next()
	if dot.Type != tDot {
		str.pushBack(dot, qual)
		return nil, unexpected(dot, "dot separator")
	}
	sc.append(dot)

	id := str.next()
	if id.Type != tIdentifier {
		str.pushBack(id, dot, qual)
		return nil, unexpected(id, "source class identifier")
	}
	sc.SourceClass = id.Text
	sc.append(id)
	return sc, nil
}

type Source struct {
	ast
	ID    string
	Class *SourceClass
	Args  []*Arg
}

func (p *parser) parseSource(str *tokenStream) (*Source, error) {
	src := new(Source)
	s := str.next()
	if s.Type != tSource {
		str.pushBack(s)
		return nil, errNotAMatch
	}
	src.setVals(s, SOURCE)

	id := str.next()
	if id.Type != tIdentifier {
		return nil, unexpected(id, "source identifier")
	}
	if p.sources[id.Text] {
		return nil, semantic(id, errAlreadyDefined(id.Text))
	}
	p.sources[id.Text] = true
	src.ID = id.Text
	src.appendSpace(id)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	src.appendSpace(as)

	sc, err := p.parseSourceClass(str)
	if err != nil {
		return nil, err
	}
	src.Class = sc
	src.appendTextSpace(sc.AstText)

	args, err := p.parseArgs(str)
	if err != nil {
		return nil, err
	}
	src.Args = args
	for i, a := range args {
		if i > 0 {
			src.appendText(",")
		}
		src.appendTextSpace(a.AstText)
	}

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return src, nil
}

type SinkClass struct {
	ast
	Qualifier string
	SinkClass string
}

func (p *parser) parseSinkClass(str *tokenStream) (*SinkClass, error) {
	sc := new(SinkClass)
	qual := str.next()
	if qual.Type != tIdentifier {
		str.pushBack(qual)
		return nil, unexpected(qual, "sink class qualifier")
	}
	sc.Qualifier = qual.Text
	sc.setVals(qual, SINK_CLASS)

	dot := str.next()
	if dot.Type != tDot {
		str.pushBack(dot, qual)
		return nil, unexpected(dot, "dot separator")
	}
	sc.append(dot)

	id := str.next()
	if id.Type != tIdentifier {
		str.pushBack(id, dot, qual)
		return nil, unexpected(id, "sink class identifier")
	}
	sc.SinkClass = id.Text
	sc.append(id)
	return sc, nil
}

type Sink struct {
	ast
	Source string
	Async  bool
	ID     string
	Class  *SinkClass
	Args   []*Arg
}

func (p *parser) parseSink(str *tokenStream) (*Sink, error) {
	sink := new(Sink)
	s := str.next()
	if s.Type != tSink {
		str.pushBack(s)
		return nil, errNotAMatch
	}
	sink.setVals(s, SINK)

	iterID := str.next()
	if iterID.Type != tIdentifier {
		return nil, unexpected(iterID, "iterator identifier")
	}
	if !p.sources[iterID.Text] {
		return nil, semantic(iterID, errUndefined(iterID.Text))
	}
	if p.consumed[iterID.Text] {
		return nil, semantic(iterID, errAlreadyConsumed(iterID.Text))
	}
	sink.Source = iterID.Text
	p.consumed[iterID.Text] = true
	sink.appendSpace(iterID)

	asyncTo := str.next()
	if asyncTo.Type == tAsync {
		sink.AstType = ASYNC_SINK
		sink.Async = true
		sink.appendSpace(asyncTo)
		as := str.next()
		if as.Type != tAs {
			return nil, unexpected(as, "as")
		}
		sink.appendSpace(as)
		id := str.next()
		if id.Type != tIdentifier {
			return nil, unexpected(id, "sink identifier")
		}
		if p.sinks[id.Text] {
			return nil, semantic(id, errAlreadyDefined(id.Text))
		}
		sink.ID = id.Text
		p.sinks[id.Text] = true
		sink.appendSpace(id)

		to := str.next()
		if to.Type != tTo {
			return nil, unexpected(to, "to")
		}
		sink.appendSpace(to)
	} else if asyncTo.Type != tTo {
		return nil, unexpected(asyncTo, "to", "async")
	} else {
		sink.appendSpace(asyncTo)
	}

	sc, err := p.parseSinkClass(str)
	if err != nil {
		return nil, err
	}
	sink.Class = sc
	sink.appendTextSpace(sc.AstText)

	args, err := p.parseArgs(str)
	if err != nil {
		return nil, err
	}
	sink.Args = args
	for i, a := range args {
		if i > 0 {
			sink.appendText(",")
		}
		sink.appendTextSpace(a.AstText)
	}

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return sink, nil
}

type Merge struct {
	ast
	SourceA string
	SourceB string
	ID      string
}

func (p *parser) parseMerge(str *tokenStream) (*Merge, error) {
	merge := new(Merge)
	m := str.next()
	if m.Type != tMerge {
		str.pushBack(m)
		return nil, errNotAMatch
	}
	merge.setVals(m, MERGE)

	a, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	merge.SourceA = a.Text
	merge.appendSpace(a)

	and := str.next()
	if and.Type != tAnd {
		return nil, unexpected(and, "and")
	}
	merge.appendSpace(and)

	b, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	merge.SourceB = b.Text
	merge.appendSpace(b)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	merge.appendSpace(as)

	id, err := p.defineSourceRef(str, "merged identifier")
	if err != nil {
		return nil, err
	}
	merge.ID = id.Text
	merge.appendSpace(id)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return merge, nil
}

// consumeSourceRef reads an identifier that must name an already-defined,
// not-yet-consumed source, and marks it consumed.
func (p *parser) consumeSourceRef(str *tokenStream, what string) (token, error) {
	t := str.next()
	if t.Type != tIdentifier {
		return t, unexpected(t, what)
	}
	if !p.sources[t.Text] {
		return t, semantic(t, errUndefined(t.Text))
	}
	if p.consumed[t.Text] {
		return t, semantic(t, errAlreadyConsumed(t.Text))
	}
	p.consumed[t.Text] = true
	return t, nil
}

// defineSourceRef reads an identifier that introduces a new source name.
func (p *parser) defineSourceRef(str *tokenStream, what string) (token, error) {
	t := str.next()
	if t.Type != tIdentifier {
		return t, unexpected(t, what)
	}
	if p.sources[t.Text] {
		return t, semantic(t, errAlreadyDefined(t.Text))
	}
	p.sources[t.Text] = true
	return t, nil
}

type Dupe struct {
	ast
	Source  string
	TargetA string
	TargetB string
}

func (p *parser) parseDupe(str *tokenStream) (*Dupe, error) {
	dupe := new(Dupe)
	d := str.next()
	if d.Type != tDupe {
		str.pushBack(d)
		return nil, errNotAMatch
	}
	dupe.setVals(d, DUPE)

	src, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	dupe.Source = src.Text
	dupe.appendSpace(src)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	dupe.appendSpace(as)

	a, err := p.defineSourceRef(str, "target identifier")
	if err != nil {
		return nil, err
	}
	dupe.TargetA = a.Text
	dupe.appendSpace(a)

	and := str.next()
	if and.Type != tAnd {
		return nil, unexpected(and, "and")
	}
	dupe.appendSpace(and)

	b, err := p.defineSourceRef(str, "target identifier")
	if err != nil {
		return nil, err
	}
	dupe.TargetB = b.Text
	dupe.appendSpace(b)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return dupe, nil
}

type Append struct {
	ast
	Source string
	Target string
}

func (p *parser) parseAppend(str *tokenStream) (*Append, error) {
	apnd := new(Append)
	a := str.next()
	if a.Type != tAppend {
		str.pushBack(a)
		return nil, errNotAMatch
	}
	apnd.setVals(a, APPEND)

	src, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	apnd.Source = src.Text
	apnd.appendSpace(src)

	to := str.next()
	if to.Type != tTo {
		return nil, unexpected(to, "to")
	}
	apnd.appendSpace(to)

	trg := str.next()
	if trg.Type != tIdentifier {
		return nil, unexpected(trg, "target identifier")
	}
	if !p.sources[trg.Text] {
		return nil, semantic(trg, errUndefined(trg.Text))
	}
	apnd.Target = trg.Text
	apnd.appendSpace(trg)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return apnd, nil
}

type Fanout struct {
	ast
	Source  string
	TargetA string
	TargetB string
}

func (p *parser) parseFanout(str *tokenStream) (*Fanout, error) {
	fanout := new(Fanout)
	f := str.next()
	if f.Type != tFanout {
		str.pushBack(f)
		return nil, errNotAMatch
	}
	fanout.setVals(f, FANOUT)

	src, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	fanout.Source = src.Text
	fanout.appendSpace(src)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	fanout.appendSpace(as)

	a, err := p.defineSourceRef(str, "target identifier")
	if err != nil {
		return nil, err
	}
	fanout.TargetA = a.Text
	fanout.appendSpace(a)

	and := str.next()
	if and.Type != tAnd {
		return nil, unexpected(and, "and")
	}
	fanout.appendSpace(and)

	b, err := p.defineSourceRef(str, "target identifier")
	if err != nil {
		return nil, err
	}
	fanout.TargetB = b.Text
	fanout.appendSpace(b)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return fanout, nil
}

// Rulebase loads and compiles a named rulebase manifest for later use in a
// Normalize statement.
type Rulebase struct {
	ast
	ID   string
	Path string
}

func (p *parser) parseRulebase(str *tokenStream) (*Rulebase, error) {
	rb := new(Rulebase)
	r := str.next()
	if r.Type != tRulebase {
		str.pushBack(r)
		return nil, errNotAMatch
	}
	rb.setVals(r, RULEBASE)

	id := str.next()
	if id.Type != tIdentifier {
		return nil, unexpected(id, "rulebase identifier")
	}
	if p.rulebases[id.Text] {
		return nil, semantic(id, errAlreadyDefined(id.Text))
	}
	p.rulebases[id.Text] = true
	rb.ID = id.Text
	rb.appendSpace(id)

	from := str.next()
	if from.Type != tFrom {
		return nil, unexpected(from, "from")
	}
	rb.appendSpace(from)

	path := str.next()
	if path.Type != tString {
		return nil, unexpected(path, "manifest path string")
	}
	rb.Path = escapeString(path.Text)
	rb.appendSpace(path)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return rb, nil
}

// Normalize wires a raw-line source through a loaded rulebase, producing a
// new source of normalized records under ID.
type Normalize struct {
	ast
	Source   string
	Rulebase string
	ID       string
}

func (p *parser) parseNormalize(str *tokenStream) (*Normalize, error) {
	n := new(Normalize)
	kw := str.next()
	if kw.Type != tNormalize {
		str.pushBack(kw)
		return nil, errNotAMatch
	}
	n.setVals(kw, NORMALIZE)

	src, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	n.Source = src.Text
	n.appendSpace(src)

	using := str.next()
	if using.Type != tUsing {
		return nil, unexpected(using, "using")
	}
	n.appendSpace(using)

	rb := str.next()
	if rb.Type != tIdentifier {
		return nil, unexpected(rb, "rulebase identifier")
	}
	if !p.rulebases[rb.Text] {
		return nil, semantic(rb, errUndefined(rb.Text))
	}
	n.Rulebase = rb.Text
	n.appendSpace(rb)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	n.appendSpace(as)

	id, err := p.defineSourceRef(str, "normalized source identifier")
	if err != nil {
		return nil, err
	}
	n.ID = id.Text
	n.appendSpace(id)

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return n, nil
}

// Join folds continuation lines (stack traces, wrapped messages) into the
// LogEntry that started them, before that source reaches a Normalize
// statement. A line starts a new entry when it matches one of Patterns;
// anything else is appended to the current entry's message.
type Join struct {
	ast
	Source   string
	ID       string
	Patterns []string
}

func (p *parser) parseJoin(str *tokenStream) (*Join, error) {
	j := new(Join)
	kw := str.next()
	if kw.Type != tJoin {
		str.pushBack(kw)
		return nil, errNotAMatch
	}
	j.setVals(kw, JOIN)

	src, err := p.consumeSourceRef(str, "source identifier")
	if err != nil {
		return nil, err
	}
	j.Source = src.Text
	j.appendSpace(src)

	as := str.next()
	if as.Type != tAs {
		return nil, unexpected(as, "as")
	}
	j.appendSpace(as)

	id, err := p.defineSourceRef(str, "joined source identifier")
	if err != nil {
		return nil, err
	}
	j.ID = id.Text
	j.appendSpace(id)

	using := str.next()
	if using.Type != tUsing {
		return nil, unexpected(using, "using")
	}
	j.appendSpace(using)

	for {
		pat := str.next()
		if pat.Type != tString {
			return nil, unexpected(pat, "start pattern string")
		}
		j.Patterns = append(j.Patterns, escapeString(pat.Text))
		j.appendSpace(pat)

		t := str.next()
		if t.Type != tComma {
			str.pushBack(t)
			break
		}
		j.appendSpace(t)
	}

	if _, err := p.parseRequiredEol(str); err != nil {
		return nil, err
	}
	return j, nil
}
