package rules

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mike-wendt/liblognorm/pkg/pdag"
	"github.com/mike-wendt/liblognorm/pkg/pdag/fields"
)

// Compile reads every sample file named by manifest, in order, building a
// fresh pdag.Context from their rule lines, then runs the optimizer once.
// It is the one entry point the runtime needs to turn a rulebase manifest
// into a ready-to-normalize Context.
func Compile(manifest *Manifest, open func(path string) (io.ReadCloser, error)) (*pdag.Context, error) {
	ctx := pdag.NewContext()
	for _, path := range manifest.Files() {
		f, err := open(path)
		if err != nil {
			return nil, fmt.Errorf("rules: opening %s: %w", path, err)
		}
		err = compileFile(ctx, path, f)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, fmt.Errorf("rules: closing %s: %w", path, closeErr)
		}
	}
	pdag.Optimize(ctx)
	return ctx, nil
}

func compileFile(ctx *pdag.Context, path string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := compileLine(ctx, line); err != nil {
			return fmt.Errorf("rules: %s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func compileLine(ctx *pdag.Context, line string) error {
	rl, err := parseRuleLine(line)
	if err != nil {
		return err
	}

	root := ctx.Root
	if rl.TypeName != "" {
		ut := ctx.LookupType(rl.TypeName)
		if ut == nil {
			ut = ctx.DefineType(rl.TypeName)
		}
		root = ut.Root
	}

	tokens, err := scanSampleLine(rl.Pattern)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		switch tok.Type {
		case sampleText:
			for _, b := range []byte(tok.Text) {
				edge, err := pdag.NewLiteralEdge(b)
				if err != nil {
					return err
				}
				if err := pdag.AddParser(&root, edge); err != nil {
					return err
				}
			}
		case samplePlaceholder:
			ph, err := parsePlaceholder(tok.Text)
			if err != nil {
				return err
			}
			edge, err := newPlaceholderEdge(ctx, ph)
			if err != nil {
				return err
			}
			if err := pdag.AddParser(&root, edge); err != nil {
				return err
			}
		}
	}

	var tags []any
	for _, t := range rl.Tags {
		tags = append(tags, t)
	}
	pdag.SetTerminal(root, tags...)
	return nil
}

func newPlaceholderEdge(ctx *pdag.Context, ph placeholder) (*pdag.Edge, error) {
	if ut := ctx.LookupType(ph.Parser); ut != nil {
		return pdag.NewEdge(ph.Name, fields.CustomType, ut, "", nil)
	}
	prsid := fields.IDOf(ph.Parser)
	if prsid == fields.Invalid {
		return nil, fmt.Errorf("%w: %q", pdag.ErrInvalidParserName, ph.Parser)
	}
	return pdag.NewEdge(ph.Name, prsid, nil, ph.Param, paramMap(ph.Param))
}
