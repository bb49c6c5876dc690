package script

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseString_Source(t *testing.T) {
	nodes, err := ParseString(`source someFile as file.File "somefile.log"`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	source, ok := nodes[0].(*Source)
	require.True(t, ok, "expected to parse a Source node")
	assert.Equal(t, "someFile", source.ID)
	assert.Equal(t, "file", source.Class.Qualifier)
	assert.Equal(t, "File", source.Class.SourceClass)
	require.Len(t, source.Args, 1)
	assert.Equal(t, "somefile.log", source.Args[0].String)
}

func TestParseString_Pipeline(t *testing.T) {
	text := `
source a as file.File "a.log"
source b as file.File "b.log"
merge a and b as ab
dupe ab as x and y
append x to y
fanout y as p and q
join p as joined using "^\d+", "^ERROR"
rulebase rb from "rules.yaml"
normalize joined using rb as parsed
sink q to file.File "q.out"
sink parsed async as job to file.File "parsed.out"
`
	nodes, err := ParseString(text)
	require.NoError(t, err)
	// The script text opens with a blank line, which parses as an Eol node.
	expectedTypes := []AstType{
		EOL, SOURCE, SOURCE, MERGE, DUPE, APPEND, FANOUT, JOIN, RULEBASE, NORMALIZE, SINK, ASYNC_SINK,
	}
	require.Len(t, nodes, len(expectedTypes))
	for i, typ := range expectedTypes {
		assert.Equal(t, typ, nodes[i].Type(), "node %d", i)
	}

	join, ok := nodes[7].(*Join)
	require.True(t, ok, "expected to parse a Join node")
	assert.Equal(t, "p", join.Source)
	assert.Equal(t, "joined", join.ID)
	assert.Equal(t, []string{`^\d+`, "^ERROR"}, join.Patterns)
}

func TestParseString_JoinUndefinedSource(t *testing.T) {
	_, err := ParseString(`join missing as joined using "^\d+"`)
	assert.ErrorIs(t, err, ErrUndefinedIdentifier)
}

func TestEscapeString(t *testing.T) {
	given := `" \t\r\n\abc\\n\r\t "`
	expected := " \t\r\n\\abc\\\n\r\t "
	assert.Equal(t, expected, escapeString(given))
}
