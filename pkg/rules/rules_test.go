package rules

import (
	"io"
	"strings"
	"testing"

	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/pkg/pdag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, ctx *pdag.Context, input string) (entries.LogEntry, error) {
	t.Helper()
	return pdag.Normalize(ctx, input)
}

func TestScanSampleLine(t *testing.T) {
	tests := map[string]struct {
		pattern string
		want    []sampleToken
		wantErr bool
	}{
		"plain literal": {
			pattern: "hello world",
			want:    []sampleToken{{Type: sampleText, Text: "hello world"}},
		},
		"single placeholder": {
			pattern: "%ip:ipv4%",
			want:    []sampleToken{{Type: samplePlaceholder, Text: "ip:ipv4"}},
		},
		"literal and placeholder": {
			pattern: "login from %ip:ipv4%",
			want: []sampleToken{
				{Type: sampleText, Text: "login from "},
				{Type: samplePlaceholder, Text: "ip:ipv4"},
			},
		},
		"escaped percent": {
			pattern: `100\%done`,
			want:    []sampleToken{{Type: sampleText, Text: "100%done"}},
		},
		"unterminated placeholder": {
			pattern: "%ip:ipv4",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := scanSampleLine(tc.pattern)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePlaceholder(t *testing.T) {
	ph, err := parsePlaceholder("port:number")
	require.NoError(t, err)
	assert.Equal(t, placeholder{Name: "port", Parser: "number"}, ph)

	ph, err = parsePlaceholder("field:char-to:;")
	require.NoError(t, err)
	assert.Equal(t, placeholder{Name: "field", Parser: "char-to", Param: ";"}, ph)

	_, err = parsePlaceholder("onlyname")
	assert.Error(t, err)
}

func TestParamMap(t *testing.T) {
	assert.Nil(t, paramMap(""))
	assert.Equal(t, map[string]string{"sep": ","}, paramMap("sep=,"))
	assert.Nil(t, paramMap("justavalue"))
}

func TestParseRuleLine(t *testing.T) {
	rl, err := parseRuleLine("rule=login from %ip:ipv4%|tags=auth,ssh")
	require.NoError(t, err)
	assert.Equal(t, "login from %ip:ipv4%", rl.Pattern)
	assert.Equal(t, []string{"auth", "ssh"}, rl.Tags)
	assert.Empty(t, rl.TypeName)

	rl, err = parseRuleLine("type=ipport|rule=%ip:ipv4%:%port:number%")
	require.NoError(t, err)
	assert.Equal(t, "ipport", rl.TypeName)

	_, err = parseRuleLine("rule=no tags here|bogus=1")
	assert.Error(t, err)

	_, err = parseRuleLine("tags=onlytags")
	assert.Error(t, err)
}

type stringOpener map[string]string

func (s stringOpener) open(path string) (io.ReadCloser, error) {
	content, ok := s[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func TestCompile_AlternativeSamplesAndCustomType(t *testing.T) {
	files := stringOpener{
		"login.samples": "" +
			"rule=login from %ip:ipv4%|tags=auth\n" +
			"rule=login from %host:word%|tags=auth\n",
		"types.samples": "" +
			"type=ipport|rule=%ip:ipv4%:%port:number%\n",
		"connect.samples": "" +
			"rule=connect %addr:ipport%|tags=net\n",
	}
	manifest := &Manifest{Samples: []string{"login.samples", "types.samples", "connect.samples"}}

	ctx, err := Compile(manifest, files.open)
	require.NoError(t, err)

	result, err := normalize(t, ctx, "login from 10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", result["ip"])

	result, err = normalize(t, ctx, "login from server01")
	require.NoError(t, err)
	assert.Equal(t, "server01", result["host"])

	result, err = normalize(t, ctx, "connect 10.0.0.1:443")
	require.NoError(t, err)
	addr, ok := result["addr"].(entries.LogEntry)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", addr["ip"])
}

func TestCompile_UnknownParserName(t *testing.T) {
	files := stringOpener{
		"bad.samples": "rule=%x:not-a-real-parser%\n",
	}
	manifest := &Manifest{Samples: []string{"bad.samples"}}

	_, err := Compile(manifest, files.open)
	assert.Error(t, err)
}

func TestCompile_MissingFile(t *testing.T) {
	files := stringOpener{}
	manifest := &Manifest{Samples: []string{"missing.samples"}}

	_, err := Compile(manifest, files.open)
	assert.Error(t, err)
}
