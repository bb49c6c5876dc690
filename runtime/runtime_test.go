package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/hashicorp/go-hclog"
	"github.com/mike-wendt/liblognorm/pkg/annotate"
	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/plugin/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func readJSONLines(t *testing.T, path string) []entries.LogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []entries.LogEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e entries.LogEntry
		if err := dec.Decode(&e); err != nil {
			break
		}
		out = append(out, e)
	}
	return out
}

func TestFanoutMerge(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestFanoutMerge-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(dir) }()

	input := writeFile(t, dir, "data.txt", "one\ntwo\nthree\nfour\n")
	output := filepath.Join(dir, "output.json")

	r := NewRuntime(hclog.Default(), nil, file.Plugin())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer func() { _ = r.Stop() }()

	err = r.ExecuteString(`
source src as file.File "` + input + `"
fanout src as a and b
merge a and b as combined
sink combined to file.File "` + output + `"
`)
	assert.NoError(t, err)

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.True(t, len(data) > 0, "Data length should be greater than 0")
}

func TestRulebaseNormalize(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestRulebaseNormalize-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(dir) }()

	writeFile(t, dir, "login.samples", "rule=login from %ip:ipv4%|tags=auth,login\n")
	manifest := writeFile(t, dir, "rules.yaml", "samples:\n  - login.samples\n")
	input := writeFile(t, dir, "raw.log", "login from 10.0.0.1\nlogin from 10.0.0.2\n")
	output := filepath.Join(dir, "output.json")

	reg := annotate.NewTagRegistry()
	reg.Register("auth", entries.LogEntry{"category": "authentication"})

	r := NewRuntime(hclog.Default(), reg, file.Plugin())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer func() { _ = r.Stop() }()

	err = r.ExecuteString(`
source raw as file.File "` + input + `"
rulebase logins from "` + manifest + `"
normalize raw using logins as parsed
sink parsed to file.File "` + output + `"
`)
	require.NoError(t, err)

	results := readJSONLines(t, output)
	require.Len(t, results, 2)
	assert.Equal(t, "10.0.0.1", results[0]["ip"])
	meta, ok := results[0][annotate.MetaField].(map[string]any)
	require.True(t, ok, "expected event.meta to be present")
	authMeta, ok := meta["auth"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "authentication", authMeta["category"])
}

func TestJoin(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestJoin-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(dir) }()

	input := writeFile(t, dir, "data.txt",
		"2024-01-01 error starting up\n  caused by: disk full\n  caused by: out of space\n2024-01-01 next event\n")
	output := filepath.Join(dir, "output.json")

	r := NewRuntime(hclog.Default(), nil, file.Plugin())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer func() { _ = r.Stop() }()

	err = r.ExecuteString(`
source src as file.File "` + input + `"
join src as joined using "^\d{4}-\d{2}-\d{2}"
sink joined to file.File "` + output + `"
`)
	require.NoError(t, err)

	results := readJSONLines(t, output)
	require.Len(t, results, 2)
	assert.Equal(t, "2024-01-01 error starting up\n  caused by: disk full\n  caused by: out of space", results[0][entries.StandardMessageField])
	assert.Equal(t, "2024-01-01 next event", results[1][entries.StandardMessageField])
}
