package store

import (
	"context"
	"github.com/hashicorp/go-hclog"
	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/pkg/iterator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestSqliteStore_Sink(t *testing.T) {
	iter := iterator.FromSlice([]entries.LogEntry{
		{
			"A":           "A",
			"other-field": "value",
		},
		{
			"A": "A",
			"B": "B",
		},
		{
			"A": "A",
			"B": "B",
			"C": "C",
		},
	})
	log := hclog.Default()
	log.SetLevel(hclog.Debug)
	store, cleanup := _tempStore(t, log)
	defer cleanup()
	err := store.Sink(iter, "test")
	assert.NoError(t, err)
}

func TestSqliteStore_QueryEntries(t *testing.T) {
	iter := iterator.FromSlice([]entries.LogEntry{
		{"A": "A"},
		{"A": "B"},
	})
	log := hclog.Default()
	store, cleanup := _tempStore(t, log)
	defer cleanup()
	require.NoError(t, store.Sink(iter, "test"))

	queried, err := store.CtxQueryEntries(context.Background(), "test")
	require.NoError(t, err)
	var values []string
	require.NoError(t, queried.Iterate(func(entry entries.LogEntry, i int) error {
		s, ok := entry.AsString("A")
		assert.True(t, ok)
		values = append(values, s)
		return nil
	}))
	assert.Equal(t, []string{"A", "B"}, values)
}

func TestSqliteStore_RecordRulebase(t *testing.T) {
	log := hclog.Default()
	store, cleanup := _tempStore(t, log)
	defer cleanup()

	err := store.RecordRulebase(context.Background(),
		[]string{"login.samples", "types.samples"},
		[][]byte{[]byte("rule=a\n"), []byte("rule=b\n")})
	require.NoError(t, err)

	rows, err := store.CtxQueryEntries(context.Background(), "rulebase_history")
	require.NoError(t, err)
	count := 0
	require.NoError(t, rows.Iterate(func(entry entries.LogEntry, i int) error {
		count++
		digest, ok := entry.AsString("digest")
		assert.True(t, ok)
		assert.NotEmpty(t, digest)
		return nil
	}))
	assert.Equal(t, 1, count)
}

func _tempStore(t *testing.T, log hclog.Logger) (*SqliteStore, func()) {
	td, err := os.MkdirTemp("", "_tempStore-*")
	require.NoError(t, err)
	t.Log("Using temp store:", td)
	store, err := NewStore(log, filepath.Join(td, "store.db"))
	if err != nil {
		_ = os.RemoveAll(td)
		t.Fatal("Failed to create new store:", err)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			t.Error("Failed to close DB")
		} else {
			t.Log("SqliteStore closed")
		}
		if err := os.RemoveAll(td); err != nil {
			t.Error("Failed to remove temp dir:", err)
		} else {
			t.Log("Removed temp dir")
		}
	}
}
