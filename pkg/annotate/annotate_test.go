package annotate

import (
	"testing"

	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/stretchr/testify/assert"
)

func TestTagRegistry_Annotate(t *testing.T) {
	reg := NewTagRegistry()
	reg.Register("auth", entries.LogEntry{"severity": "high"})
	reg.Register("ssh", entries.LogEntry{"service": "sshd"})

	result := entries.LogEntry{}
	reg.Annotate([]any{"auth", "ssh", "unregistered"}, result)

	meta, ok := result[MetaField].(entries.LogEntry)
	assert.True(t, ok)
	assert.Equal(t, entries.LogEntry{"severity": "high"}, meta["auth"])
	assert.Equal(t, entries.LogEntry{"service": "sshd"}, meta["ssh"])
	_, ok = meta["unregistered"]
	assert.False(t, ok)
}

func TestTagRegistry_Annotate_NoMatchingTags(t *testing.T) {
	reg := NewTagRegistry()
	result := entries.LogEntry{}
	reg.Annotate([]any{"auth"}, result)

	_, ok := result[MetaField]
	assert.False(t, ok, "no registered metadata means no field is attached")
}

func TestTagRegistry_AllDocs(t *testing.T) {
	reg := NewTagRegistry()
	assert.Equal(t, "None\n", reg.AllDocs())

	reg.Register("auth", entries.LogEntry{"severity": "high"})
	reg.Document("auth", "authentication-related events")
	reg.Document("net", "network events, no metadata registered")

	docs := reg.AllDocs()
	assert.Contains(t, docs, "authentication-related events")
	assert.Contains(t, docs, "network events, no metadata registered")
}
