// Package annotate implements the external annotator collaborator: given
// the tags a normalize call attached to its winning terminal, it decorates
// the result tree with any static metadata registered for those tags.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mike-wendt/liblognorm/pkg/entries"
)

// MetaField is the reserved name metadata is attached under, namespaced by
// tag so that two tags contributing metadata on the same result never
// collide with each other.
const MetaField = "event.meta"

// Annotator decorates result with whatever static metadata its registry
// associates with tags. The runtime invokes it once per successful Normalize
// call whose result carries tags, after the core has already attached
// event.tags.
type Annotator interface {
	Annotate(tags []any, result entries.LogEntry)
}

// TagRegistry is the default Annotator: a map from tag name to a fixed
// metadata entry, built up with Register the same way
// plugin.Registration's qualifier/class maps are, plus a documentation
// side-table for AllDocs.
type TagRegistry struct {
	meta map[string]entries.LogEntry
	docs map[string]string
}

// NewTagRegistry returns an empty registry ready for Register calls.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		meta: map[string]entries.LogEntry{},
		docs: map[string]string{},
	}
}

// Register associates static metadata with tag. A later call for the same
// tag overwrites the earlier one.
func (r *TagRegistry) Register(tag string, meta entries.LogEntry) {
	r.meta[tag] = meta
}

// Document attaches human-readable documentation to tag, surfaced by
// AllDocs. It's independent of whether metadata is registered for tag.
func (r *TagRegistry) Document(tag, doc string) {
	r.docs[tag] = doc
}

// Annotate implements Annotator. For every tag in tags that has registered
// metadata, that metadata is attached under MetaField, keyed by tag name;
// a result matching two tags with metadata gets both, each under its own
// key. Non-string tags and unregistered tags are skipped.
func (r *TagRegistry) Annotate(tags []any, result entries.LogEntry) {
	var byTag entries.LogEntry
	for _, t := range tags {
		tag, ok := t.(string)
		if !ok {
			continue
		}
		meta, ok := r.meta[tag]
		if !ok {
			continue
		}
		if byTag == nil {
			byTag = entries.LogEntry{}
		}
		byTag[tag] = meta
	}
	if byTag != nil {
		result[MetaField] = byTag
	}
}

// AllDocs renders every registered tag's documentation, alphabetically by
// tag name, one entry per line with no header or indentation. A tag without
// documentation is listed as tag "name"; an empty registry yields "None\n".
func (r *TagRegistry) AllDocs() string {
	var buf strings.Builder
	var tags []string
	for tag := range r.meta {
		tags = append(tags, tag)
	}
	for tag := range r.docs {
		if _, ok := r.meta[tag]; !ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	if len(tags) == 0 {
		return "None\n"
	}
	for _, tag := range tags {
		doc, ok := r.docs[tag]
		if !ok {
			doc = fmt.Sprintf("tag %q", tag)
		}
		buf.WriteString(doc)
		buf.WriteString("\n")
	}
	return buf.String()
}
