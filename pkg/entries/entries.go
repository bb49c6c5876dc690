package entries

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

const (
	StandardMessageField   = "@message"
	StandardTimestampField = "@timestamp"
	StandardLevelField     = "@level"
	StandardModuleField    = "@module"
	StandardCallerField    = "@caller"

	// TagsField is the reserved field under which a normalizer attaches the
	// tags of the terminal pdag node that matched a message.
	TagsField = "event.tags"
	// OriginalMessageField and UnparsedDataField are the reserved fields a
	// normalizer attaches on total match failure.
	OriginalMessageField = "originalmsg"
	UnparsedDataField    = "unparsed-data"
)

// LogEntry is a single entry in a log, with potentially many fields. It
// doubles as the result-tree representation a normalizer folds extracted
// field values into: a hierarchical map from field names to strings,
// numbers, nested maps, or slices.
type LogEntry map[string]any

// Merge copies every key of other into e, last write wins. This is the
// "." (merge-as-object) field-assembly rule: a parser whose extracted value
// is itself a map gets folded into the enclosing entry key by key instead
// of being attached under a single field name.
func (e LogEntry) Merge(other LogEntry) LogEntry {
	for k, v := range other {
		e[k] = v
	}
	return e
}

// SetTags attaches tags under the reserved TagsField, as done for the
// terminal node that won a successful match.
func (e LogEntry) SetTags(tags []any) LogEntry {
	if len(tags) == 0 {
		return e
	}
	e[TagsField] = tags
	return e
}

// Tags returns the tags previously attached by SetTags, if any.
func (e LogEntry) Tags() ([]any, bool) {
	v, ok := e[TagsField]
	if !ok {
		return nil, false
	}
	tags, ok := v.([]any)
	return tags, ok
}

// SetUnparsed attaches the reserved originalmsg/unparsed-data fields
// recording a failed match: the full input, and the suffix starting at the
// furthest offset any parser reached.
func (e LogEntry) SetUnparsed(original, unparsed string) LogEntry {
	e[OriginalMessageField] = original
	e[UnparsedDataField] = unparsed
	return e
}

func (e LogEntry) HasField(name string) bool {
	_, ok := e[name]
	return ok
}

func (e LogEntry) AsFloat(name string) (float64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	if f, ok := e[name].(float64); ok {
		return f, true
	}
	if s, ok := e[name].(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	v := reflect.ValueOf(e[name])
	if v.CanFloat() {
		switch v.Kind() {
		case reflect.Float64:
			return e[name].(float64), true
		case reflect.Float32:
			return float64(e[name].(float32)), true
		}
	}
	return 0, false
}

func (e LogEntry) AsInt(name string) (int64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	if i, ok := e[name].(int64); ok {
		return i, true
	}
	if s, ok := e[name].(string); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	v := reflect.ValueOf(e[name])
	if v.CanInt() {
		switch v.Kind() {
		case reflect.Int64:
			return e[name].(int64), true
		case reflect.Int32:
			return int64(e[name].(int32)), true
		case reflect.Int:
			return int64(e[name].(int)), true
		}
	}
	return 0, false
}

func (e LogEntry) AsUint(name string) (uint64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	if i, ok := e[name].(uint64); ok {
		return i, true
	}
	if s, ok := e[name].(string); ok {
		i, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	v := reflect.ValueOf(e[name])
	if v.CanUint() {
		switch v.Kind() {
		case reflect.Uint64:
			return e[name].(uint64), true
		case reflect.Uint32:
			return uint64(e[name].(uint32)), true
		case reflect.Uint:
			return uint64(e[name].(uint)), true
		}
	}
	return 0, false
}

func (e LogEntry) AsString(name string) (string, bool) {
	if !e.HasField(name) {
		return "", false
	}
	if s, ok := e[name].(string); ok {
		return s, true
	}
	if s, ok := e[name].(interface{ String() string }); ok {
		return s.String(), true
	}
	if err, ok := e[name].(error); ok {
		return err.Error(), true
	}
	return fmt.Sprintf("%v", e[name]), true
}

func (e LogEntry) AsTime(name string, format ...string) (time.Time, bool) {
	var none time.Time
	if !e.HasField(name) {
		return none, false
	}
	if t, ok := e[name].(time.Time); ok {
		return t.UTC(), true
	}
	if s, ok := e.AsString(name); ok {
		if len(format) > 0 {
			for _, f := range format {
				t, err := time.Parse(f, s)
				if err == nil {
					return t.UTC(), true
				}
			}
		} else {
			t, err := time.Parse(time.RFC3339, s)
			if err == nil {
				return t.UTC(), true
			}
		}
	}
	return none, false
}

func (e LogEntry) Format(format string, fields ...string) string {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = e[f]
	}
	return fmt.Sprintf(format, args...)
}

func FromString(msg string) LogEntry {
	entry := LogEntry{}
	if err := json.Unmarshal([]byte(msg), &entry); err != nil {
		entry[StandardMessageField] = msg
	}
	return entry
}
