package iterator

import (
	"errors"

	"github.com/mike-wendt/liblognorm/pkg/entries"
)

// Func adapts a plain function into an Iterator, the shape most of the
// combinators in this package are built from.
type Func func() (entries.LogEntry, int, error)

func (f Func) Next() (entries.LogEntry, int, error) {
	return f()
}

func (f Func) Iterate(iter func(entry entries.LogEntry, i int) error) error {
	for {
		entry, i, err := f()
		if err != nil {
			if IsEnd(err) {
				return nil
			}
			return err
		}
		if err := iter(entry, i); err != nil {
			return err
		}
	}
}

// End returns the sentinel Next result signaling a clean end of stream.
func End() (entries.LogEntry, int, error) {
	return nil, -1, ErrStopIteration
}

// Err returns the sentinel Next result forwarding a non-EOF error.
func Err(err error) (entries.LogEntry, int, error) {
	return nil, -1, err
}

// IsEnd reports whether err is (or wraps) ErrStopIteration.
func IsEnd(err error) bool {
	return errors.Is(err, ErrStopIteration)
}
