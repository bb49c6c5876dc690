package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/pkg/iterator"
	"github.com/nxadm/tail"
)

const (
	readTimeField = "@read_timestamp"
	readLineField = "@read_line_number"
)

// Source reads filename once from the beginning and stops at EOF, using
// context.Background. Each line becomes a log entry with the raw text
// under entries.StandardMessageField, ready for pdag normalization.
func Source(filename string) (iterator.Iterator, error) {
	return CtxSource(context.Background(), filename)
}

// CtxSource behaves like Source but stops early if ctx is cancelled.
func CtxSource(ctx context.Context, filename string) (iterator.Iterator, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	ch := make(chan entries.LogEntry)
	go func() {
		defer close(ch)
		defer func() {
			_ = f.Close()
		}()
		scanner := bufio.NewScanner(f)
		var lineNum int
		for scanner.Scan() {
			lineNum++
			entry := rawLineEntry(scanner.Text(), time.Now(), lineNum)
			select {
			case <-ctx.Done():
				return
			case ch <- entry:
			}
		}
	}()
	return iterator.FromChannel(ch), nil
}

// TailSource behaves the same as CtxTailSource, except that it uses
// context.Background as the context.
func TailSource(filename string) (iterator.Iterator, error) {
	_, i, err := ctxTailSource(context.Background(), filename)
	return i, err
}

// CtxTailSource follows filename for new lines as they're appended,
// reopening it if it's rotated, until ctx is cancelled. Each line is
// emitted with its raw text under entries.StandardMessageField; it is
// never speculatively parsed as JSON, since the input to a pdag normalizer
// must be the untouched raw log line.
func CtxTailSource(ctx context.Context, filename string) (iterator.Iterator, error) {
	_, i, err := ctxTailSource(ctx, filename)
	return i, err
}

func ctxTailSource(ctx context.Context, filename string) (*tail.Tail, iterator.Iterator, error) {
	t, err := tail.TailFile(filename, tail.Config{
		ReOpen:    true,
		MustExist: true,
		Follow:    true,
	})
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan entries.LogEntry)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				ch <- rawLineEntry(l.Text, l.Time, l.Num)
			}
		}
	}()
	return t, iterator.FromChannel(ch), nil
}

func rawLineEntry(line string, readAt time.Time, lineNum int) entries.LogEntry {
	return entries.LogEntry{
		entries.StandardMessageField: line,
		readTimeField:                readAt.Format(time.RFC3339),
		readLineField:                lineNum,
	}
}

// Sink will append each entry in the entries.Iterator to the specified file, creating it if necessary.
// If Sink is called asynchronously, it's recommended to wait until it returns to close down the application.
// This can be done with CtxTailSource by cancelling the provided context and waiting on the goroutine calling Sink to exit.
// In case of an error, Sink will drain the entries.Iterator to prevent upstream blocking.
func Sink(iter iterator.Iterator, filename string, perms os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perms)
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	err = iter.Iterate(func(entry entries.LogEntry, _ int) error {
		data, err := json.Marshal(entry)
		if err != nil {
			// Shouldn't ever happen, given the data type.
			return err
		}
		_, err = f.Write(append(data, '\n'))
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	return nil
}
