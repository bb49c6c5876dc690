package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/mike-wendt/liblognorm/pkg/entries"
	"github.com/mike-wendt/liblognorm/pkg/iterator"
	_ "modernc.org/sqlite"
	"regexp"
	"strings"
	"time"
)

// SqliteStore is a store for LogEntries using Sqlite3 as a storage engine.
type SqliteStore struct {
	db  *sql.DB
	log hclog.Logger
}

func NewStore(log hclog.Logger, filename string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	log = log.Named("sqlite-entry-store")
	return &SqliteStore{
		db:  db,
		log: log,
	}, nil
}

func (s *SqliteStore) QueryEntries(table string) (iterator.Iterator, error) {
	return s.CtxQueryEntries(context.Background(), table)
}

func (s *SqliteStore) CtxQueryEntries(ctx context.Context, table string) (iterator.Iterator, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	rows, err := s.db.QueryContext(ctx, "select * from "+table)
	if err != nil {
		return nil, err
	}
	return newQueryIterator(s.log, rows)
}

func (s *SqliteStore) Sink(iter iterator.Iterator, table string) error {
	return s.SinkCtx(context.Background(), iter, table)
}

// CtxSink is an alias for SinkCtx, kept for callers that prefer the
// Ctx-prefixed naming convention used elsewhere in this codebase (plugin/file's CtxSource, CtxTailSource).
func (s *SqliteStore) CtxSink(ctx context.Context, iter iterator.Iterator, table string) error {
	return s.SinkCtx(ctx, iter, table)
}

var (
	tablePattern = regexp.MustCompile(`^[\w\d]+(\.[\w\d]+)?$`)
	ErrBadTable  = errors.New("invalid table name")
)

func (s *SqliteStore) SinkCtx(ctx context.Context, iter iterator.Iterator, table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	s.log.Debug("Establishing connection")
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("Ensuring the specified table is present")
	if err := s.ensureTable(ctx, conn, table); err != nil {
		iterator.Drain(iter)
		_ = conn.Close()
		return err
	}
	s.log.Debug("Getting table columns")
	cols, err := s.getTableColumns(ctx, conn, table)
	if err != nil {
		iterator.Drain(iter)
		_ = conn.Close()
		return err
	}
	colMap := map[string]bool{}
	for _, c := range cols {
		colMap[c] = true
	}

	s.log.Debug("Starting sink operation")
	s.sink(ctx, conn, table, iter, colMap)
	return nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

const createRulebaseHistory = `
create table if not exists rulebase_history (
	evt_id integer primary key,
	recorded_at text not null,
	digest text not null,
	samples text not null
)`

// RecordRulebase writes an audit record of a compiled rulebase: the
// sha256 digest of its concatenated sample files and the list of sample
// paths that produced it. It's never read back to decide whether to
// recompile; it's only a history of what has been loaded.
func (s *SqliteStore) RecordRulebase(ctx context.Context, samplePaths []string, contents [][]byte) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, createRulebaseHistory); err != nil {
		return err
	}

	h := sha256.New()
	for _, c := range contents {
		h.Write(c)
	}
	digest := hex.EncodeToString(h.Sum(nil))

	_, err = conn.ExecContext(ctx,
		"insert into rulebase_history (recorded_at, digest, samples) values (?, ?, ?)",
		time.Now().Format(time.RFC3339), digest, strings.Join(samplePaths, ","))
	return err
}

func (s *SqliteStore) ensureTable(ctx context.Context, conn *sql.Conn, table string) error {
	stmt, err := conn.PrepareContext(ctx, fmt.Sprintf(createTable, table))
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()

	_, err = stmt.ExecContext(ctx, table)
	if err != nil {
		return err
	}
	return nil
}

func (s *SqliteStore) getTableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "select * from "+table)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return rows.Columns()
}

func (s *SqliteStore) sink(ctx context.Context, conn *sql.Conn, table string, iter iterator.Iterator, colMap map[string]bool) {
	log := s.log.With("table", table).Named("sink")
	cancelled := false

	defer func() {
		_ = conn.Close()
		log.Debug("DB connection closed")
	}()

	go func() {
		<-ctx.Done()
		log.Debug("Context cancelled")
		cancelled = true
	}()

	err := iter.Iterate(func(entry entries.LogEntry, i int) error {
		log.Debug("Received log entry", "entry", entry)
		if cancelled {
			return iterator.ErrAtEnd
		}

		var intoFields []string
		for k := range entry {
			if !colMap[k] {
				log.Debug("New field discovered, adding to table", "field", k)
				err := s.addColumn(ctx, conn, table, k)
				if err != nil {
					log.Error("Failed to add field to table", "field", k, "error", err)
					return err
				}
				colMap[k] = true
			}
			intoFields = append(intoFields, k)
		}

		var intoStr strings.Builder
		var params strings.Builder
		for i, f := range intoFields {
			if i > 0 {
				intoStr.WriteString(",")
				params.WriteString(",")
			}
			intoStr.WriteString("\"" + f + "\"")
			params.WriteString("?")
		}
		query := fmt.Sprintf("insert into %s (%s) values (%s)", table, intoStr.String(), params.String())
		log.Debug("Inserting log entry into table", "query", query)
		stmt, err := conn.PrepareContext(ctx, query)
		if err != nil {
			log.Error("Failed to prepare statement", "error", err)
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		args := make([]any, len(intoFields))
		for i, f := range intoFields {
			str, ok := entry.AsString(f)
			if !ok {
				args[i] = ""
				log.Warn("Field not able to be coerced to string", "field", f)
				continue
			}
			args[i] = str
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			log.Error("Failed to insert into table", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("Error sinking to DB, draining iterator", "error", err)
		iterator.Drain(iter)
		return
	}
}

func (s *SqliteStore) addColumn(ctx context.Context, conn *sql.Conn, table string, colName string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf("alter table %s add column \"%s\" text null", table, colName))
	if err != nil {
		return err
	}
	return nil
}
