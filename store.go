package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/kmeaw/huffkit/huffman"
)

var ErrNoTable = errors.New("no such table")
var ErrBadTableName = errors.New("bad table name")

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// TableStore keeps named code tables.
type TableStore interface {
	Save(ctx context.Context, name string, t *huffman.Table) error
	Load(ctx context.Context, name string) (*huffman.Table, error)
	Close() error
}

func checkTableName(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadTableName, name)
	}
	return nil
}

// OpenTableStore returns a PostgreSQL store when the config has a database
// URL and a file store under the config directory otherwise.
func OpenTableStore(ctx context.Context, cfg *Config) (TableStore, error) {
	if cfg.DatabaseURL != "" {
		return NewPgStore(ctx, cfg.DatabaseURL)
	}
	return NewFileStore(filepath.Join(cfg.Dir(), "tables"))
}

type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, t *huffman.Table) error {
	if err := checkTableName(name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.path(name), data, 0666)
}

func (s *FileStore) Load(ctx context.Context, name string) (*huffman.Table, error) {
	if err := checkTableName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path(name))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNoTable, name)
		}
		return nil, err
	}

	t := &huffman.Table{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("cannot load table %q: %w", name, err)
	}
	return t, nil
}

func (s *FileStore) Close() error {
	return nil
}

// PgStore keeps one row per table entry.
type PgStore struct {
	conn *pgx.Conn
	mu   sync.Mutex
}

const pgSchema = `create table if not exists code_tables (
	name text not null,
	position integer not null,
	prefix text not null,
	symbol text not null,
	primary key (name, position)
)`

func NewPgStore(ctx context.Context, url string) (*PgStore, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	if _, err := conn.Exec(ctx, pgSchema); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}

	return &PgStore{conn: conn}, nil
}

func (s *PgStore) Save(ctx context.Context, name string, t *huffman.Table) (err error) {
	if err := checkTableName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "delete from code_tables where name = $1", name); err != nil {
		return err
	}

	for i, p := range t.Pairs() {
		_, err = tx.Exec(
			ctx,
			"insert into code_tables(name, position, prefix, symbol) values ($1, $2, $3, $4)",
			name, i, p.Prefix, p.Symbol,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) Load(ctx context.Context, name string) (*huffman.Table, error) {
	if err := checkTableName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(ctx, "select prefix, symbol from code_tables where name = $1 order by position", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []huffman.Pair
	for rows.Next() {
		var p huffman.Pair
		if err := rows.Scan(&p.Prefix, &p.Symbol); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTable, name)
	}

	return huffman.NewTable(pairs)
}

func (s *PgStore) Close() error {
	return s.conn.Close(context.Background())
}

// vim: ai:ts=8:sw=8:noet:syntax=go
