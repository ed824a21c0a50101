// Package persist stores board templates and saved board resources in a
// SQLite database.
//
// [SQLite] implements [barboard.Persistence]. Writes are queued and applied by
// a single background goroutine so the store never blocks on disk. Failed
// writes are logged and dropped.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phanxgames/barboard"
)

// QueueSize is the number of pending writes buffered before PersistTemplate
// and friends start dropping.
const QueueSize = 256

// ErrClosed is returned by loads on a closed database.
var ErrClosed = errors.New("persist: database closed")

type opKind uint8

const (
	opPutTemplate opKind = iota
	opPutResource
	opDeleteResource
	opBarrier
)

type op struct {
	kind  opKind
	id    string
	order int
	data  []byte
	ack   chan struct{}
}

// SQLite mirrors templates and board resources into a SQLite file.
type SQLite struct {
	// Log receives write failures. Defaults to log.Default().
	Log *log.Logger

	db   *sql.DB
	ops  chan op
	done chan struct{}
	mu   sync.RWMutex
	shut bool
	once sync.Once
}

// Open creates dir if needed and opens (or creates) the database file in it.
func Open(dir, file string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create database directory: %w", err)
	}
	return OpenPath(filepath.Join(dir, file))
}

// OpenPath opens the database at path. ":memory:" is accepted.
func OpenPath(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between the
	// worker and loads.
	db.SetMaxOpenConns(1)
	s := &SQLite{
		db:   db,
		ops:  make(chan op, QueueSize),
		done: make(chan struct{}),
		Log:  log.Default(),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: initialize schema: %w", err)
	}
	go s.run()
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS board_resources (
			id TEXT PRIMARY KEY,
			sort_order INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL
		);
	`)
	return err
}

// PersistTemplate queues an upsert of t. Built-in templates are skipped.
func (s *SQLite) PersistTemplate(t barboard.Template) {
	if t.BuiltIn {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		s.Log.Printf("persist: encode template %s: %v", t.ID, err)
		return
	}
	s.enqueue(op{kind: opPutTemplate, id: t.ID, data: data})
}

// PersistBoardResource queues an upsert of r.
func (s *SQLite) PersistBoardResource(r barboard.BoardResource) {
	data, err := json.Marshal(r)
	if err != nil {
		s.Log.Printf("persist: encode resource %s: %v", r.ID, err)
		return
	}
	s.enqueue(op{kind: opPutResource, id: r.ID, order: r.Order, data: data})
}

// RemoveBoardResource queues a delete of the resource with the given id.
func (s *SQLite) RemoveBoardResource(id string) {
	s.enqueue(op{kind: opDeleteResource, id: id})
}

func (s *SQLite) enqueue(o op) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shut {
		s.Log.Printf("persist: dropped write for %s: database closed", o.id)
		return
	}
	select {
	case s.ops <- o:
	default:
		s.Log.Printf("persist: queue full, dropped write for %s", o.id)
	}
}

func (s *SQLite) run() {
	defer close(s.done)
	for o := range s.ops {
		if err := s.apply(o); err != nil {
			s.Log.Printf("persist: %v", err)
		}
	}
}

func (s *SQLite) apply(o op) error {
	var err error
	switch o.kind {
	case opPutTemplate:
		_, err = s.db.Exec(`INSERT INTO templates (id, data) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data`, o.id, string(o.data))
		if err != nil {
			return fmt.Errorf("save template %s: %w", o.id, err)
		}
	case opPutResource:
		_, err = s.db.Exec(`INSERT INTO board_resources (id, sort_order, data) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET sort_order = excluded.sort_order, data = excluded.data`,
			o.id, o.order, string(o.data))
		if err != nil {
			return fmt.Errorf("save resource %s: %w", o.id, err)
		}
	case opDeleteResource:
		if _, err = s.db.Exec(`DELETE FROM board_resources WHERE id = ?`, o.id); err != nil {
			return fmt.Errorf("delete resource %s: %w", o.id, err)
		}
	case opBarrier:
		close(o.ack)
	}
	return nil
}

// Flush blocks until every write queued before the call has been applied.
func (s *SQLite) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	s.mu.RLock()
	if s.shut {
		s.mu.RUnlock()
		return ErrClosed
	}
	select {
	case s.ops <- op{kind: opBarrier, ack: ack}:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadTemplates returns every stored user template.
func (s *SQLite) LoadTemplates(ctx context.Context) ([]barboard.Template, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("persist: query templates: %w", err)
	}
	defer rows.Close()

	var out []barboard.Template
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("persist: scan template: %w", err)
		}
		var t barboard.Template
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			s.Log.Printf("persist: skipping template %s: %v", id, err)
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: read templates: %w", err)
	}
	return out, nil
}

// LoadResources returns every stored board resource in library order.
func (s *SQLite) LoadResources(ctx context.Context) ([]barboard.BoardResource, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM board_resources ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("persist: query resources: %w", err)
	}
	defer rows.Close()

	var out []barboard.BoardResource
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("persist: scan resource: %w", err)
		}
		var r barboard.BoardResource
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			s.Log.Printf("persist: skipping resource %s: %v", id, err)
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: read resources: %w", err)
	}
	return out, nil
}

// Hydrate loads stored templates and resources into store and installs s as
// its persistence adapter.
func (s *SQLite) Hydrate(ctx context.Context, store *barboard.Store) error {
	ts, err := s.LoadTemplates(ctx)
	if err != nil {
		return err
	}
	rs, err := s.LoadResources(ctx)
	if err != nil {
		return err
	}
	store.LoadTemplates(ts)
	store.LoadResources(rs)
	store.SetPersistence(s)
	return nil
}

func (s *SQLite) closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shut
}

// Close applies every queued write, then closes the database. Later writes
// are dropped.
func (s *SQLite) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.shut = true
		close(s.ops)
		s.mu.Unlock()
		<-s.done
		err = s.db.Close()
	})
	return err
}
