// Package store is the persistence boundary: a document store with
// push-append creates, idempotent deletes, and live collection snapshots.
// Backends: a JSON file (local) and Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Collection names the three persisted collections.
type Collection string

const (
	PinnedIdeas    Collection = "pinnedIdeas"
	SavedCampaigns Collection = "savedCampaigns"
	SavedImages    Collection = "savedImages"
)

var ErrNotFound = errors.New("store: record not found")

// Record is one stored document; the id is assigned on create and read
// back as the collection key.
type Record struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// Store dispatches to the Postgres backend when db is set, the JSON-file
// backend otherwise. Subscribers are process-local in both modes.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byColl   map[Collection]map[string]json.RawMessage

	schemaOnce sync.Once
	schemaErr  error

	snapCache *lru.Cache[Collection, []Record]

	subs *subscribers
}

func New(path string) *Store {
	return &Store{
		path:   path,
		byColl: map[Collection]map[string]json.RawMessage{},
		subs:   newSubscribers(),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[Collection, []Record](64)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:        db,
		snapCache: cache,
		subs:      newSubscribers(),
	}, nil
}

// NewFromEnv picks Postgres when a DSN is configured and reachable, the
// file store otherwise.
func NewFromEnv(dsn, path string) *Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.subs.closeAll()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create appends a value to a collection and returns the generated id.
func (s *Store) Create(ctx context.Context, coll Collection, value any) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("store: encode value: %w", err)
	}
	id := uuid.NewString()
	if s.db != nil {
		if err := s.createDB(ctx, coll, id, raw); err != nil {
			return "", err
		}
	} else if err := s.createFile(coll, id, raw); err != nil {
		return "", err
	}
	s.notify(ctx, coll)
	return id, nil
}

// Get decodes the record with the given id into out.
func (s *Store) Get(ctx context.Context, coll Collection, id string, out any) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	var raw json.RawMessage
	var err error
	if s.db != nil {
		raw, err = s.getDB(ctx, coll, id)
	} else {
		raw, err = s.getFile(coll, id)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Delete removes a record. Deleting an id that no longer exists is a no-op.
func (s *Store) Delete(ctx context.Context, coll Collection, id string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if s.db != nil {
		if err := s.deleteDB(ctx, coll, id); err != nil {
			return err
		}
	} else if err := s.deleteFile(coll, id); err != nil {
		return err
	}
	s.notify(ctx, coll)
	return nil
}

// Snapshot returns every record in a collection, ordered by id for a
// stable result. Postgres snapshots are served from the LRU cache until a
// write invalidates them.
func (s *Store) Snapshot(ctx context.Context, coll Collection) ([]Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if s.db != nil {
		if s.snapCache != nil {
			if cached, ok := s.snapCache.Get(coll); ok {
				return cached, nil
			}
		}
		recs, err := s.snapshotDB(ctx, coll)
		if err != nil {
			return nil, err
		}
		if s.snapCache != nil {
			s.snapCache.Add(coll, recs)
		}
		return recs, nil
	}
	return s.snapshotFile(coll)
}

// Subscribe delivers the current snapshot immediately and a fresh snapshot
// after every create/delete on the collection, until cancel is called or
// ctx ends. Slow consumers only ever see the latest snapshot.
func (s *Store) Subscribe(ctx context.Context, coll Collection) (<-chan []Record, func()) {
	ch, cancel := s.subs.add(ctx, coll)
	if snap, err := s.Snapshot(ctx, coll); err == nil {
		s.subs.deliver(ch, snap)
	}
	return ch.out, cancel
}

func (s *Store) notify(ctx context.Context, coll Collection) {
	if s.snapCache != nil {
		s.snapCache.Remove(coll)
	}
	snap, err := s.Snapshot(ctx, coll)
	if err != nil {
		return
	}
	s.subs.broadcast(coll, snap)
}

func sortRecords(recs []Record) []Record {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}
