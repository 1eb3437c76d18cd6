package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

func (s *Store) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS launchpad_records (
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  value JSONB NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_launchpad_records_collection ON launchpad_records (collection);
`)
	})
	return s.schemaErr
}

func (s *Store) createDB(ctx context.Context, coll Collection, id string, raw json.RawMessage) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO launchpad_records (collection, id, value) VALUES ($1, $2, $3)`,
		string(coll), id, []byte(raw))
	return err
}

func (s *Store) getDB(ctx context.Context, coll Collection, id string) (json.RawMessage, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM launchpad_records WHERE collection = $1 AND id = $2`,
		string(coll), id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *Store) deleteDB(ctx context.Context, coll Collection, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM launchpad_records WHERE collection = $1 AND id = $2`,
		string(coll), id)
	return err
}

func (s *Store) snapshotDB(ctx context.Context, coll Collection) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, value FROM launchpad_records WHERE collection = $1 ORDER BY id`,
		string(coll))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		var value []byte
		if err := rows.Scan(&rec.ID, &value); err != nil {
			return nil, err
		}
		rec.Value = json.RawMessage(value)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
