package store

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type fileRow struct {
	Collection Collection      `json:"collection"`
	ID         string          `json:"id"`
	Value      json.RawMessage `json:"value"`
}

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []fileRow
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			if row.ID == "" || row.Collection == "" {
				continue
			}
			coll := s.byColl[row.Collection]
			if coll == nil {
				coll = map[string]json.RawMessage{}
				s.byColl[row.Collection] = coll
			}
			coll[row.ID] = row.Value
		}
	})
}

func (s *Store) saveFile() {
	s.mu.RLock()
	rows := make([]fileRow, 0, 16)
	for coll, byID := range s.byColl {
		for id, value := range byID {
			rows = append(rows, fileRow{Collection: coll, ID: id, Value: value})
		}
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) createFile(coll Collection, id string, raw json.RawMessage) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	byID := s.byColl[coll]
	if byID == nil {
		byID = map[string]json.RawMessage{}
		s.byColl[coll] = byID
	}
	byID[id] = raw
	s.mu.Unlock()
	s.saveFile()
	return nil
}

func (s *Store) getFile(coll Collection, id string) (json.RawMessage, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	raw, ok := s.byColl[coll][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (s *Store) deleteFile(coll Collection, id string) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	delete(s.byColl[coll], id)
	s.mu.Unlock()
	s.saveFile()
	return nil
}

func (s *Store) snapshotFile(coll Collection) ([]Record, error) {
	s.ensureLoadedFile()
	s.mu.RLock()
	byID := s.byColl[coll]
	recs := make([]Record, 0, len(byID))
	for id, value := range byID {
		recs = append(recs, Record{ID: id, Value: value})
	}
	s.mu.RUnlock()
	return sortRecords(recs), nil
}
