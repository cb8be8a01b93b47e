// Package filestore persists each collection as one JSON file on disk.
// Every mutation reads the whole file, applies the change in memory and
// writes the whole file back. Last writer wins; the mutex only serializes
// writers within this process.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cryptocross/cryptocross/internal/store"
)

type FileStore struct {
	mu   sync.Mutex
	base string
}

func New(base string) (*FileStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{base: base}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.base, filepath.Clean(collection)+".json")
}

func (s *FileStore) read(collection string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	docs := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *FileStore) write(collection string, docs map[string]json.RawMessage) error {
	buf, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(collection), buf, 0o644)
}

func (s *FileStore) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.read(collection)
	if err != nil {
		return nil, err
	}
	doc, ok := docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (s *FileStore) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.read(collection)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]json.RawMessage, 0, len(docs))
	for _, id := range ids {
		out = append(out, docs[id])
	}
	return out, nil
}

func (s *FileStore) Put(_ context.Context, collection, id string, doc any) error {
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.read(collection)
	if err != nil {
		return err
	}
	docs[id] = buf
	return s.write(collection, docs)
}

func (s *FileStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.read(collection)
	if err != nil {
		return err
	}
	if _, ok := docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(docs, id)
	return s.write(collection, docs)
}
