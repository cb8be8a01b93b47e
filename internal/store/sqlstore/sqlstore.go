// Package sqlstore backs the record store with a single documents table,
// served by sqlite (modernc) or postgres (pgx stdlib).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/cryptocross/cryptocross/internal/store"
)

type SQLStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE collection=$1 AND id=$2`, collection, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(doc), nil
}

func (s *SQLStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM records WHERE collection=$1 ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []json.RawMessage{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(doc))
	}
	return out, rows.Err()
}

func (s *SQLStore) Put(ctx context.Context, collection, id string, doc any) error {
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (collection,id,doc,updated_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (collection,id) DO UPDATE SET doc=EXCLUDED.doc, updated_at=EXCLUDED.updated_at`,
		collection, id, string(buf), time.Now().Unix())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
