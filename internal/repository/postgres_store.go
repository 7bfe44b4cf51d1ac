package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"rentease-service/internal/model"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// PostgresStore keeps every collection in one table with a JSONB payload.
type PostgresStore struct {
	DB *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

// EnsureSchema creates the documents table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("PostgresStore.EnsureSchema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, collection, id string, doc model.Document) (string, error) {
	if id == "" {
		id = newID()
	}
	data, err := json.Marshal(payload(doc, time.Now().UTC(), true))
	if err != nil {
		return "", fmt.Errorf("PostgresStore.Create: encode: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`, collection, id, string(data))
	if err != nil {
		return "", fmt.Errorf("PostgresStore.Create: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	var row documentRow
	err := s.DB.GetContext(ctx, &row, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.Get: %w", err)
	}
	return row.document()
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc model.Document) error {
	data, err := json.Marshal(payload(doc, time.Now().UTC(), false))
	if err != nil {
		return fmt.Errorf("PostgresStore.Set: encode: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("PostgresStore.Set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields model.Document) error {
	patch := payload(fields, time.Now().UTC(), false)
	patch["updatedAt"] = time.Now().UTC()
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("PostgresStore.Update: encode: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("PostgresStore.Update: %w", err)
	}
	return expectOneRow(res, "PostgresStore.Update")
}

func (s *PostgresStore) UpdateIf(ctx context.Context, collection, id, field, want string, fields model.Document) error {
	patch := payload(fields, time.Now().UTC(), false)
	patch["updatedAt"] = time.Now().UTC()
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("PostgresStore.UpdateIf: encode: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
		  AND COALESCE(data ->> $4::text, '') IN ($5, '')
	`, collection, id, string(data), field, want)
	if err != nil {
		return fmt.Errorf("PostgresStore.UpdateIf: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("PostgresStore.UpdateIf: rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("PostgresStore.Delete: %w", err)
	}
	return expectOneRow(res, "PostgresStore.Delete")
}

// FindByField matches the JSON encoding of value exactly, so "true" and
// true are different values.
func (s *PostgresStore) FindByField(ctx context.Context, collection, field string, value any) ([]model.Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.FindByField: encode: %w", err)
	}
	var rows []documentRow
	err = s.DB.SelectContext(ctx, &rows, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND data -> $2::text = $3::jsonb
		ORDER BY created_at DESC
	`, collection, field, string(want))
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.FindByField: %w", err)
	}
	return documents(rows)
}

func (s *PostgresStore) FindAll(ctx context.Context, collection string) ([]model.Document, error) {
	var rows []documentRow
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY created_at DESC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.FindAll: %w", err)
	}
	return documents(rows)
}

func (s *PostgresStore) FindByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]model.Document, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(all, field, start, end), nil
}

func (r documentRow) document() (model.Document, error) {
	doc := model.Document{}
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	doc["id"] = r.ID
	return doc, nil
}

func documents(rows []documentRow) ([]model.Document, error) {
	out := make([]model.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := r.document()
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ DocumentStore = (*PostgresStore)(nil)
