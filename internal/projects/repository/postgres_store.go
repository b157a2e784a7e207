package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// PostgresStore keeps project documents as JSONB rows in project_documents.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the document table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS project_documents (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure project_documents: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	const q = `SELECT doc FROM project_documents WHERE id = $1;`

	var raw []byte
	err := s.db.QueryRowContext(ctx, q, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, false, nil
	}
	if err != nil {
		return domain.Project{}, false, postgresErr("get", err)
	}

	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Project{}, false, postgresErr("decode", err)
	}
	return p, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT doc FROM project_documents ORDER BY updated_at DESC;`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, postgresErr("list", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, postgresErr("scan", err)
		}
		var p domain.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, postgresErr("decode", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgresErr("list", err)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, id string, p domain.Project) error {
	const q = `
INSERT INTO project_documents (id, doc, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
	doc = EXCLUDED.doc,
	updated_at = EXCLUDED.updated_at;
`
	p.ID = id
	doc, err := json.Marshal(p)
	if err != nil {
		return postgresErr("encode", err)
	}

	if _, err := s.db.ExecContext(ctx, q, id, doc, p.UpdatedAt); err != nil {
		return postgresErr("put", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM project_documents WHERE id = $1;`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return postgresErr("delete", err)
	}
	return nil
}

func postgresErr(op string, err error) error {
	return fmt.Errorf("%w: postgres %s: %w", domain.ErrRemoteUnavailable, op, err)
}
