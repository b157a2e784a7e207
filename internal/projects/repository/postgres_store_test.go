package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewPostgresStore(db), mock, db
}

func docJSON(t *testing.T, p domain.Project) []byte {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS project_documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT doc FROM project_documents WHERE id = \$1`).
			WithArgs("a").
			WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(docJSON(t, project("a", t0))))

		p, found, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "title a", p.Title)
		assert.True(t, p.UpdatedAt.Equal(t0))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT doc FROM project_documents WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"doc"}))

		_, found, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("connection failure is remote unavailable", func(t *testing.T) {
		mock.ExpectQuery(`SELECT doc FROM project_documents WHERE id = \$1`).
			WithArgs("a").
			WillReturnError(errors.New("dial tcp: connection refused"))

		_, _, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT doc FROM project_documents ORDER BY updated_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow(docJSON(t, project("b", t0))).
			AddRow(docJSON(t, project("a", t0))))

	out, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(out))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO project_documents`).
		WithArgs("a", sqlmock.AnyArg(), t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Put(ctx, "a", project("a", t0)))

	mock.ExpectExec(`INSERT INTO project_documents`).
		WillReturnError(errors.New("quota exceeded"))

	assert.ErrorIs(t, store.Put(ctx, "a", project("a", t0)), domain.ErrRemoteUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutUnencodable(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	p := project("a", t0)
	p.Data = map[string]any{"callback": func() {}}

	err := store.Put(context.Background(), "a", p)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM project_documents WHERE id = \$1`).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "a"))
	require.NoError(t, mock.ExpectationsWereMet())
}
