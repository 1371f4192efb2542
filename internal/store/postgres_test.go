package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

func TestPostgresStore_Get_Found(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	payload := []byte(`{"lines":[]}`)
	query := regexp.QuoteMeta(`SELECT value FROM client_state.documents WHERE key = $1;`)
	mock.ExpectQuery(query).
		WithArgs(KeyCart).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(payload))

	value, err := store.Get(context.Background(), KeyCart)

	require.NoError(t, err)
	assert.Equal(t, payload, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_AbsentKeyReturnsNil(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT value FROM client_state.documents WHERE key = $1;`)
	mock.ExpectQuery(query).
		WithArgs(KeyWishlist).
		WillReturnError(sql.ErrNoRows)

	value, err := store.Get(context.Background(), KeyWishlist)

	require.NoError(t, err, "Absent key is not an error")
	assert.Nil(t, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_QueryFailureWrapsPersistenceError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT value FROM client_state.documents WHERE key = $1;`)
	mock.ExpectQuery(query).
		WithArgs(KeyCart).
		WillReturnError(errors.New("connection reset"))

	value, err := store.Get(context.Background(), KeyCart)

	require.Error(t, err)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr), "Error should be a *PersistenceError")
	assert.Equal(t, "get", perr.Op)
	assert.Equal(t, KeyCart, perr.Key)
	assert.Nil(t, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set_Upserts(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	payload := []byte(`{"items":[]}`)
	query := regexp.QuoteMeta(`
		INSERT INTO client_state.documents (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP;
	`)
	mock.ExpectExec(query).
		WithArgs(KeyWishlist, payload).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), KeyWishlist, payload)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set_FailureWrapsPersistenceError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`
		INSERT INTO client_state.documents (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP;
	`)
	mock.ExpectExec(query).
		WithArgs(KeyProfile, []byte(`{}`)).
		WillReturnError(errors.New("disk full"))

	err := store.Set(context.Background(), KeyProfile, []byte(`{}`))

	require.Error(t, err)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "set", perr.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Remove_AbsentKeyIsNoError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`DELETE FROM client_state.documents WHERE key = $1;`)
	mock.ExpectExec(query).
		WithArgs(KeyRecentSearches).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Remove(context.Background(), KeyRecentSearches)

	require.NoError(t, err, "Removing an absent key must stay idempotent")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_RoundTripAndRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value, err := s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Nil(t, value, "Absent key should read as nil")

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`{"lines":[]}`)))
	value, err = s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"lines":[]}`), value)

	// Mutating the returned slice must not corrupt the stored copy.
	value[0] = 'X'
	again, err := s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"lines":[]}`), again)

	require.NoError(t, s.Remove(ctx, KeyCart))
	value, err = s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Nil(t, value)
}
