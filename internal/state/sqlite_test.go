package state

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"), "failed to open store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()

	_, err := store.LoadRules("x")
	assert.ErrorIs(t, err, ErrNotOpened)
	assert.ErrorIs(t, store.SaveRules("x", nil), ErrNotOpened)
	assert.ErrorIs(t, store.Migrate(), ErrNotOpened)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Rules(t *testing.T) {
	tests := []struct {
		name  string
		saves [][]ColumnRule
		want  []ColumnRule
	}{
		{
			name: "single save keeps order",
			saves: [][]ColumnRule{{
				{Column: "b", Rule: "Int"},
				{Column: "a", Rule: "", Ignored: true},
			}},
			want: []ColumnRule{
				{Column: "b", Rule: "Int"},
				{Column: "a", Rule: "", Ignored: true},
			},
		},
		{
			name: "second save replaces",
			saves: [][]ColumnRule{
				{{Column: "a", Rule: "Int"}, {Column: "b", Rule: "Float"}},
				{{Column: "c", Rule: "String"}},
			},
			want: []ColumnRule{{Column: "c", Rule: "String"}},
		},
		{
			name:  "nothing saved",
			saves: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			for _, rules := range tt.saves {
				require.NoError(t, store.SaveRules("/data/sales.csv", rules))
			}

			got, err := store.LoadRules("/data/sales.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStore_SourcesAndDelete(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveRules("/a.csv", []ColumnRule{{Column: "x", Rule: "Int"}}))
	require.NoError(t, store.SaveRules("/b.csv", []ColumnRule{{Column: "y", Rule: "Int"}}))
	require.NoError(t, store.SaveRules("/a.csv", []ColumnRule{{Column: "x", Rule: "Float"}}))

	sources, err := store.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "/a.csv", sources[0].Path, "most recently updated first")
	assert.False(t, sources[0].CreatedAt.IsZero())

	_, err = store.RecordRun("/a.csv", 1, nil)
	require.NoError(t, err)

	require.NoError(t, store.DeleteRules("/a.csv"))
	rules, err := store.LoadRules("/a.csv")
	require.NoError(t, err)
	assert.Empty(t, rules)

	runs, err := store.Runs("/a.csv", 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "runs are deleted with their source")
}

func TestSQLiteStore_Runs(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.RecordRun("/a.csv", 3, nil)
	require.NoError(t, err)
	run, err := store.RecordRun("/a.csv", 3, []string{"amount", "price"})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Failed)

	runs, err := store.Runs("/a.csv", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, run.ID, runs[0].ID, "newest first")
	assert.Equal(t, "amount,price", runs[0].Errors)
	assert.Equal(t, "/a.csv", runs[0].Source)

	runs, err = store.Runs("/a.csv", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStore_SaveRulesErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		errMsg    string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(assert.AnError)
			},
			errMsg: "failed to begin transaction",
		},
		{
			name: "source upsert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO sources").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "failed to save source",
		},
		{
			name: "rule insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO sources").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("src-1"))
				mock.ExpectExec("DELETE FROM column_rules").
					WithArgs("src-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO column_rules").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: `failed to save rule for "a"`,
		},
		{
			name: "commit fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO sources").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("src-1"))
				mock.ExpectExec("DELETE FROM column_rules").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO column_rules").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(assert.AnError)
			},
			errMsg: "failed to commit rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			store := NewWithDB(db)
			err = store.SaveRules("/a.csv", []ColumnRule{{Column: "a", Rule: "Int"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.Is(err, assert.AnError))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_LoadRulesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT r.column_name").WithArgs("/a.csv").WillReturnError(assert.AnError)

	_, err = NewWithDB(db).LoadRules("/a.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load rules")
	assert.NoError(t, mock.ExpectationsWereMet())
}
