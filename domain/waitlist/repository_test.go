package waitlist

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/akeren/go-waitlist/internal/models"
	schema "github.com/akeren/go-waitlist/migrations"
	apperrors "github.com/akeren/go-waitlist/pkg/errors"
	"github.com/akeren/go-waitlist/pkg/migrations"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "waitlist.db")

	migrationDB, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(context.Background(), migrationDB, migrations.Config{
		Dialect: migrations.DialectSQLite,
		FS:      schema.FS,
	}))

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestWaitlistRepository_InsertThenListAll(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))
	ctx := context.Background()

	entry := &models.WaitlistEntry{Email: "a@x.io", FirstName: "A", LastName: "B", Notes: "n"}
	rows, err := repo.Insert(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, *entry, entries[0])
}

func TestWaitlistRepository_ListAllEmpty(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))

	entries, err := repo.ListAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestWaitlistRepository_ListAllOrdersByLastNameDescending(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))
	ctx := context.Background()

	for _, e := range []models.WaitlistEntry{
		{Email: "alpha@x.io", LastName: "Alpha"},
		{Email: "zulu@x.io", LastName: "Zulu"},
		{Email: "mno@x.io", LastName: "Mno"},
	} {
		e := e
		_, err := repo.Insert(ctx, &e)
		require.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)

	lastNames := make([]string, 0, len(entries))
	for _, e := range entries {
		lastNames = append(lastNames, e.LastName)
	}
	assert.Equal(t, []string{"Zulu", "Mno", "Alpha"}, lastNames)
}

func TestWaitlistRepository_DeleteByEmailIsIdempotent(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &models.WaitlistEntry{Email: "a@x.io", LastName: "B"})
	require.NoError(t, err)

	rows, err := repo.DeleteByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Zero(t, rows)

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWaitlistRepository_DeleteMissingLeavesTableUnchanged(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &models.WaitlistEntry{Email: "keep@x.io", LastName: "Keep"})
	require.NoError(t, err)

	rows, err := repo.DeleteByEmail(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.Zero(t, rows)

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWaitlistRepository_DuplicateEmailIsConflict(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &models.WaitlistEntry{Email: "dup@x.io", FirstName: "First"})
	require.NoError(t, err)

	rows, err := repo.Insert(ctx, &models.WaitlistEntry{Email: "dup@x.io", FirstName: "Second"})
	require.Error(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "First", entries[0].FirstName)
}

func TestWaitlistRepository_ClosedDatabaseIsDatabaseError(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewWaitlistRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.ListAll(context.Background())
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))

	_, err = repo.Insert(context.Background(), &models.WaitlistEntry{Email: "a@x.io"})
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))

	_, err = repo.DeleteByEmail(context.Background(), "a@x.io")
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
}

func TestWaitlistRepository_InsertNil(t *testing.T) {
	repo := NewWaitlistRepository(newSQLiteDB(t))

	_, err := repo.Insert(context.Background(), nil)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}
