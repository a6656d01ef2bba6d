package waitlist

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/akeren/go-waitlist/internal/models"
	apperrors "github.com/akeren/go-waitlist/pkg/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresMock(t *testing.T) (WaitlistRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewWaitlistRepository(db), mock
}

func TestWaitlistRepositoryPostgres(t *testing.T) {
	entry := models.WaitlistEntry{Email: "a@x.io", FirstName: "A", LastName: "B", Notes: "n"}

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		run     func(repo WaitlistRepository) (any, error)
		want    any
		wantErr string
	}{
		{
			name: "list all orders by last name",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"email", "first_name", "last_name", "notes"}).
					AddRow("z@x.io", "Zed", "Zulu", "").
					AddRow("a@x.io", "Ann", "Alpha", "")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "waitlist_entries" ORDER BY last_name DESC, email ASC`)).
					WillReturnRows(rows)
			},
			run: func(repo WaitlistRepository) (any, error) {
				entries, err := repo.ListAll(context.Background())
				if err != nil {
					return nil, err
				}
				emails := []string{}
				for _, e := range entries {
					emails = append(emails, e.Email)
				}
				return emails, nil
			},
			want: []string{"z@x.io", "a@x.io"},
		},
		{
			name: "list all connection failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT \* FROM "waitlist_entries"`).
					WillReturnError(errors.New("connection refused"))
			},
			run: func(repo WaitlistRepository) (any, error) {
				return repo.ListAll(context.Background())
			},
			wantErr: apperrors.ErrorTypeDatabaseError,
		},
		{
			name: "insert writes one row",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "waitlist_entries"`)).
					WithArgs(entry.Email, entry.FirstName, entry.LastName, entry.Notes).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(repo WaitlistRepository) (any, error) {
				e := entry
				return repo.Insert(context.Background(), &e)
			},
			want: int64(1),
		},
		{
			name: "insert unique violation is conflict",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "waitlist_entries"`)).
					WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "waitlist_entries_pkey"`})
				mock.ExpectRollback()
			},
			run: func(repo WaitlistRepository) (any, error) {
				e := entry
				return repo.Insert(context.Background(), &e)
			},
			wantErr: apperrors.ErrorTypeConflict,
		},
		{
			name: "insert other failure is database error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "waitlist_entries"`)).
					WillReturnError(&pq.Error{Code: "53300", Message: "too many connections for role"})
				mock.ExpectRollback()
			},
			run: func(repo WaitlistRepository) (any, error) {
				e := entry
				return repo.Insert(context.Background(), &e)
			},
			wantErr: apperrors.ErrorTypeDatabaseError,
		},
		{
			name: "delete by email reports rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "waitlist_entries" WHERE email = $1`)).
					WithArgs("a@x.io").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(repo WaitlistRepository) (any, error) {
				return repo.DeleteByEmail(context.Background(), "a@x.io")
			},
			want: int64(1),
		},
		{
			name: "delete missing email is not an error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "waitlist_entries" WHERE email = $1`)).
					WithArgs("nobody@x.io").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			run: func(repo WaitlistRepository) (any, error) {
				return repo.DeleteByEmail(context.Background(), "nobody@x.io")
			},
			want: int64(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newPostgresMock(t)
			tt.setup(mock)

			got, err := tt.run(repo)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apperrors.GetErrorType(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
