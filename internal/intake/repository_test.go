package intake

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSubmitInsertsNewPhoneOnce(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, inn FROM requests").
		WithArgs("89991370010").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO requests").
		WithArgs("описание", "Олег", "89991370010", sql.NullString{}).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(5)))
	mock.ExpectCommit()

	sub, existing, err := repo.Submit(context.Background(), Submission{
		Description: "описание",
		Name:        "Олег",
		Phone:       "89991370010",
	})
	require.NoError(t, err)
	require.False(t, existing)
	require.EqualValues(t, 5, sub.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReusesExistingPhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, inn FROM requests").
		WithArgs("89991370011").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "inn"}).
			AddRow(int64(9), "7707083893"))
	mock.ExpectCommit()

	sub, existing, err := repo.Submit(context.Background(), Submission{
		Description: "новое описание",
		Name:        "Ирина",
		Phone:       "89991370011",
		TaxID:       sql.NullString{String: "1234567894", Valid: true},
	})
	require.NoError(t, err)
	require.True(t, existing)
	require.EqualValues(t, 9, sub.UserID)
	// Stored tax id wins over the freshly submitted one.
	require.Equal(t, "7707083893", sub.TaxID.String)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRetriesOnUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, inn FROM requests").
		WithArgs("89991370012").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO requests").
		WithArgs("описание", "Олег", "89991370012", sql.NullString{}).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	// Second attempt finds the row the concurrent submission created.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, inn FROM requests").
		WithArgs("89991370012").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "inn"}).
			AddRow(int64(12), nil))
	mock.ExpectCommit()

	sub, existing, err := repo.Submit(context.Background(), Submission{
		Description: "описание",
		Name:        "Олег",
		Phone:       "89991370012",
	})
	require.NoError(t, err)
	require.True(t, existing)
	require.EqualValues(t, 12, sub.UserID)
	require.False(t, sub.TaxID.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPropagatesLookupError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, inn FROM requests").
		WithArgs("89991370013").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, _, err := repo.Submit(context.Background(), Submission{Phone: "89991370013"})
	require.Error(t, err)
	require.ErrorIs(t, err, sql.ErrConnDone)
}
