package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRepositoryGrant(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO useraccess ("user", room)`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO useraccess ("user", room)`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.Grant(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Grant(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryGrantUnknownRoom(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO useraccess`)).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.Grant(context.Background(), 5, 99)
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestAccessRepositoryRevoke(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM useraccess WHERE "user" = $1 AND room = $2`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Revoke(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryExistsAndListRooms(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM useraccess WHERE "user" = $1 AND room = $2)`)).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM useraccess ua JOIN room r ON r.id = ua.room`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "lab", "created", "building", "type"}).
			AddRow(2, "Lab 101", 1, time.Now(), 1, "lab"))

	ok, err := repo.Exists(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	rooms, err := repo.ListRooms(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Lab 101", rooms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
