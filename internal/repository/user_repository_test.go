package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

func newUserMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestUserRepositoryListStudents(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "card_id", "active", "created", "has_access"}).
		AddRow(1, "Anna", "anna@example.com", "+7", "CARD1", true, time.Now(), true).
		AddRow(2, "Boris", "boris@example.com", "+7", "CARD2", true, time.Now(), false)
	mock.ExpectQuery(regexp.QuoteMeta(`EXISTS (SELECT 1 FROM useraccess ua WHERE ua."user" = u.id) AS has_access
        FROM "user" u WHERE u.user_type = $1 ORDER BY u.id`)).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	students, err := repo.ListStudents(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.True(t, students[0].HasAccess)
	assert.False(t, students[1].HasAccess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindStudentByCardMissing(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`u.card_id = $2`)).
		WithArgs(int64(3), "NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindStudentByCard(context.Background(), 3, "NOPE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user"`)).
		WithArgs(true, "Anna", "anna@example.com", "+7", sqlmock.AnyArg(), "CARD1", int64(3), false, int64(0), "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	user := &models.User{Active: true, Name: "Anna", Email: "anna@example.com", Phone: "+7", CardID: "CARD1", UserType: 3}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(11), user.ID)
	assert.False(t, user.Created.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user"`)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Name: "Anna"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryExistsByCard(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM "user" WHERE card_id = $1`)).
		WithArgs("CARD1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM "user" WHERE card_id = $1`)).
		WithArgs("CARD2").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByCard(context.Background(), "CARD1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCard(context.Background(), "CARD2")
	require.NoError(t, err)
	assert.False(t, exists)
}
