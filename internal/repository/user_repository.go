package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

// UserRepository manages persistence for user records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const studentViewColumns = `u.id, u.name, u.email, u.phone, u.card_id, u.active, u.created,
        EXISTS (SELECT 1 FROM useraccess ua WHERE ua."user" = u.id) AS has_access`

// ListStudents returns every user of the given type with its access flag.
func (r *UserRepository) ListStudents(ctx context.Context, userType int64) ([]models.StudentView, error) {
	query := `SELECT ` + studentViewColumns + `
        FROM "user" u WHERE u.user_type = $1 ORDER BY u.id`
	students := []models.StudentView{}
	if err := r.db.SelectContext(ctx, &students, query, userType); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindStudentByCard returns the student holding cardID. A missing student yields sql.ErrNoRows.
func (r *UserRepository) FindStudentByCard(ctx context.Context, userType int64, cardID string) (*models.StudentView, error) {
	query := `SELECT ` + studentViewColumns + `
        FROM "user" u WHERE u.user_type = $1 AND u.card_id = $2 ORDER BY u.id LIMIT 1`
	var student models.StudentView
	if err := r.db.GetContext(ctx, &student, query, userType, cardID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by card: %w", err)
	}
	return &student, nil
}

// ExistsByCard reports whether any user already holds cardID.
func (r *UserRepository) ExistsByCard(ctx context.Context, cardID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM "user" WHERE card_id = $1 LIMIT 1`, cardID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check card id: %w", err)
	}
	return true, nil
}

// Create inserts a new user and fills its generated ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Created.IsZero() {
		user.Created = time.Now().UTC()
	}
	const query = `INSERT INTO "user" (active, name, email, phone, created, card_id, user_type, email_verified, telegram_id, password)
        VALUES (:active, :name, :email, :phone, :created, :card_id, :user_type, :email_verified, :telegram_id, :password)
        RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&user.ID); err != nil {
			return fmt.Errorf("scan user id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
