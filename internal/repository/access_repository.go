package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

// AccessRepository stores (user, room) access grants.
type AccessRepository struct {
	db *sqlx.DB
}

// NewAccessRepository constructs an AccessRepository.
func NewAccessRepository(db *sqlx.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// Grant inserts the pair unless it already exists. It reports whether a row was added.
func (r *AccessRepository) Grant(ctx context.Context, userID, roomID int64) (bool, error) {
	const query = `INSERT INTO useraccess ("user", room)
        SELECT $1, $2
        WHERE NOT EXISTS (SELECT 1 FROM useraccess WHERE "user" = $1 AND room = $2)
        ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, userID, roomID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrMissingReference
		}
		return false, fmt.Errorf("grant access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant access rows: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes every row for the pair and returns how many were removed.
func (r *AccessRepository) Revoke(ctx context.Context, userID, roomID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM useraccess WHERE "user" = $1 AND room = $2`, userID, roomID)
	if err != nil {
		return 0, fmt.Errorf("revoke access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke access rows: %w", err)
	}
	return n, nil
}

// Exists reports whether the user may enter the room.
func (r *AccessRepository) Exists(ctx context.Context, userID, roomID int64) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM useraccess WHERE "user" = $1 AND room = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, roomID); err != nil {
		return false, fmt.Errorf("check access: %w", err)
	}
	return exists, nil
}

// ListRooms returns the rooms granted to the user.
func (r *AccessRepository) ListRooms(ctx context.Context, userID int64) ([]models.Room, error) {
	const query = `SELECT DISTINCT r.id, r.name, r.lab, r.created, r.building, r.type
        FROM useraccess ua JOIN room r ON r.id = ua.room
        WHERE ua."user" = $1 ORDER BY r.id`
	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, fmt.Errorf("list granted rooms: %w", err)
	}
	return rooms, nil
}
