package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

// ItemRepository manages persistence for equipment items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository constructs an ItemRepository.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemViewQuery = `SELECT i.inv_key, h.name, g.group_key, s.name AS status, i.owner, p.name AS location, i.available, i.specifications
        FROM item i
        JOIN hardware h ON h.id = i.hardware
        JOIN itemstatus s ON s.id = i.status
        JOIN place p ON p.id = i.place
        LEFT JOIN "group" g ON g.id = i."group"`

// List returns every item joined with its hardware, status, place and group.
func (r *ItemRepository) List(ctx context.Context) ([]models.ItemView, error) {
	items := []models.ItemView{}
	if err := r.db.SelectContext(ctx, &items, itemViewQuery+` ORDER BY i.id`); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// FindViewByKey returns the listing view of a single item. A missing item yields sql.ErrNoRows.
func (r *ItemRepository) FindViewByKey(ctx context.Context, invKey string) (*models.ItemView, error) {
	var item models.ItemView
	if err := r.db.GetContext(ctx, &item, itemViewQuery+` WHERE i.inv_key = $1`, invKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find item %s: %w", invKey, err)
	}
	return &item, nil
}

// OpenRequest returns the open request for the item, or nil when it is not checked out.
func (r *ItemRepository) OpenRequest(ctx context.Context, invKey string) (*models.OpenRequest, error) {
	const query = `SELECT rq.id AS request_id, u.id AS user_id, u.name AS user_name, rq.takendate, rq.planned_return_date
        FROM request rq
        JOIN item i ON i.id = rq.item
        JOIN "user" u ON u.id = rq."user"
        WHERE i.inv_key = $1 AND rq.return_date IS NULL
        ORDER BY rq.created DESC LIMIT 1`
	var open models.OpenRequest
	if err := r.db.GetContext(ctx, &open, query, invKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find open request for %s: %w", invKey, err)
	}
	return &open, nil
}

// Create inserts a new item and fills its generated ID.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.Specifications == nil {
		item.Specifications = models.Specifications{}
	}
	const query = `INSERT INTO item (inv_key, hardware, "group", status, owner, place, available, specifications)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		item.InvKey, item.Hardware, item.Group, item.Status, item.Owner, item.Place, item.Available, item.Specifications,
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrMissingReference
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}
