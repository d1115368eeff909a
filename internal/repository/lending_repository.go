package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

// LendingRepository runs checkout and return as single transactions.
type LendingRepository struct {
	db *sqlx.DB
}

// NewLendingRepository constructs a LendingRepository.
func NewLendingRepository(db *sqlx.DB) *LendingRepository {
	return &LendingRepository{db: db}
}

type lockedItem struct {
	ID        int64 `db:"id"`
	Status    int64 `db:"status"`
	Available bool  `db:"available"`
}

func lockItem(ctx context.Context, tx *sqlx.Tx, invKey string) (*lockedItem, error) {
	const query = `SELECT id, status, available FROM item WHERE inv_key = $1 FOR UPDATE`
	var item lockedItem
	if err := tx.GetContext(ctx, &item, query, invKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("lock item %s: %w", invKey, err)
	}
	return &item, nil
}

// Checkout locks the item, refuses it when it is already out, inserts an
// active request and marks the item checked out.
func (r *LendingRepository) Checkout(ctx context.Context, params models.CheckoutParams) (req *models.Request, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	item, err := lockItem(ctx, tx, params.ItemKey)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, ErrItemCheckedOut
	}

	var openID int64
	err = tx.GetContext(ctx, &openID, `SELECT id FROM request WHERE item = $1 AND return_date IS NULL LIMIT 1`, item.ID)
	switch {
	case err == nil:
		return nil, ErrItemCheckedOut
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("check open request: %w", err)
	}

	now := time.Now().UTC()
	itemID := item.ID
	req = &models.Request{
		Status:            params.ActiveStatus,
		User:              params.UserID,
		IssuedBy:          params.IssuedBy,
		Item:              &itemID,
		Comment:           params.Comment,
		Created:           now,
		TakenDate:         now,
		PlannedReturnDate: params.PlannedReturnDate,
	}
	const insertQuery = `INSERT INTO request (status, "user", issued_by, item, comment, created, takendate, planned_return_date, return_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insertQuery,
		req.Status, req.User, req.IssuedBy, itemID, req.Comment, req.Created, req.TakenDate, req.PlannedReturnDate,
	).Scan(&req.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrItemCheckedOut
		}
		if isForeignKeyViolation(err) {
			return nil, ErrMissingReference
		}
		return nil, fmt.Errorf("insert request: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE item SET status = $1, available = FALSE WHERE id = $2`, params.CheckedOutStatus, itemID); err != nil {
		return nil, fmt.Errorf("mark item checked out: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return req, nil
}

// Return marks the item available and closes its open request. With
// params.AnyItem the oldest open active request is closed instead, whichever
// item it references, and any request still open against the returned item
// is unlinked from it. Those requests stay open like unlinked legacy rows and
// no longer keep the item from being checked out again.
func (r *LendingRepository) Return(ctx context.Context, params models.ReturnParams) (result *models.ReturnResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	item, err := lockItem(ctx, tx, params.ItemKey)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE item SET status = $1, available = TRUE WHERE id = $2`, params.AvailableStatus, item.ID); err != nil {
		return nil, fmt.Errorf("mark item available: %w", err)
	}

	now := time.Now().UTC()
	var closeQuery string
	var args []interface{}
	if params.AnyItem {
		closeQuery = `UPDATE request SET status = $1, return_date = $2
        WHERE id = (SELECT id FROM request WHERE status = $3 AND return_date IS NULL ORDER BY created, id LIMIT 1 FOR UPDATE)
        RETURNING id`
		args = []interface{}{params.ClosedStatus, now, params.ActiveStatus}
	} else {
		closeQuery = `UPDATE request SET status = $1, return_date = $2
        WHERE item = $3 AND status = $4 AND return_date IS NULL
        RETURNING id`
		args = []interface{}{params.ClosedStatus, now, item.ID, params.ActiveStatus}
	}

	result = &models.ReturnResult{ItemID: item.ID}
	var closedID int64
	err = tx.QueryRowxContext(ctx, closeQuery, args...).Scan(&closedID)
	switch {
	case err == nil:
		result.ClosedRequestID = &closedID
	case err == sql.ErrNoRows:
		err = nil
	default:
		return nil, fmt.Errorf("close request: %w", err)
	}

	if params.AnyItem {
		var res sql.Result
		if res, err = tx.ExecContext(ctx, `UPDATE request SET item = NULL WHERE item = $1 AND return_date IS NULL`, item.ID); err != nil {
			return nil, fmt.Errorf("detach open requests: %w", err)
		}
		if result.DetachedRequests, err = res.RowsAffected(); err != nil {
			return nil, fmt.Errorf("detach open requests: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}
	return result, nil
}

// ListRequests returns requests matching the filter, newest first.
func (r *LendingRepository) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	base := `FROM request rq LEFT JOIN item i ON i.id = rq.item`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ItemKey != "" {
		args = append(args, filter.ItemKey)
		conditions = append(conditions, fmt.Sprintf("i.inv_key = $%d", len(args)))
	}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf(`rq."user" = $%d`, len(args)))
	}
	if filter.Open != nil {
		if *filter.Open {
			conditions = append(conditions, "rq.return_date IS NULL")
		} else {
			conditions = append(conditions, "rq.return_date IS NOT NULL")
		}
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT rq.id, rq.status, rq."user", rq.issued_by, rq.item, rq.comment, rq.created, rq.takendate, rq.planned_return_date, rq.return_date
        %s ORDER BY rq.created DESC, rq.id DESC LIMIT %d OFFSET %d`, base, size, offset)

	requests := []models.Request{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	return requests, total, nil
}
