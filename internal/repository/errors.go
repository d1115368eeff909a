package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrItemNotFound is returned when no item matches the inventory key.
	ErrItemNotFound = errors.New("item not found")
	// ErrItemCheckedOut is returned when an item already has an open request.
	ErrItemCheckedOut = errors.New("item already checked out")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is returned when an insert names a parent row that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
