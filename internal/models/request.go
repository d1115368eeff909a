package models

import "time"

// Request status names recognised by the lending engine.
const (
	RequestStatusActive = "active"
	RequestStatusClosed = "closed"
)

// Request records one checkout-to-return cycle.
type Request struct {
	ID                int64      `db:"id" json:"id"`
	Status            int64      `db:"status" json:"status"`
	User              int64      `db:"user" json:"user"`
	IssuedBy          int64      `db:"issued_by" json:"issued_by"`
	Item              *int64     `db:"item" json:"item,omitempty"`
	Comment           string     `db:"comment" json:"comment"`
	Created           time.Time  `db:"created" json:"created"`
	TakenDate         time.Time  `db:"takendate" json:"takendate"`
	PlannedReturnDate time.Time  `db:"planned_return_date" json:"planned_return_date"`
	ReturnDate        *time.Time `db:"return_date" json:"return_date"`
}

// Open reports whether the request has not been returned yet.
func (r Request) Open() bool {
	return r.ReturnDate == nil
}

// OpenRequest summarises the borrower of a checked-out item.
type OpenRequest struct {
	RequestID         int64     `db:"request_id" json:"request_id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	UserName          string    `db:"user_name" json:"checked_out_by"`
	TakenDate         time.Time `db:"takendate" json:"checked_out_at"`
	PlannedReturnDate time.Time `db:"planned_return_date" json:"planned_return_date"`
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	ItemKey  string
	UserID   int64
	Open     *bool
	Page     int
	PageSize int
}

// CheckoutParams carries the values written by a checkout.
type CheckoutParams struct {
	ItemKey           string
	UserID            int64
	IssuedBy          int64
	Comment           string
	PlannedReturnDate time.Time
	ActiveStatus      int64
	CheckedOutStatus  int64
}

// ReturnParams carries the values written by a return.
type ReturnParams struct {
	ItemKey         string
	AvailableStatus int64
	ActiveStatus    int64
	ClosedStatus    int64
	// AnyItem selects the oldest open active request regardless of item.
	AnyItem bool
}

// ReturnResult reports what a return touched.
type ReturnResult struct {
	ItemID          int64
	ClosedRequestID *int64
	// DetachedRequests counts open requests unlinked from the returned item
	// in legacy mode so it can be lent again.
	DetachedRequests int64
}
