package models

import "time"

// UserTypeStudent names the user type row that identifies students.
const UserTypeStudent = "student"

// UserType is a catalog row classifying users.
type UserType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// User represents a student or staff member stored in the "user" table.
type User struct {
	ID            int64     `db:"id" json:"id"`
	Active        bool      `db:"active" json:"active"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Created       time.Time `db:"created" json:"created"`
	CardID        string    `db:"card_id" json:"card_id"`
	UserType      int64     `db:"user_type" json:"user_type"`
	EmailVerified bool      `db:"email_verified" json:"email_verified"`
	TelegramID    int64     `db:"telegram_id" json:"-"`
	Password      string    `db:"password" json:"-"`
}

// StudentView is the directory projection of a student with derived access.
type StudentView struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	CardID    string     `db:"card_id" json:"card_id"`
	Active    bool       `db:"active" json:"active"`
	HasAccess bool       `db:"has_access" json:"hasAccess"`
	Created   *time.Time `db:"created" json:"created"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
