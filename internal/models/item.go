package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Item status names recognised by the lending engine.
const (
	ItemStatusAvailable  = "available"
	ItemStatusCheckedOut = "checked-out"
)

// Specifications holds free-form key/value data persisted as JSON.
type Specifications map[string]interface{}

// Value marshals specifications to JSON for persistence.
func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		s = Specifications{}
	}
	data, err := json.Marshal(map[string]interface{}(s))
	if err != nil {
		return nil, fmt.Errorf("marshal specifications: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the specifications map.
func (s *Specifications) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Specifications", value)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal specifications: %w", err)
	}
	*s = out
	return nil
}

// Item is a single physical unit of equipment.
type Item struct {
	ID             int64          `db:"id" json:"id"`
	InvKey         string         `db:"inv_key" json:"inv_key"`
	Hardware       int64          `db:"hardware" json:"hardware"`
	Group          *int64         `db:"group" json:"group,omitempty"`
	Status         int64          `db:"status" json:"status"`
	Owner          string         `db:"owner" json:"owner"`
	Place          int64          `db:"place" json:"place"`
	Available      bool           `db:"available" json:"available"`
	Specifications Specifications `db:"specifications" json:"specifications"`
}

// ItemView is the listing projection of an item joined with its catalog rows.
type ItemView struct {
	ID             string         `db:"inv_key" json:"id"`
	Name           string         `db:"name" json:"name"`
	Group          *string        `db:"group_key" json:"group"`
	Status         string         `db:"status" json:"status"`
	Owner          string         `db:"owner" json:"owner"`
	Location       string         `db:"location" json:"location"`
	Available      bool           `db:"available" json:"available"`
	Specifications Specifications `db:"specifications" json:"specifications"`
}

// ItemDetail extends ItemView with the open request, if any.
type ItemDetail struct {
	ItemView
	CurrentRequest *OpenRequest `json:"current_request,omitempty"`
}
