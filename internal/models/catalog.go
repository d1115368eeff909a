package models

import "time"

// Status is the shape shared by the item, request and group status tables.
type Status struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// HardwareType groups hardware models and carries a specification template.
type HardwareType struct {
	ID       int64          `db:"id" json:"id"`
	Name     string         `db:"name" json:"name"`
	Template Specifications `db:"hardware_specifications_template" json:"hardware_specifications_template"`
}

// Hardware is a model of equipment, e.g. a specific oscilloscope.
type Hardware struct {
	ID                 int64          `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Type               int64          `db:"type" json:"type"`
	ImageLink          string         `db:"image_link" json:"image_link"`
	Specifications     Specifications `db:"specifications" json:"specifications"`
	ItemSpecifications Specifications `db:"item_specifications" json:"item_specifications"`
}

// Building is a campus building.
type Building struct {
	ID      int64     `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Address string    `db:"adress" json:"address"`
	Created time.Time `db:"created" json:"created"`
}

// Lab is a laboratory that owns rooms.
type Lab struct {
	ID      int64     `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Created time.Time `db:"created" json:"created"`
}

// Room is an access-controlled space inside a lab and building.
type Room struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Lab      int64     `db:"lab" json:"lab"`
	Created  time.Time `db:"created" json:"created"`
	Building int64     `db:"building" json:"building"`
	Type     string    `db:"type" json:"type"`
}

// Place is a storage location within a room section.
type Place struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Section     int64  `db:"section" json:"section"`
}

// UserAccess grants a user entry to a room.
type UserAccess struct {
	ID   int64 `db:"id" json:"id"`
	User int64 `db:"user" json:"user"`
	Room int64 `db:"room" json:"room"`
}
