package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates the lending tables when they are missing. Table and column
// names follow the existing database, so reserved words stay quoted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usertype (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS "user" (
		id SERIAL PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		card_id TEXT NOT NULL DEFAULT '',
		user_type INTEGER NOT NULL REFERENCES usertype(id) ON DELETE CASCADE,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		telegram_id BIGINT NOT NULL DEFAULT 0,
		password TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS requeststatus (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS itemstatus (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS groupstatus (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS terminal (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS lab (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS building (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		adress TEXT NOT NULL DEFAULT '',
		created TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS room (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		lab INTEGER NOT NULL REFERENCES lab(id) ON DELETE CASCADE,
		created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		building INTEGER NOT NULL REFERENCES building(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS section (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		room INTEGER NOT NULL REFERENCES room(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS terminalaccess (
		id SERIAL PRIMARY KEY,
		room INTEGER NOT NULL REFERENCES room(id) ON DELETE CASCADE,
		terminal INTEGER NOT NULL REFERENCES terminal(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS place (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		section INTEGER NOT NULL REFERENCES section(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS useraccess (
		id SERIAL PRIMARY KEY,
		"user" INTEGER NOT NULL REFERENCES "user"(id) ON DELETE CASCADE,
		room INTEGER NOT NULL REFERENCES room(id) ON DELETE CASCADE
	)`,
	// Older databases hold repeated grants; keep the first row of each pair
	// so the unique index can be built.
	dedupeAccessGrants,
	`CREATE UNIQUE INDEX IF NOT EXISTS useraccess_user_room ON useraccess ("user", room)`,
	`CREATE TABLE IF NOT EXISTS hardwaretype (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		hardware_specifications_template JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS hardware (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		type INTEGER NOT NULL REFERENCES hardwaretype(id) ON DELETE CASCADE,
		image_link TEXT NOT NULL DEFAULT '',
		specifications JSONB NOT NULL DEFAULT '{}',
		item_specifications JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS "group" (
		id SERIAL PRIMARY KEY,
		group_key TEXT NOT NULL,
		status INTEGER NOT NULL REFERENCES groupstatus(id) ON DELETE CASCADE,
		created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		parent INTEGER REFERENCES "group"(id) ON DELETE CASCADE,
		available BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS item (
		id SERIAL PRIMARY KEY,
		inv_key TEXT NOT NULL UNIQUE,
		hardware INTEGER NOT NULL REFERENCES hardware(id) ON DELETE CASCADE,
		"group" INTEGER REFERENCES "group"(id) ON DELETE CASCADE,
		status INTEGER NOT NULL REFERENCES itemstatus(id) ON DELETE CASCADE,
		owner TEXT NOT NULL DEFAULT '',
		place INTEGER NOT NULL REFERENCES place(id) ON DELETE CASCADE,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		specifications JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS request (
		id SERIAL PRIMARY KEY,
		status INTEGER NOT NULL REFERENCES requeststatus(id) ON DELETE CASCADE,
		"user" INTEGER NOT NULL REFERENCES "user"(id) ON DELETE CASCADE,
		issued_by INTEGER NOT NULL REFERENCES "user"(id) ON DELETE CASCADE,
		comment TEXT NOT NULL DEFAULT '',
		created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		takendate TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		planned_return_date TIMESTAMPTZ NOT NULL,
		return_date TIMESTAMPTZ
	)`,
	`ALTER TABLE request ADD COLUMN IF NOT EXISTS item INTEGER REFERENCES item(id) ON DELETE CASCADE`,
	// at most one open request per item
	`CREATE UNIQUE INDEX IF NOT EXISTS request_one_open_per_item ON request (item) WHERE return_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS request_open_status_created ON request (status, created) WHERE return_date IS NULL`,
	`CREATE TABLE IF NOT EXISTS requestgroup (
		id SERIAL PRIMARY KEY,
		"group" INTEGER REFERENCES "group"(id) ON DELETE CASCADE,
		request INTEGER REFERENCES request(id) ON DELETE CASCADE
	)`,
}

const dedupeAccessGrants = `DELETE FROM useraccess a USING useraccess b
	WHERE a."user" = b."user" AND a.room = b.room AND a.id > b.id`

// seeds inserts the catalog names the lending engine resolves at startup.
var seeds = []string{
	`INSERT INTO usertype (name) VALUES ('student') ON CONFLICT (name) DO NOTHING`,
	`INSERT INTO itemstatus (name) VALUES ('available'), ('checked-out') ON CONFLICT (name) DO NOTHING`,
	`INSERT INTO requeststatus (name) VALUES ('active'), ('closed') ON CONFLICT (name) DO NOTHING`,
}

// Migrate applies the schema and seeds the required catalog rows in a single transaction.
func Migrate(ctx context.Context, db *sqlx.DB) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range schema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	for i, stmt := range seeds {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply seed %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
