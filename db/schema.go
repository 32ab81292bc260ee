package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = `
CREATE TABLE IF NOT EXISTS events_catalog (
	event_id VARCHAR(255) PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	venue TEXT NOT NULL DEFAULT '',
	locations TEXT[] NOT NULL DEFAULT '{}',
	start_date VARCHAR(32) NOT NULL DEFAULT '',
	start_time VARCHAR(32) NOT NULL DEFAULT '',
	end_date VARCHAR(32) NOT NULL DEFAULT '',
	end_time VARCHAR(32) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ticket_types (
	ticket_id VARCHAR(255) PRIMARY KEY,
	title TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
	order_id VARCHAR(255) PRIMARY KEY,
	status VARCHAR(64) NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	passes_processed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS order_items (
	order_id VARCHAR(255) NOT NULL REFERENCES orders (order_id),
	item_id VARCHAR(255) NOT NULL,
	event_id VARCHAR(255) NOT NULL DEFAULT '',
	PRIMARY KEY (order_id, item_id)
);

CREATE TABLE IF NOT EXISTS attendees (
	attendee_id VARCHAR(255) PRIMARY KEY,
	order_id VARCHAR(255) NOT NULL REFERENCES orders (order_id),
	event_id VARCHAR(255) NOT NULL DEFAULT '',
	ticket_id VARCHAR(255) NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	qr_code TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS attendees_order_id_idx ON attendees (order_id);

CREATE TABLE IF NOT EXISTS pass_records (
	order_id VARCHAR(255) NOT NULL,
	attendee_id VARCHAR(255) NOT NULL DEFAULT '',
	pass_url TEXT NOT NULL,
	serial_number VARCHAR(255) NOT NULL DEFAULT '',
	hashed_serial_number VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (order_id, attendee_id)
);

CREATE TABLE IF NOT EXISTS settings (
	id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	client_hash VARCHAR(255) NOT NULL DEFAULT '',
	template_hash VARCHAR(255) NOT NULL DEFAULT '',
	enable_checkout_button VARCHAR(3) NOT NULL DEFAULT 'yes',
	enable_email_button VARCHAR(3) NOT NULL DEFAULT 'yes',
	button_style VARCHAR(16) NOT NULL DEFAULT 'both',
	debug_mode VARCHAR(3) NOT NULL DEFAULT 'no',
	terms_text TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS data_lake (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMPTZ NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	order_id VARCHAR(255) NOT NULL DEFAULT '',
	correlation_id VARCHAR(255) NOT NULL DEFAULT '',
	event_payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS data_lake_order_id_idx ON data_lake (order_id);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
