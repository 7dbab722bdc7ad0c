package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// TimeFormat is the persisted timestamp layout: ISO-8601 with
// microsecond precision and a numeric offset.
const TimeFormat = "2006-01-02T15:04:05.000000-07:00"

type DB struct {
	*sql.DB
}

type Execer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func Make(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma temp_store = memory;
		pragma busy_timeout = 5000;

		create table if not exists state (
			email text primary key,
			punch_status integer not null,
			timestamp text not null
		);
		create table if not exists token (
			email text primary key,
			token text not null,
			timestamp text not null
		);
		create table if not exists users (
			email text primary key,
			ntfy_channel text,
			passw_hash text not null,
			lat text not null,
			lng text not null,
			timestamp text not null
		);
		create table if not exists holidays (
			email text primary key,
			value text not null
		);
		create table if not exists location (
			coords text primary key,
			latitude text,
			longitude text,
			zip text,
			country_code text,
			state text,
			city text,
			address_line1 text,
			address_line2 text
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}
