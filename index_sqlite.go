package shortcodes

import (
	"context"
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"
)

const sqliteSchema = `create table if not exists links (
	id integer primary key,
	code text not null unique,
	original_url text not null
)`

// SQLiteIndex is an Index backed by a SQLite database.
type SQLiteIndex struct {
	db *sql.DB
}

// compile-time assertion that we implement Index
var _ Index = &SQLiteIndex{}

// NewSQLiteIndex returns an Index backed by a SQLite database.
func NewSQLiteIndex(dsn string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, xerrors.Errorf("could not open SQLite database: %w", err)
	}

	// SQLite has a single writer: one connection serializes DB access from concurrent requests
	db.SetMaxOpenConns(1)

	return &SQLiteIndex{db: db}, nil
}

// Init creates the links table if it does not exist yet.
func (i *SQLiteIndex) Init(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, sqliteSchema); err != nil {
		return xerrors.Errorf("error creating links table: %w", err)
	}
	return nil
}

// Insert adds a mapping. The unique constraint on code decides whether the
// insert goes through.
func (i *SQLiteIndex) Insert(ctx context.Context, code, longURL string) error {
	_, err := i.db.ExecContext(ctx, "insert into links (code, original_url) values (?, ?)", code, longURL)
	if err != nil {
		var sqliteErr sqlite3.Error
		if xerrors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateCode
		}
		return xerrors.Errorf("error adding code %s to database: %w", code, err)
	}
	return nil
}

// Lookup returns the mapping stored for code.
func (i *SQLiteIndex) Lookup(ctx context.Context, code string) (Mapping, error) {
	m := Mapping{Code: code}
	err := i.db.QueryRowContext(ctx, "select id, original_url from links where code = ?", code).Scan(&m.ID, &m.LongURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return Mapping{}, ErrNotFound
		}
		return Mapping{}, xerrors.Errorf("error resolving code %s to long URL in database: %w", code, err)
	}
	return m, nil
}

func (i *SQLiteIndex) Close() error {
	return i.db.Close()
}
