package shortcodes

import (
	"context"
	"database/sql"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/xerrors"
)

const postgresSchema = `create table if not exists links (
	id bigserial primary key,
	code text not null unique,
	original_url text not null
)`

// PostgresIndex is an Index backed by a PostgreSQL database.
type PostgresIndex struct {
	db *sql.DB
}

var _ Index = &PostgresIndex{}

// NewPostgresIndex opens a connection pool to the database at dsn.
// No connection is made until the first query.
func NewPostgresIndex(dsn string) (*PostgresIndex, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, xerrors.Errorf("could not open PostgreSQL database: %w", err)
	}
	return &PostgresIndex{db: db}, nil
}

func (i *PostgresIndex) Init(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, postgresSchema); err != nil {
		return xerrors.Errorf("error creating links table: %w", err)
	}
	return nil
}

func (i *PostgresIndex) Insert(ctx context.Context, code, longURL string) error {
	_, err := i.db.ExecContext(ctx, "insert into links (code, original_url) values ($1, $2)", code, longURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if xerrors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateCode
		}
		return xerrors.Errorf("error adding code %s to database: %w", code, err)
	}
	return nil
}

func (i *PostgresIndex) Lookup(ctx context.Context, code string) (Mapping, error) {
	m := Mapping{Code: code}
	err := i.db.QueryRowContext(ctx, "select id, original_url from links where code = $1", code).Scan(&m.ID, &m.LongURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return Mapping{}, ErrNotFound
		}
		return Mapping{}, xerrors.Errorf("error resolving code %s to long URL in database: %w", code, err)
	}
	return m, nil
}

func (i *PostgresIndex) Close() error {
	return i.db.Close()
}
