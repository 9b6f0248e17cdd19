package shortcodes

import (
	"context"
	"errors"
	"strings"
)

// Mapping is a stored code -> URL relation. ID is assigned by the backend
// and has no meaning outside of it.
type Mapping struct {
	ID      int64
	Code    string
	LongURL string
}

// Index keeps track of the code -> URL mapping. Implementations must enforce
// code uniqueness themselves and be safe for concurrent use.
type Index interface {
	// Init makes sure the backing schema exists. It is safe to call on every start.
	Init(ctx context.Context) error
	// Insert stores a new mapping or fails with ErrDuplicateCode if code is taken.
	Insert(ctx context.Context, code, longURL string) error
	// Lookup returns the mapping for code or ErrNotFound.
	Lookup(ctx context.Context, code string) (Mapping, error)
	Close() error
}

var (
	ErrNotFound      = errors.New("not found in index")
	ErrDuplicateCode = errors.New("code already in index")
)

// OpenIndex returns the Index backend selected by dsn:
// postgres:// and postgresql:// open a PostgresIndex, redis:// and rediss://
// a RedisIndex, "memory:" a MemoryIndex. Anything else is passed on to
// SQLite as-is.
func OpenIndex(dsn string) (Index, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresIndex(dsn)
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return NewRedisIndex(dsn)
	case dsn == "memory:":
		return NewMemoryIndex(), nil
	default:
		return NewSQLiteIndex(dsn)
	}
}
