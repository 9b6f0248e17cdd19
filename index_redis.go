package shortcodes

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"golang.org/x/xerrors"
)

const (
	redisCodePrefix = "shortcodes:code:"
	redisSeqKey     = "shortcodes:seq"
)

// insertScript sets the hash at KEYS[1] unless it exists and returns the new
// mapping's ID, or 0 if the code is taken. KEYS[2] is the ID sequence.
var insertScript = redis.NewScript(`
if redis.call("exists", KEYS[1]) == 1 then
	return 0
end
local id = redis.call("incr", KEYS[2])
redis.call("hset", KEYS[1], "id", tostring(id), "url", ARGV[1])
return id
`)

// RedisIndex is an Index keeping one hash per code in Redis.
type RedisIndex struct {
	rdb *redis.Client
}

var _ Index = &RedisIndex{}

// NewRedisIndex returns an Index backed by the Redis server at url,
// e.g. redis://localhost:6379/0.
func NewRedisIndex(url string) (*RedisIndex, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, xerrors.Errorf("could not parse Redis URL: %w", err)
	}
	return &RedisIndex{rdb: redis.NewClient(opts)}, nil
}

// Init checks that the server is reachable. Redis needs no schema.
func (i *RedisIndex) Init(ctx context.Context) error {
	if err := i.rdb.Ping(ctx).Err(); err != nil {
		return xerrors.Errorf("error connecting to Redis: %w", err)
	}
	return nil
}

func (i *RedisIndex) Insert(ctx context.Context, code, longURL string) error {
	id, err := insertScript.Run(ctx, i.rdb, []string{redisCodePrefix + code, redisSeqKey}, longURL).Int64()
	if err != nil {
		return xerrors.Errorf("error adding code %s to Redis: %w", code, err)
	}
	if id == 0 {
		return ErrDuplicateCode
	}
	return nil
}

func (i *RedisIndex) Lookup(ctx context.Context, code string) (Mapping, error) {
	fields, err := i.rdb.HGetAll(ctx, redisCodePrefix+code).Result()
	if err != nil {
		return Mapping{}, xerrors.Errorf("error resolving code %s in Redis: %w", code, err)
	}
	if len(fields) == 0 {
		return Mapping{}, ErrNotFound
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return Mapping{}, xerrors.Errorf("malformed id for code %s in Redis: %w", code, err)
	}

	return Mapping{ID: id, Code: code, LongURL: fields["url"]}, nil
}

func (i *RedisIndex) Close() error {
	return i.rdb.Close()
}
