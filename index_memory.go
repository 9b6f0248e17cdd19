package shortcodes

import (
	"context"
	"sync"
)

// MemoryIndex is an Index held in process memory. Its contents are lost on exit.
type MemoryIndex struct {
	mu     sync.RWMutex
	links  map[string]Mapping
	lastID int64
}

var _ Index = &MemoryIndex{}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		links: make(map[string]Mapping),
	}
}

func (i *MemoryIndex) Init(ctx context.Context) error { return nil }

func (i *MemoryIndex) Insert(ctx context.Context, code, longURL string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.links[code]; ok {
		return ErrDuplicateCode
	}

	i.lastID++
	i.links[code] = Mapping{ID: i.lastID, Code: code, LongURL: longURL}
	return nil
}

func (i *MemoryIndex) Lookup(ctx context.Context, code string) (Mapping, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	m, ok := i.links[code]
	if !ok {
		return Mapping{}, ErrNotFound
	}
	return m, nil
}

func (i *MemoryIndex) Close() error { return nil }
