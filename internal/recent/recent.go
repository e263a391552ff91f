// Package recent keeps a short, most-recent-first log of products a shopper
// has opened, persisted through a key/value Storage.
package recent

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/wire"
)

const (
	// Key is the storage key holding the serialized log.
	Key = "products_watched"
	// Limit is the default number of entries kept.
	Limit = 4
)

// Storage is a string key/value store.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Log is the recently-viewed log.
type Log struct {
	st    Storage
	lg    *zap.Logger
	limit int

	mu sync.Mutex
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger for storage diagnostics.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Log) { l.lg = lg }
}

// WithLimit overrides the number of entries kept. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// NewLog creates a Log over st.
func NewLog(st Storage, opts ...Option) *Log {
	l := &Log{st: st, lg: zap.NewNop(), limit: Limit}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RecordView moves item to the front of the log, dropping any older entry
// with the same id and anything past the limit. The stored entry is a copy
// taken now. A failed write is logged and otherwise ignored.
func (l *Log) RecordView(item product.Item) error {
	if item.ID == "" {
		return product.ErrEmptyID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.load()
	next := make([]product.Item, 0, min(len(prev)+1, l.limit))
	next = append(next, item.Clone())
	seen := map[string]struct{}{item.ID: {}}
	for _, it := range prev {
		if len(next) == l.limit {
			break
		}
		if _, dup := seen[it.ID]; dup || it.ID == "" {
			continue
		}
		seen[it.ID] = struct{}{}
		next = append(next, it)
	}

	if err := l.st.Set(Key, string(wire.MarshalItems(next))); err != nil {
		l.lg.Warn("Failed to persist recently viewed", zap.String("id", item.ID), zap.Error(err))
	}
	return nil
}

// ListViews returns the log, most recent first. Missing or unreadable data
// yields an empty slice.
func (l *Log) ListViews() []product.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Log) load() []product.Item {
	raw, ok, err := l.st.Get(Key)
	if err != nil {
		l.lg.Warn("Failed to read recently viewed", zap.Error(err))
		return []product.Item{}
	}
	if !ok || raw == "" {
		return []product.Item{}
	}
	items, err := wire.UnmarshalItems([]byte(raw))
	if err != nil {
		l.lg.Debug("Malformed recently viewed data", zap.Error(err))
		return []product.Item{}
	}
	if len(items) > l.limit {
		items = items[:l.limit]
	}
	return items
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
