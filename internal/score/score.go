// Package score persists the best result reached across games.
package score

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultKey is the key the high score is stored under.
const DefaultKey = "missile-command-score"

// HighScore is the persisted best result.
type HighScore struct {
	Level          int `json:"level"`
	DestroyedCount int `json:"destroyedCount"`
}

// KV is a minimal persistent key-value store.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Update reads key and writes fn's result as one atomic step. fn sees
	// the current value and whether it exists; returning write=false
	// leaves the key untouched. Update reports whether it wrote.
	Update(ctx context.Context, key string, fn UpdateFunc) (bool, error)
}

// UpdateFunc computes the next value of a key from its current one.
type UpdateFunc func(current string, ok bool) (next string, write bool, err error)

// Store reads and conditionally writes a single high-score record.
type Store struct {
	kv  KV
	key string
}

// NewStore returns a store over kv. An empty key uses DefaultKey.
func NewStore(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the key the record is stored under.
func (s *Store) Key() string {
	return s.key
}

// Load returns the persisted record, or the zero record if none exists.
func (s *Store) Load(ctx context.Context) (HighScore, error) {
	hs, _, err := s.load(ctx)
	return hs, err
}

func (s *Store) load(ctx context.Context) (HighScore, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return HighScore{}, false, fmt.Errorf("get high score: %w", err)
	}
	if !ok {
		return HighScore{}, false, nil
	}
	hs, err := decode(raw)
	if err != nil {
		return HighScore{}, false, err
	}
	return hs, true, nil
}

// Record writes {level, destroyed} when no record exists or destroyed
// strictly exceeds the stored count. It reports whether it wrote. The
// comparison and write happen in one KV update, so concurrent games of the
// same player never replace a record with a lower one.
func (s *Store) Record(ctx context.Context, level, destroyed int) (bool, error) {
	next, err := json.Marshal(HighScore{Level: level, DestroyedCount: destroyed})
	if err != nil {
		return false, fmt.Errorf("encode high score: %w", err)
	}

	wrote, err := s.kv.Update(ctx, s.key, func(raw string, ok bool) (string, bool, error) {
		if ok {
			current, err := decode(raw)
			if err != nil {
				return "", false, err
			}
			if current.DestroyedCount >= destroyed {
				return "", false, nil
			}
		}
		return string(next), true, nil
	})
	if err != nil {
		return false, fmt.Errorf("record high score: %w", err)
	}
	return wrote, nil
}

func decode(raw string) (HighScore, error) {
	var hs HighScore
	if err := json.Unmarshal([]byte(raw), &hs); err != nil {
		return HighScore{}, fmt.Errorf("decode high score: %w", err)
	}
	return hs, nil
}

// MemoryKV is an in-process KV, safe for concurrent use.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Update implements KV. fn runs with the store locked.
func (m *MemoryKV) Update(_ context.Context, key string, fn UpdateFunc) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.values[key]
	next, write, err := fn(current, ok)
	if err != nil || !write {
		return false, err
	}
	m.values[key] = next
	return true, nil
}

var _ KV = (*MemoryKV)(nil)
