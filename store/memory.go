package store

import (
	"context"
	"sync"
	"time"
)

// Memory is a map-backed Store. Writes and reads are mutex-guarded so
// concurrent sessions can share one instance.
type Memory struct {
	mu      sync.RWMutex
	byIdent map[string]*Record
	byID    map[any]*Record

	failWith      error
	failTouchWith error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byIdent: make(map[string]*Record),
		byID:    make(map[any]*Record),
	}
}

// Put inserts or replaces a credential record.
func (m *Memory) Put(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := rec
	m.byIdent[rec.Identity] = &r
	m.byID[rec.ID] = &r
}

// FailWith makes every subsequent call return err, simulating a
// backend outage. Pass nil to recover.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// FailTouchWith makes only TouchLastUsed fail with err.
func (m *Memory) FailTouchWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTouchWith = err
}

func (m *Memory) FindByIdentity(ctx context.Context, identity string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, &Error{Op: "find identity", Err: m.failWith}
	}
	rec, ok := m.byIdent[identity]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) FindSecret(ctx context.Context, identity string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return "", false, &Error{Op: "find secret", Err: m.failWith}
	}
	rec, ok := m.byIdent[identity]
	if !ok {
		return "", false, nil
	}
	return rec.PasswordHash, true, nil
}

func (m *Memory) TouchLastUsed(ctx context.Context, id any, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return &Error{Op: "touch last used", Err: m.failWith}
	}
	if m.failTouchWith != nil {
		return &Error{Op: "touch last used", Err: m.failTouchWith}
	}
	if rec, ok := m.byID[id]; ok {
		t := at
		rec.LastUsedAt = &t
	}
	return nil
}
