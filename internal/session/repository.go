// Package session holds per-conversation dialogue state behind a keyed
// repository, so the controller never touches a shared map directly.
package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// #region repository
// Repository stores sessions keyed by conversation id. Get reports a miss
// with ok=false rather than an error; expired sessions count as misses.
type Repository interface {
	Get(ctx context.Context, chatID int64) (Session, bool, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, chatID int64) error
}

// #endregion repository

// #region memory-repository

// MemoryRepository is an in-process Repository guarded by a mutex.
// A ttl of zero disables expiry; otherwise sessions older than ttl are
// dropped lazily on Get.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for chatID, expiring it first if too old.
func (r *MemoryRepository) Get(_ context.Context, chatID int64) (Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[chatID]
	if !ok {
		return Session{}, false, nil
	}
	if r.ttl > 0 && r.now().Sub(s.StartedAt) > r.ttl {
		delete(r.sessions, chatID)
		return Session{}, false, nil
	}
	// Each caller gets its own Fields map; the stored one is never shared.
	s.Fields = maps.Clone(s.Fields)
	return s, true, nil
}

// Put stores or replaces the session for its chat id.
func (r *MemoryRepository) Put(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Fields = maps.Clone(s.Fields)
	r.sessions[s.ChatID] = s
	return nil
}

// Delete discards the session for chatID. Deleting a missing session is a no-op.
func (r *MemoryRepository) Delete(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
	return nil
}

// #endregion memory-repository
