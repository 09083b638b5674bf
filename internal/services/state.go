package services

import (
	"context"
	"sync"
	"time"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

// stateEntry represents a pending expectation with optional expiry
type stateEntry struct {
	State     domain.ConversationState
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (e *stateEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// MemoryStateStore implements domain.StateStore with in-memory storage and
// optional auto-expiry
type MemoryStateStore struct {
	states map[string]*stateEntry // key: user id
	mutex  sync.RWMutex
	ttl    time.Duration
	now    func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStateStore creates a store. A ttl of 0 keeps states until they are
// consumed; otherwise a cleanup goroutine runs until Close.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	s := &MemoryStateStore{
		states: make(map[string]*stateEntry),
		ttl:    ttl,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if ttl > 0 {
		interval := ttl / 2
		if interval > 30*time.Second {
			interval = 30 * time.Second
		}
		go s.startCleanupRoutine(interval)
	} else {
		close(s.done)
	}

	return s
}

// Get returns the user's state, Idle when absent or expired.
func (s *MemoryStateStore) Get(ctx context.Context, userID string) (domain.ConversationState, error) {
	s.mutex.RLock()
	entry, exists := s.states[userID]
	s.mutex.RUnlock()

	if !exists {
		return domain.Idle, nil
	}
	if entry.expired(s.now()) {
		s.mutex.Lock()
		if cur, ok := s.states[userID]; ok && cur == entry {
			delete(s.states, userID)
		}
		s.mutex.Unlock()
		return domain.Idle, nil
	}
	return entry.State, nil
}

// Set overwrites the user's state. Setting Idle clears it.
func (s *MemoryStateStore) Set(ctx context.Context, userID string, state domain.ConversationState) error {
	if state.IsIdle() {
		return s.Clear(ctx, userID)
	}

	now := s.now()
	entry := &stateEntry{State: state, CreatedAt: now}
	if s.ttl > 0 {
		entry.ExpiresAt = now.Add(s.ttl)
	}

	s.mutex.Lock()
	s.states[userID] = entry
	s.mutex.Unlock()
	return nil
}

// Clear removes the user's state.
func (s *MemoryStateStore) Clear(ctx context.Context, userID string) error {
	s.mutex.Lock()
	delete(s.states, userID)
	s.mutex.Unlock()
	return nil
}

// CleanupExpired removes all expired states from memory
func (s *MemoryStateStore) CleanupExpired(ctx context.Context) error {
	now := s.now()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for userID, entry := range s.states {
		if entry.expired(now) {
			delete(s.states, userID)
		}
	}

	return nil
}

// ActiveStates returns the count of pending, non-expired states
func (s *MemoryStateStore) ActiveStates() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	count := 0
	for _, entry := range s.states {
		if !entry.expired(now) {
			count++
		}
	}
	return count
}

// Close stops the cleanup goroutine and waits for it to exit.
func (s *MemoryStateStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStateStore) startCleanupRoutine(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanupExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}
