package telegram

import (
	"context"
	"sync"
	"time"

	"todays-meal/internal/recipe"
)

// Session is the per-chat view state. It lives in memory only and is dropped
// after the TTL passes without activity.
type Session struct {
	Filters recipe.SearchFilters
	Recipes []recipe.Recipe
	Plan    []recipe.WeeklyPlanDay

	// RecipesTag and PlanTag hold the ID of the message showing Recipes and
	// Plan. Buttons carry the tag so taps on an older result set are refused.
	RecipesTag int
	PlanTag    int

	expiresAt time.Time
}

// SessionStore keeps sessions keyed by chat ID.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]*Session
}

// NewSessionStore creates a store whose sessions expire ttl after last use.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Get returns a copy of the chat's session, starting a fresh one with the
// default filters when none is live.
func (s *SessionStore) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.touch(chatID)
}

// Update applies fn to the chat's session under the store lock.
func (s *SessionStore) Update(chatID int64, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.touch(chatID)
	fn(sess)
	return *sess
}

// Cleanup drops expired sessions and reports how many went.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *SessionStore) touch(chatID int64) *Session {
	now := s.now()
	sess, ok := s.sessions[chatID]
	if !ok || now.After(sess.expiresAt) {
		sess = &Session{Filters: recipe.DefaultFilters()}
		s.sessions[chatID] = sess
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess
}
