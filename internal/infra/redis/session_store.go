package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions live in a local map; Redis only carries a liveness key per session
// holding its current phase, so operators can count active quizzes across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
	watchers map[string]*marker
}

// marker follows one session and mirrors its phase into Redis.
type marker struct {
	cancel func()
	done   chan struct{}
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
		watchers: make(map[string]*marker),
	}
}

// Put tracks session and keeps its marker in step with its phase until the
// session is deleted or disposed.
func (s *SessionStore) Put(session *app.Session) {
	updates, cancel := session.Subscribe()
	m := &marker{cancel: cancel, done: make(chan struct{})}

	_ = s.client.Set(context.Background(), s.key(session.ID()), session.Phase().String(), s.ttl).Err()

	s.mu.Lock()
	old := s.watchers[session.ID()]
	s.sessions[session.ID()] = session
	s.watchers[session.ID()] = m
	s.mu.Unlock()
	if old != nil {
		old.cancel()
		<-old.done
	}

	go s.follow(session.ID(), updates, m.done)
}

func (s *SessionStore) follow(sessionID string, updates <-chan domain.SessionState, done chan<- struct{}) {
	defer close(done)
	ctx := context.Background()
	key := s.key(sessionID)
	var written time.Time
	for state := range updates {
		switch state.Change {
		case domain.ChangeDisposed:
			return
		case domain.ChangeTick:
			// ticks only keep a live session from expiring
			if s.ttl > 0 && time.Since(written) < s.ttl/2 {
				continue
			}
			if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
				slog.Debug("refresh session marker", "session", sessionID, "error", err)
				continue
			}
		default:
			if err := s.client.Set(ctx, key, state.Phase.String(), s.ttl).Err(); err != nil {
				slog.Debug("write session marker", "session", sessionID, "error", err)
				continue
			}
		}
		written = time.Now()
	}
}

// Get returns a local session and extends its marker's expiry. The phase
// itself is only written by the session's follower.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

// Delete forgets the session. Its marker is removed once the follower has
// stopped so a late phase write cannot recreate it.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	m := s.watchers[sessionID]
	delete(s.sessions, sessionID)
	delete(s.watchers, sessionID)
	s.mu.Unlock()

	if m != nil {
		m.cancel()
		<-m.done
	}
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "trivia:session:" + sessionID
}
