package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"trivia-quiz/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CategoryRepository loads the category list (from cache/remote source).
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// QuizService wires sessions to their question provider and tracks them by id.
type QuizService struct {
	sessions   SessionRepository
	categories CategoryRepository
	provider   QuestionProvider
	newID      func() string
}

func NewQuizService(store SessionRepository, categories CategoryRepository, provider QuestionProvider) *QuizService {
	return &QuizService{
		sessions:   store,
		categories: categories,
		provider:   provider,
		newID:      uuid.NewString,
	}
}

// NewSession registers a fresh idle session.
func (s *QuizService) NewSession() *Session {
	session := NewSession(s.newID(), s.provider)
	s.sessions.Put(session)
	return session
}

// StartSession creates a session and starts loading cfg. Invalid configs are
// rejected before a session is registered.
func (s *QuizService) StartSession(ctx context.Context, cfg domain.SessionConfig) (*Session, <-chan struct{}, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	session := s.NewSession()
	loaded, err := session.Start(ctx, cfg)
	if err != nil {
		s.Discard(session.ID())
		return nil, nil, err
	}
	slog.Info("quiz session started",
		"session", session.ID(),
		"amount", cfg.Amount,
		"category", cfg.Category,
		"difficulty", cfg.Difficulty,
		"type", cfg.Type,
	)
	return session, loaded, nil
}

// Session looks up a live session.
func (s *QuizService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SelectAnswer records an answer on a tracked session.
func (s *QuizService) SelectAnswer(sessionID string, index int, answer string) (bool, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return false, err
	}
	return session.RecordAnswer(index, answer)
}

// Submit scores a tracked session.
func (s *QuizService) Submit(sessionID string) (domain.Result, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	session.Submit()
	result, ok := session.Result()
	if !ok {
		return domain.Result{}, domain.ErrNotReady
	}
	return result, nil
}

// Discard disposes a session and forgets it.
func (s *QuizService) Discard(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Dispose()
	s.sessions.Delete(sessionID)
}

// Categories returns the remote category list. When it cannot be fetched the
// fallback list is returned with fallback set and the fetch error.
func (s *QuizService) Categories(ctx context.Context) (categories []domain.Category, fallback bool, err error) {
	categories, err = s.categories.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, false, nil
	}
	if err == nil {
		err = &domain.FetchError{Kind: domain.FetchEmpty}
	}
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		slog.Warn("using fallback categories", "kind", fetchErr.Kind, "retryable", fetchErr.Retryable(), "error", err)
	} else {
		slog.Warn("using fallback categories", "error", err)
	}
	return domain.FallbackCategories(), true, err
}
