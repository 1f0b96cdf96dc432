package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// QuestionProvider retrieves the questions for a session config.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, cfg domain.SessionConfig) ([]domain.Question, error)
}

// Session is a single-player quiz run: Idle -> Loading -> Ready|Failed -> Submitted.
// All methods are safe for concurrent use; state changes are serialized by mu.
type Session struct {
	id       string
	provider QuestionProvider
	clock    Clock

	mu          sync.RWMutex
	phase       domain.Phase
	cfg         domain.SessionConfig
	questions   []domain.Question
	answers     []domain.Answer
	remaining   int
	score       int
	reason      domain.SubmitReason
	submittedAt time.Time
	errMsg      string
	fetchErr    error
	disposed    bool
	generation  uint64
	cancelLoad  context.CancelFunc
	clockStop   chan struct{}
	clockDone   chan struct{}
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession creates an idle session that loads questions from provider.
func NewSession(id string, provider QuestionProvider) *Session {
	return NewSessionWithClock(id, provider, SystemClock)
}

// NewSessionWithClock stamps submissions with clock.Now.
func NewSessionWithClock(id string, provider QuestionProvider, clock Clock) *Session {
	return &Session{
		id:          id,
		provider:    provider,
		clock:       clock,
		phase:       domain.PhaseIdle,
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
}

// Start validates cfg and begins loading questions in the background.
// The returned channel is closed once the fetch result was applied or discarded.
// A start while loading is rejected; a failed session may be started again.
func (s *Session) Start(ctx context.Context, cfg domain.SessionConfig) (<-chan struct{}, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, domain.ErrSessionDisposed
	}
	switch s.phase {
	case domain.PhaseLoading:
		return nil, domain.ErrLoadInProgress
	case domain.PhaseReady, domain.PhaseSubmitted:
		return nil, domain.ErrAlreadyStarted
	}

	s.generation++
	gen := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.cfg = cfg
	s.phase = domain.PhaseLoading
	s.questions = nil
	s.answers = nil
	s.errMsg = ""
	s.fetchErr = nil
	s.broadcastLocked(domain.ChangeStart)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		questions, err := s.provider.FetchQuestions(loadCtx, cfg)
		s.applyLoad(gen, questions, err)
	}()
	return done, nil
}

func (s *Session) applyLoad(gen uint64, questions []domain.Question, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || gen != s.generation || s.phase != domain.PhaseLoading {
		slog.Debug("discarding stale question load", "session", s.id, "generation", gen)
		return
	}
	s.cancelLoad = nil

	if err == nil && len(questions) == 0 {
		err = &domain.FetchError{Kind: domain.FetchEmpty}
	}
	if err != nil {
		s.phase = domain.PhaseFailed
		s.fetchErr = err
		s.errMsg = err.Error()
		s.broadcastLocked(domain.ChangeLoad)
		return
	}

	s.questions = append([]domain.Question(nil), questions...)
	s.answers = make([]domain.Answer, len(questions))
	s.remaining = s.cfg.CountdownOrDefault()
	s.phase = domain.PhaseReady
	s.broadcastLocked(domain.ChangeLoad)
}

// SelectAnswer stores answer for the question at index and reports whether it is
// the correct one. Out-of-range indexes and non-ready sessions are ignored.
func (s *Session) SelectAnswer(index int, answer string) bool {
	correct, err := s.RecordAnswer(index, answer)
	return err == nil && correct
}

// RecordAnswer is SelectAnswer with the reason for a rejected selection.
func (s *Session) RecordAnswer(index int, answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false, domain.ErrSessionDisposed
	}
	if s.phase != domain.PhaseReady {
		return false, domain.ErrNotReady
	}
	if index < 0 || index >= len(s.questions) {
		return false, fmt.Errorf("%w: %d", domain.ErrInvalidIndex, index)
	}

	s.answers[index] = domain.Chosen(answer)
	s.broadcastLocked(domain.ChangeAnswer)
	return s.questions[index].CorrectAnswer == answer, nil
}

// Tick consumes one countdown unit. The tick that reaches zero submits the session.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.phase != domain.PhaseReady {
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.submitLocked(domain.SubmitTimeout)
		return
	}
	s.broadcastLocked(domain.ChangeTick)
}

// Submit scores the session. Repeated calls return the first score.
// Sessions that never reached Ready are left untouched and score 0.
func (s *Session) Submit() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == domain.PhaseSubmitted {
		return s.score
	}
	if s.disposed || s.phase != domain.PhaseReady {
		return 0
	}
	s.submitLocked(domain.SubmitManual)
	return s.score
}

func (s *Session) submitLocked(reason domain.SubmitReason) {
	score := 0
	for i, q := range s.questions {
		if s.answers[i].Matches(q.CorrectAnswer) {
			score++
		}
	}
	s.score = score
	s.reason = reason
	s.submittedAt = s.clock.Now()
	s.phase = domain.PhaseSubmitted
	s.stopClockLocked()
	s.broadcastLocked(domain.ChangeSubmit)
}

// StartClock drives Tick from clock every interval until the session is
// submitted, StopClock is called or the session is disposed.
func (s *Session) StartClock(clock Clock, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", every)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return domain.ErrSessionDisposed
	}
	if s.phase != domain.PhaseReady {
		return domain.ErrNotReady
	}
	if s.clockStop != nil {
		return domain.ErrClockRunning
	}

	ticker := clock.NewTicker(every)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.clockStop = stop
	s.clockDone = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				s.Tick()
			}
		}
	}()
	return nil
}

// StopClock detaches the countdown clock and waits for its goroutine to exit.
func (s *Session) StopClock() {
	s.mu.Lock()
	done := s.clockDone
	s.stopClockLocked()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Session) stopClockLocked() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
		s.clockDone = nil
	}
}

// Dispose releases the session: pending loads are cancelled and dropped, the
// clock is stopped and subscribers are closed. Later calls are no-ops.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	done := s.clockDone
	s.stopClockLocked()
	s.broadcastLocked(domain.ChangeDisposed)
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Subscribe returns a channel of state snapshots, starting with the current one.
// Slow readers only lose intermediate states; the latest is always delivered.
// The caller must invoke cancel to release the channel.
func (s *Session) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked(domain.ChangeInit)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(change domain.Change) {
	if len(s.subscribers) == 0 {
		return
	}
	state := s.snapshotLocked(change)
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func (s *Session) snapshotLocked(change domain.Change) domain.SessionState {
	state := domain.SessionState{
		ID:        s.id,
		Phase:     s.phase,
		Change:    change,
		Questions: append([]domain.Question(nil), s.questions...),
		Remaining: s.remaining,
		Error:     s.errMsg,
	}
	if s.answers != nil {
		state.Answers = append([]domain.Answer(nil), s.answers...)
	}
	if s.phase == domain.PhaseSubmitted {
		state.Score = s.score
		state.Scored = true
		state.Reason = s.reason
		state.SubmittedAt = s.submittedAt
	}
	return state
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(domain.ChangeInit)
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Session) Questions() []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Question(nil), s.questions...)
}

// Answers returns a copy of the answer slots, or nil before a successful load.
func (s *Session) Answers() []domain.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.answers == nil {
		return nil
	}
	return append([]domain.Answer(nil), s.answers...)
}

func (s *Session) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remaining
}

// Score returns the final score; ok is false until the session is submitted.
func (s *Session) Score() (score int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != domain.PhaseSubmitted {
		return 0, false
	}
	return s.score, true
}

// ErrorMessage is the load failure message of a Failed session.
func (s *Session) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Err is the load failure of a Failed session, typically a *domain.FetchError.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchErr
}

func (s *Session) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// Result summarizes a submitted session.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != domain.PhaseSubmitted {
		return domain.Result{}, false
	}
	return domain.Result{
		SessionID:   s.id,
		Score:       s.score,
		Total:       len(s.questions),
		Reason:      s.reason,
		Answers:     append([]domain.Answer(nil), s.answers...),
		SubmittedAt: s.submittedAt,
	}, true
}
