package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigIncomplete is returned when a session is started without category, difficulty or type.
	ErrConfigIncomplete = errors.New("quiz config incomplete")
	// ErrInvalidAmount indicates a question count outside the allowed range.
	ErrInvalidAmount = errors.New("question amount out of range")
	// ErrFetchFailed is matched by every FetchError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidIndex indicates an answer for a question that does not exist.
	ErrInvalidIndex = errors.New("question index out of range")
	// ErrLoadInProgress rejects a second start while questions are loading.
	ErrLoadInProgress = errors.New("questions are already loading")
	// ErrAlreadyStarted rejects a start once questions are loaded.
	ErrAlreadyStarted = errors.New("quiz session already started")
	// ErrSessionDisposed is returned by operations on a discarded session.
	ErrSessionDisposed = errors.New("quiz session disposed")
	// ErrNotReady is returned when an operation needs loaded questions.
	ErrNotReady = errors.New("quiz session not ready")
	// ErrClockRunning is returned when a countdown clock is already attached.
	ErrClockRunning = errors.New("countdown clock already running")
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
)

// FetchKind classifies why a remote fetch failed.
type FetchKind string

const (
	FetchNetwork      FetchKind = "network"
	FetchStatus       FetchKind = "status"
	FetchDecode       FetchKind = "decode"
	FetchResponseCode FetchKind = "response_code"
	FetchEmpty        FetchKind = "empty"
)

// FetchError is returned by the trivia client. Callers use Kind to decide on fallbacks.
type FetchError struct {
	Kind   FetchKind
	Status int // HTTP status or API response code, when known
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("fetch failed (%s %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch failed (%s %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Retryable reports whether trying the same request again may succeed.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case FetchNetwork:
		return true
	case FetchStatus:
		return e.Status >= 500 || e.Status == 429
	case FetchResponseCode:
		return e.Status == 5
	}
	return false
}
