package domain

import "fmt"

const (
	MinAmount = 1
	MaxAmount = 50
	// DefaultCountdown is the number of ticks a session runs when none is configured.
	DefaultCountdown = 60
)

// SessionConfig describes the quiz a session should load.
// Category 0 means no category has been picked yet.
type SessionConfig struct {
	Amount     int          `json:"amount"`
	Category   int          `json:"category"`
	Difficulty Difficulty   `json:"difficulty"`
	Type       QuestionType `json:"type"`
	Countdown  int          `json:"countdown"`
}

// Complete reports whether category, difficulty and type are all picked.
func (c SessionConfig) Complete() bool {
	return c.Category > 0 && c.Difficulty != "" && c.Type != ""
}

// Validate checks the config before any load is attempted.
func (c SessionConfig) Validate() error {
	if !c.Complete() {
		return ErrConfigIncomplete
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrConfigIncomplete, c.Difficulty)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrConfigIncomplete, c.Type)
	}
	if c.Amount < MinAmount || c.Amount > MaxAmount {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidAmount, c.Amount, MinAmount, MaxAmount)
	}
	if c.Countdown < 0 {
		return fmt.Errorf("%w: negative countdown", ErrConfigIncomplete)
	}
	return nil
}

// CountdownOrDefault returns the configured countdown, or DefaultCountdown when unset.
func (c SessionConfig) CountdownOrDefault() int {
	if c.Countdown <= 0 {
		return DefaultCountdown
	}
	return c.Countdown
}
