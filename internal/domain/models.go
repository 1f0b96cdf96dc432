package domain

import "time"

// Difficulty is the Open Trivia DB difficulty identifier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType is the Open Trivia DB question type identifier.
type QuestionType string

const (
	TypeMultiple QuestionType = "multiple"
	TypeBoolean  QuestionType = "boolean"
)

func (t QuestionType) Valid() bool {
	return t == TypeMultiple || t == TypeBoolean
}

// Label is the human readable name shown in pickers.
func (t QuestionType) Label() string {
	switch t {
	case TypeMultiple:
		return "Multiple Choice"
	case TypeBoolean:
		return "True / False"
	}
	return string(t)
}

// Question is one trivia question as delivered by the remote source.
// Text fields are still HTML-entity encoded.
type Question struct {
	Category         string       `json:"category"`
	Type             QuestionType `json:"type"`
	Difficulty       Difficulty   `json:"difficulty"`
	Prompt           string       `json:"question"`
	CorrectAnswer    string       `json:"correct_answer"`
	IncorrectAnswers []string     `json:"incorrect_answers"`
}

// AllAnswers returns the incorrect answers followed by the correct one.
// Display order is decided by the presentation layer.
func (q Question) AllAnswers() []string {
	answers := make([]string, 0, len(q.IncorrectAnswers)+1)
	answers = append(answers, q.IncorrectAnswers...)
	return append(answers, q.CorrectAnswer)
}

// Answer is a per-question slot. The zero value means unanswered and never
// matches a correct answer, not even an empty one.
type Answer struct {
	Text string `json:"text"`
	Set  bool   `json:"set"`
}

// Unanswered is the empty slot value.
var Unanswered = Answer{}

// Chosen builds a filled slot.
func Chosen(text string) Answer {
	return Answer{Text: text, Set: true}
}

// Matches reports whether the slot holds exactly the given answer.
func (a Answer) Matches(correct string) bool {
	return a.Set && a.Text == correct
}

// Category is an entry of the remote category list.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FallbackCategories is used by callers when the category list cannot be fetched.
func FallbackCategories() []Category {
	return []Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 18, Name: "Science: Computers"},
		{ID: 22, Name: "Geography"},
	}
}

// Phase is the lifecycle state of a quiz session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseSubmitted:
		return "submitted"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SubmitReason records what ended a session.
type SubmitReason string

const (
	SubmitManual  SubmitReason = "manual"
	SubmitTimeout SubmitReason = "timeout"
)

// Change names the operation that produced a state snapshot.
type Change string

const (
	ChangeInit     Change = "init"
	ChangeStart    Change = "start"
	ChangeLoad     Change = "load"
	ChangeAnswer   Change = "answer"
	ChangeTick     Change = "tick"
	ChangeSubmit   Change = "submit"
	ChangeDisposed Change = "disposed"
)

// SessionState is a point-in-time copy of a session, safe to share.
type SessionState struct {
	ID          string       `json:"id"`
	Phase       Phase        `json:"phase"`
	Change      Change       `json:"change"`
	Questions   []Question   `json:"questions"`
	Answers     []Answer     `json:"answers"`
	Remaining   int          `json:"remaining"`
	Score       int          `json:"score"`
	Scored      bool         `json:"scored"`
	Reason      SubmitReason `json:"reason,omitempty"`
	Error       string       `json:"error,omitempty"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

// Result summarizes a submitted session.
type Result struct {
	SessionID   string       `json:"sessionId"`
	Score       int          `json:"score"`
	Total       int          `json:"total"`
	Reason      SubmitReason `json:"reason"`
	Answers     []Answer     `json:"answers"`
	SubmittedAt time.Time    `json:"submittedAt"`
}
