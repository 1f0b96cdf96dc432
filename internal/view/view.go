// Package view turns session state into what a player sees: decoded text,
// freshly shuffled answers and result lines. Nothing here is stored back into
// the session.
package view

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"trivia-quiz/internal/domain"
)

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&#039;", "'",
)

// DecodeHTML replaces the entities the trivia API emits.
func DecodeHTML(s string) string {
	return entityReplacer.Replace(s)
}

// ShuffleAnswers returns every answer of q in a new random order.
func ShuffleAnswers(q domain.Question, rnd *rand.Rand) []string {
	answers := q.AllAnswers()
	rnd.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	return answers
}

// NewRand returns a source seeded for one render.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Choice is one answer button. Value is sent back to the session, Label is displayed.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Correct  bool   `json:"correct,omitempty"`
}

// QuestionView is a rendered question.
type QuestionView struct {
	Index      int      `json:"index"`
	Number     int      `json:"number"`
	Prompt     string   `json:"prompt"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Choices    []Choice `json:"choices"`
	Answered   bool     `json:"answered"`
}

// SessionView is the rendered form of a session snapshot.
type SessionView struct {
	ID          string         `json:"id"`
	Phase       string         `json:"phase"`
	Remaining   int            `json:"remaining"`
	LowTime     bool           `json:"lowTime"`
	Questions   []QuestionView `json:"questions"`
	AllAnswered bool           `json:"allAnswered"`
	Score       *int           `json:"score,omitempty"`
	Total       int            `json:"total"`
	Summary     string         `json:"summary,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// lowTimeThreshold marks the countdown as urgent.
const lowTimeThreshold = 10

// Render builds a view of state. Correct answers are only revealed once the
// session is submitted.
func Render(state domain.SessionState, rnd *rand.Rand) SessionView {
	v := SessionView{
		ID:        state.ID,
		Phase:     state.Phase.String(),
		Remaining: state.Remaining,
		LowTime:   state.Phase == domain.PhaseReady && state.Remaining < lowTimeThreshold,
		Total:     len(state.Questions),
		Error:     state.Error,
	}
	reveal := state.Phase == domain.PhaseSubmitted

	allAnswered := len(state.Questions) > 0
	for i, q := range state.Questions {
		var slot domain.Answer
		if i < len(state.Answers) {
			slot = state.Answers[i]
		}
		qv := QuestionView{
			Index:      i,
			Number:     i + 1,
			Prompt:     DecodeHTML(q.Prompt),
			Category:   DecodeHTML(q.Category),
			Difficulty: Title(string(q.Difficulty)),
			Answered:   slot.Set,
		}
		for _, answer := range ShuffleAnswers(q, rnd) {
			qv.Choices = append(qv.Choices, Choice{
				Value:    answer,
				Label:    DecodeHTML(answer),
				Selected: slot.Matches(answer),
				Correct:  reveal && answer == q.CorrectAnswer,
			})
		}
		if !slot.Set {
			allAnswered = false
		}
		v.Questions = append(v.Questions, qv)
	}
	v.AllAnswered = allAnswered

	if state.Scored {
		score := state.Score
		v.Score = &score
		v.Summary = Summary(score, len(state.Questions))
	}
	return v
}

// Summary is the final result line.
func Summary(score, total int) string {
	return fmt.Sprintf("Your score: %d out of %d", score, total)
}

// Title upper-cases the first letter of s.
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
