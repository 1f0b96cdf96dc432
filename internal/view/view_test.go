package view

import (
	"math/rand"
	"sort"
	"testing"

	"trivia-quiz/internal/domain"
)

func TestDecodeHTML(t *testing.T) {
	in := "&quot;Tom &amp; Jerry&quot; isn&#039;t &lt;new&gt; &apos;at all&apos;"
	want := `"Tom & Jerry" isn't <new> 'at all'`
	if got := DecodeHTML(in); got != want {
		t.Fatalf("DecodeHTML = %q, want %q", got, want)
	}
	if got := DecodeHTML("&amp;quot;"); got != "&quot;" {
		t.Fatalf("decoding must be single pass, got %q", got)
	}
}

func TestShuffleAnswersKeepsSet(t *testing.T) {
	q := sampleQuestion()
	got := ShuffleAnswers(q, rand.New(rand.NewSource(7)))
	want := q.AllAnswers()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("expected %d answers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("answer sets differ: %v vs %v", got, want)
		}
	}
	if len(q.IncorrectAnswers) != 3 || q.IncorrectAnswers[0] != "Paris" {
		t.Fatalf("question must not be mutated: %+v", q)
	}
}

func TestRenderHidesCorrectUntilSubmitted(t *testing.T) {
	q := sampleQuestion()
	state := domain.SessionState{
		ID:        "s-1",
		Phase:     domain.PhaseReady,
		Questions: []domain.Question{q},
		Answers:   []domain.Answer{domain.Chosen("Paris")},
		Remaining: 5,
	}
	v := Render(state, rand.New(rand.NewSource(1)))
	if !v.LowTime || !v.AllAnswered || v.Score != nil {
		t.Fatalf("unexpected view %+v", v)
	}
	qv := v.Questions[0]
	if qv.Prompt != `Capital of "Rome & Co"?` {
		t.Fatalf("prompt not decoded: %q", qv.Prompt)
	}
	for _, c := range qv.Choices {
		if c.Correct {
			t.Fatalf("correct answer revealed before submit")
		}
		if c.Selected != (c.Value == "Paris") {
			t.Fatalf("unexpected selection flag on %+v", c)
		}
	}

	state.Phase = domain.PhaseSubmitted
	state.Scored = true
	state.Score = 0
	v = Render(state, rand.New(rand.NewSource(1)))
	if v.Score == nil || *v.Score != 0 || v.Summary != "Your score: 0 out of 1" {
		t.Fatalf("unexpected result view %+v", v)
	}
	revealed := 0
	for _, c := range v.Questions[0].Choices {
		if c.Correct {
			revealed++
			if c.Value != "Rome" {
				t.Fatalf("wrong choice marked correct: %+v", c)
			}
		}
	}
	if revealed != 1 {
		t.Fatalf("expected exactly one revealed answer, got %d", revealed)
	}
}

func TestRenderUnansweredSlots(t *testing.T) {
	state := domain.SessionState{
		Phase:     domain.PhaseReady,
		Questions: []domain.Question{sampleQuestion(), sampleQuestion()},
		Answers:   []domain.Answer{domain.Chosen("Rome"), domain.Unanswered},
		Remaining: 30,
	}
	v := Render(state, rand.New(rand.NewSource(2)))
	if v.AllAnswered || v.LowTime {
		t.Fatalf("unexpected flags %+v", v)
	}
	if v.Questions[1].Answered {
		t.Fatalf("second question should be unanswered")
	}
}

func sampleQuestion() domain.Question {
	return domain.Question{
		Category:         "Geography",
		Type:             domain.TypeMultiple,
		Difficulty:       domain.DifficultyEasy,
		Prompt:           "Capital of &quot;Rome &amp; Co&quot;?",
		CorrectAnswer:    "Rome",
		IncorrectAnswers: []string{"Paris", "Madrid", "Berlin"},
	}
}
