package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/view"
)

// NewPlayCmd runs one timed quiz on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		amount     int
		category   int
		difficulty string
		qtype      string
		countdown  int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed trivia quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			quiz := cfg.SessionConfig()
			flags := cmd.Flags()
			if flags.Changed("amount") {
				quiz.Amount = amount
			}
			if flags.Changed("category") {
				quiz.Category = category
			}
			if flags.Changed("difficulty") {
				quiz.Difficulty = domain.Difficulty(difficulty)
			}
			if flags.Changed("type") {
				quiz.Type = domain.QuestionType(qtype)
			}
			if flags.Changed("countdown") {
				quiz.Countdown = countdown
			}

			service, cleanup := buildService(cfg)
			defer cleanup()

			p := &player{
				service: service,
				clock:   app.SystemClock,
				tick:    config.TTLDuration(cfg.Quiz.Tick, time.Second),
				lines:   readLines(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}
			_, err = p.run(cmd.Context(), quiz)
			return err
		},
	}
	cmd.Flags().IntVarP(&amount, "amount", "n", 10, "number of questions (1-50)")
	cmd.Flags().IntVarP(&category, "category", "c", 0, "category id (see the categories command)")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard")
	cmd.Flags().StringVarP(&qtype, "type", "t", "", "multiple or boolean")
	cmd.Flags().IntVar(&countdown, "countdown", domain.DefaultCountdown, "seconds before answers are submitted")
	return cmd
}

// player drives a session from line-based input.
type player struct {
	service *app.QuizService
	clock   app.Clock
	tick    time.Duration
	lines   <-chan string
	out     io.Writer
	rnd     *rand.Rand
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lines
}

func (p *player) run(ctx context.Context, quiz domain.SessionConfig) (domain.Result, error) {
	quiz, err := p.completeConfig(ctx, quiz)
	if err != nil {
		return domain.Result{}, err
	}

	session, loaded, err := p.service.StartSession(ctx, quiz)
	if err != nil {
		return domain.Result{}, err
	}
	defer p.service.Discard(session.ID())

	fmt.Fprintln(p.out, "Loading questions...")
	select {
	case <-loaded:
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
	if session.Phase() == domain.PhaseFailed {
		fmt.Fprintf(p.out, "Error: %s\n", session.ErrorMessage())
		var fetchErr *domain.FetchError
		if errors.As(session.Err(), &fetchErr) && fetchErr.Retryable() {
			fmt.Fprintln(p.out, "The trivia service is busy, try again in a few seconds.")
		}
		return domain.Result{}, session.Err()
	}

	updates, cancel := session.Subscribe()
	defer cancel()
	if err := session.StartClock(p.clock, p.tick); err != nil {
		return domain.Result{}, err
	}

	questions := session.Questions()
	fmt.Fprintf(p.out, "%d questions, %d seconds. Enter a number to answer, empty line to skip, 's' to submit.\n",
		len(questions), session.Remaining())

	rnd := p.rnd
	if rnd == nil {
		rnd = view.NewRand()
	}
play:
	for i, q := range questions {
		choices := view.ShuffleAnswers(q, rnd)
		p.printQuestion(i, q, choices)

		for {
			fmt.Fprintf(p.out, "Answer [1-%d] (%ds left): ", len(choices), session.Remaining())
			line, ok, timedOut := p.await(ctx, updates)
			if timedOut {
				fmt.Fprintln(p.out, "\nTime is up!")
				break play
			}
			if !ok || strings.EqualFold(line, "s") {
				break play
			}
			if line == "" {
				break
			}
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(choices) {
				fmt.Fprintln(p.out, "Please enter one of the listed numbers.")
				continue
			}
			session.SelectAnswer(i, choices[n-1])
			break
		}
	}

	session.Submit()
	result, _ := session.Result()
	p.printResult(session.Questions(), result)
	return result, nil
}

// await waits for an input line, the end of input or the session's submission.
func (p *player) await(ctx context.Context, updates <-chan domain.SessionState) (line string, ok bool, timedOut bool) {
	for {
		select {
		case line, ok := <-p.lines:
			return line, ok, false
		case state, open := <-updates:
			if !open || state.Phase == domain.PhaseSubmitted {
				return "", false, true
			}
		case <-ctx.Done():
			return "", false, false
		}
	}
}

// completeConfig asks for the picks the flags and config file left out.
func (p *player) completeConfig(ctx context.Context, quiz domain.SessionConfig) (domain.SessionConfig, error) {
	if quiz.Category == 0 {
		categories, fallback, _ := p.service.Categories(ctx)
		if fallback {
			fmt.Fprintln(p.out, "Could not load categories, using the fallback list.")
		}
		labels := make([]string, len(categories))
		for i, c := range categories {
			labels[i] = view.DecodeHTML(c.Name)
		}
		idx, err := p.choose("Category", labels)
		if err != nil {
			return quiz, err
		}
		quiz.Category = categories[idx].ID
	}
	if quiz.Difficulty == "" {
		options := []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
		labels := make([]string, len(options))
		for i, d := range options {
			labels[i] = view.Title(string(d))
		}
		idx, err := p.choose("Difficulty", labels)
		if err != nil {
			return quiz, err
		}
		quiz.Difficulty = options[idx]
	}
	if quiz.Type == "" {
		options := []domain.QuestionType{domain.TypeMultiple, domain.TypeBoolean}
		labels := []string{options[0].Label(), options[1].Label()}
		idx, err := p.choose("Question type", labels)
		if err != nil {
			return quiz, err
		}
		quiz.Type = options[idx]
	}
	return quiz, quiz.Validate()
}

func (p *player) choose(title string, labels []string) (int, error) {
	fmt.Fprintf(p.out, "%s:\n", title)
	for i, label := range labels {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, label)
	}
	for {
		fmt.Fprintf(p.out, "Select %s [1-%d]: ", strings.ToLower(title), len(labels))
		line, ok := <-p.lines
		if !ok {
			return 0, fmt.Errorf("%w: no %s selected", domain.ErrConfigIncomplete, strings.ToLower(title))
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(labels) {
			return n - 1, nil
		}
	}
}

func (p *player) printQuestion(i int, q domain.Question, choices []string) {
	fmt.Fprintf(p.out, "\nQuestion %d: %s\n", i+1, view.DecodeHTML(q.Prompt))
	fmt.Fprintf(p.out, "Category: %s | Difficulty: %s\n", view.DecodeHTML(q.Category), view.Title(string(q.Difficulty)))
	for n, choice := range choices {
		fmt.Fprintf(p.out, "  %d) %s\n", n+1, view.DecodeHTML(choice))
	}
}

func (p *player) printResult(questions []domain.Question, result domain.Result) {
	fmt.Fprintf(p.out, "\n%s\n", view.Summary(result.Score, result.Total))
	for i, q := range questions {
		mark := "✗"
		given := "(no answer)"
		if i < len(result.Answers) {
			if result.Answers[i].Matches(q.CorrectAnswer) {
				mark = "✓"
			}
			if result.Answers[i].Set {
				given = view.DecodeHTML(result.Answers[i].Text)
			}
		}
		fmt.Fprintf(p.out, "%s %d. %s\n    your answer: %s, correct: %s\n",
			mark, i+1, view.DecodeHTML(q.Prompt), given, view.DecodeHTML(q.CorrectAnswer))
	}
}
