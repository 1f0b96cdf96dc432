package app_test

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestStartSessionAndSubmit(t *testing.T) {
	service, store := newTestService(memory.NewStaticCategoryLoader(domain.FallbackCategories()))

	session, loaded, err := service.StartSession(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	waitDone(t, loaded)
	if session.ID() == "" {
		t.Fatalf("expected generated session id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected session to be tracked")
	}

	correct, err := service.SelectAnswer(session.ID(), 0, "Rome")
	if err != nil || !correct {
		t.Fatalf("expected correct answer, got %v %v", correct, err)
	}
	if _, err := service.SelectAnswer(session.ID(), 9, "Rome"); !errors.Is(err, domain.ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}

	result, err := service.Submit(session.ID())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Total != 3 || result.SessionID != session.ID() {
		t.Fatalf("unexpected result %+v", result)
	}

	service.Discard(session.ID())
	if store.Len() != 0 {
		t.Fatalf("expected session to be forgotten")
	}
	if !session.Disposed() {
		t.Fatalf("expected session disposed")
	}
	if _, err := service.Submit(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStartSessionRejectsIncompleteConfig(t *testing.T) {
	service, store := newTestService(memory.NewStaticCategoryLoader(nil))

	cfg := validConfig()
	cfg.Difficulty = ""
	if _, _, err := service.StartSession(context.Background(), cfg); !errors.Is(err, domain.ErrConfigIncomplete) {
		t.Fatalf("expected ErrConfigIncomplete, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("no session should be registered")
	}
}

func TestCategoriesFallback(t *testing.T) {
	fetchErr := &domain.FetchError{Kind: domain.FetchStatus, Status: 503}
	service, _ := newTestService(memory.NewFailingCategoryLoader(fetchErr))

	categories, fallback, err := service.Categories(context.Background())
	if !fallback || !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected fallback with fetch error, got %v %v", fallback, err)
	}
	if len(categories) != 3 || categories[0].ID != 9 || categories[1].ID != 18 || categories[2].ID != 22 {
		t.Fatalf("unexpected fallback list %+v", categories)
	}
}

func TestCategoriesRemote(t *testing.T) {
	remote := []domain.Category{{ID: 11, Name: "Entertainment: Film"}}
	service, _ := newTestService(memory.NewStaticCategoryLoader(remote))

	categories, fallback, err := service.Categories(context.Background())
	if err != nil || fallback {
		t.Fatalf("expected remote list, got fallback=%v err=%v", fallback, err)
	}
	if len(categories) != 1 || categories[0].ID != 11 {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func newTestService(loader memory.CategoryLoader) (*app.QuizService, *memory.SessionStore) {
	store := memory.NewSessionStore()
	categories := memory.NewCategoryRepository(loader, 0)
	return app.NewQuizService(store, categories, &stubProvider{questions: sampleQuestions()}), store
}
