package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

func TestCategoryRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CategoryLoader: NewStaticCategoryLoader(sampleCategories())}
	repo := NewCategoryRepository(loader, time.Minute)

	if _, err := repo.GetCategories(context.Background()); err != nil {
		t.Fatalf("get categories: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	categories, err := repo.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("get categories 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(categories) != 2 || categories[0].ID != 9 {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func TestCategoryRepositoryExpires(t *testing.T) {
	loader := &countingLoader{CategoryLoader: NewStaticCategoryLoader(sampleCategories())}
	repo := NewCategoryRepository(loader, time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCategories(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCategories(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCategoryRepositoryDoesNotCacheFailures(t *testing.T) {
	boom := errors.New("boom")
	loader := &countingLoader{CategoryLoader: NewFailingCategoryLoader(boom)}
	repo := NewCategoryRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetCategories(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected loader error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected failures to hit the loader each time, got %d", loader.calls)
	}
}

type countingLoader struct {
	CategoryLoader
	calls int
}

func (l *countingLoader) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.FetchCategories(ctx)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 17, Name: "Science &amp; Nature"},
	}
}
