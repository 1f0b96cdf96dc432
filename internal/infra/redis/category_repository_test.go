package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestCategoryRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{CategoryLoader: memory.NewStaticCategoryLoader(sampleCategories())}
	repo := NewCategoryRepository(client, loader, time.Minute)

	categories, err := repo.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("get categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(CategoriesKey) {
		t.Fatalf("expected categories cached under %s", CategoriesKey)
	}
	if ttl := mr.TTL(CategoriesKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	_, _ = repo.GetCategories(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestCategoryRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{CategoryLoader: memory.NewStaticCategoryLoader(sampleCategories())}
	repo := NewCategoryRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.GetCategories(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetCategories(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestCategoryRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	fetchErr := &domain.FetchError{Kind: domain.FetchNetwork, Err: errors.New("dial tcp: refused")}
	repo := NewCategoryRepository(newClient(mr), memory.NewFailingCategoryLoader(fetchErr), time.Minute)

	if _, err := repo.GetCategories(context.Background()); !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if mr.Exists(CategoriesKey) {
		t.Fatalf("failed loads must not be cached")
	}
}

type countingLoader struct {
	memory.CategoryLoader
	calls int
}

func (l *countingLoader) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.FetchCategories(ctx)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 18, Name: "Science: Computers"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
