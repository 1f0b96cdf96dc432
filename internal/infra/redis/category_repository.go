package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// CategoryLoader fetches the category list from the remote trivia source.
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoriesKey holds the JSON encoded category list.
const CategoriesKey = "trivia:categories"

// CategoryRepository caches the category list in Redis and falls back to a loader on cache miss.
// Redis errors degrade to a direct load; only successful loads are cached.
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok := r.cached(ctx); ok {
		return categories, nil
	}

	result, err, _ := r.sf.Do(CategoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if categories, ok := r.cached(ctx); ok {
			return categories, nil
		}

		categories, err := r.loader.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(categories)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, CategoriesKey, raw, r.ttlWithJitter()).Err(); err != nil {
			slog.Warn("cache categories", "error", err)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (r *CategoryRepository) cached(ctx context.Context) ([]domain.Category, bool) {
	raw, err := r.client.Get(ctx, CategoriesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("read cached categories", "error", err)
		}
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil || len(categories) == 0 {
		return nil, false
	}
	return categories, true
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
