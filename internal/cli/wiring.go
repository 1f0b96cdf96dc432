package cli

import (
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/memory"
	"trivia-quiz/internal/infra/opentdb"
	redisstore "trivia-quiz/internal/infra/redis"
)

// buildService wires the quiz service from config. Redis backs the category
// cache and session markers when an address is configured.
func buildService(cfg config.Config) (*app.QuizService, func()) {
	client := opentdb.NewClient(cfg.Trivia.BaseURL, nil, config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second))
	categoriesTTL := config.TTLDuration(cfg.Trivia.CategoriesTTL, time.Hour)

	if cfg.Redis.Addr == "" {
		service := app.NewQuizService(
			memory.NewSessionStore(),
			memory.NewCategoryRepository(client, categoriesTTL),
			client,
		)
		return service, func() {}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	service := app.NewQuizService(
		redisstore.NewSessionStore(redisClient, redisTTL),
		redisstore.NewCategoryRepository(redisClient, client, categoriesTTL),
		client,
	)
	return service, func() { _ = redisClient.Close() }
}
