package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

type categoriesResponse struct {
	Categories   []domain.Category `json:"categories"`
	Difficulties []string          `json:"difficulties"`
	Types        []typeOption      `json:"types"`
	Fallback     bool              `json:"fallback"`
	Error        string            `json:"error,omitempty"`
}

type typeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoriesHandler serves the options a client needs to build a quiz form.
// Remote failures still answer 200 with the fallback list.
func CategoriesHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		categories, fallback, err := service.Categories(r.Context())
		resp := categoriesResponse{
			Categories: categories,
			Difficulties: []string{
				string(domain.DifficultyEasy),
				string(domain.DifficultyMedium),
				string(domain.DifficultyHard),
			},
			Types: []typeOption{
				{Value: string(domain.TypeMultiple), Label: domain.TypeMultiple.Label()},
				{Value: string(domain.TypeBoolean), Label: domain.TypeBoolean.Label()},
			},
			Fallback: fallback,
		}
		if err != nil {
			resp.Error = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Warn("write categories", "error", err)
		}
	}
}
