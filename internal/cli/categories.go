package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/view"
)

// NewCategoriesCmd lists the category ids usable with play --category.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List trivia categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			service, cleanup := buildService(cfg)
			defer cleanup()
			return printCategories(cmd.Context(), service, cmd.OutOrStdout())
		},
	}
}

func printCategories(ctx context.Context, service *app.QuizService, out io.Writer) error {
	categories, fallback, err := service.Categories(ctx)
	if fallback {
		fmt.Fprintf(out, "Error: %v\nUsing fallback categories.\n", err)
	}
	for _, c := range categories {
		fmt.Fprintf(out, "%4d  %s\n", c.ID, view.DecodeHTML(c.Name))
	}
	return nil
}
