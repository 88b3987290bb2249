package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"vkmod/internal/analysis"
	"vkmod/internal/models"
	"vkmod/internal/services"
)

type Scraper interface {
	ScrapeAuthor(ctx context.Context, authorID int64) (*services.ScrapeResult, error)
	ScrapeComments(ctx context.Context, postID int64) (*services.ScrapeResult, error)
}

type PostAnalyzer interface {
	Analyze(ctx context.Context, id int64) (*analysis.Result, error)
}

func decode[T any](t *models.Task) (T, error) {
	var v T
	if err := json.Unmarshal(t.Payload, &v); err != nil {
		return v, Permanent(fmt.Errorf("payload задачи %s: %w", t.ID, err))
	}
	return v, nil
}

// Register подключает обработчики всех типов задач.
func Register(p *Pool, scraper Scraper, posts PostAnalyzer) {
	p.Handle(models.TaskScrapeAuthor, func(ctx context.Context, t *models.Task) error {
		in, err := decode[models.AuthorPayload](t)
		if err != nil {
			return err
		}
		if in.AuthorID <= 0 {
			return Permanent(fmt.Errorf("задача %s: не указан author_id", t.ID))
		}
		_, err = scraper.ScrapeAuthor(ctx, in.AuthorID)
		return err
	})

	p.Handle(models.TaskScrapeComments, func(ctx context.Context, t *models.Task) error {
		in, err := decode[models.PostPayload](t)
		if err != nil {
			return err
		}
		_, err = scraper.ScrapeComments(ctx, in.PostID)
		return err
	})

	p.Handle(models.TaskAnalyzePost, func(ctx context.Context, t *models.Task) error {
		in, err := decode[models.PostPayload](t)
		if err != nil {
			return err
		}
		_, err = posts.Analyze(ctx, in.PostID)
		return err
	})
}
