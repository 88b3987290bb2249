package services

import (
	"context"
	"encoding/json"
	"fmt"

	"vkmod/internal/logger"
	"vkmod/internal/models"

	"go.uber.org/zap"
)

type TaskRepo interface {
	Enqueue(ctx context.Context, t *models.Task) (*models.Task, bool, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, f models.TaskFilter) ([]*models.Task, int, error)
}

type ActiveAuthors interface {
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	ListActive(ctx context.Context) ([]*models.Author, error)
}

// TaskEnqueuer — постановка задачи в очередь с дедупликацией.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any, dedupKey string) (*models.Task, bool, error)
}

type TaskService struct {
	repo        TaskRepo
	authors     ActiveAuthors
	maxAttempts int
}

func NewTaskService(repo TaskRepo, authors ActiveAuthors, maxAttempts int) *TaskService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TaskService{repo: repo, authors: authors, maxAttempts: maxAttempts}
}

func isValidTaskType(t string) bool {
	switch t {
	case models.TaskScrapeAuthor, models.TaskScrapeComments, models.TaskAnalyzePost:
		return true
	}
	return false
}

func (s *TaskService) Enqueue(ctx context.Context, taskType string, payload any, dedupKey string) (*models.Task, bool, error) {
	if !isValidTaskType(taskType) {
		return nil, false, validationf("неизвестный тип задачи %q", taskType)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}
	t, created, err := s.repo.Enqueue(ctx, &models.Task{
		Type:        taskType,
		Payload:     raw,
		DedupKey:    dedupKey,
		MaxAttempts: s.maxAttempts,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Log.Debug("Задача поставлена в очередь",
			zap.String("task_id", t.ID), zap.String("type", taskType), zap.String("dedup_key", dedupKey))
	}
	return t, created, nil
}

func ScrapeAuthorKey(authorID int64) string { return fmt.Sprintf("%s:%d", models.TaskScrapeAuthor, authorID) }
func ScrapeCommentsKey(postID int64) string { return fmt.Sprintf("%s:%d", models.TaskScrapeComments, postID) }
func AnalyzePostKey(postID int64) string { return fmt.Sprintf("%s:%d", models.TaskAnalyzePost, postID) }

// EnqueueScrapeAuthor ставит сбор стены одного автора. Неактивных авторов не собираем.
func (s *TaskService) EnqueueScrapeAuthor(ctx context.Context, authorID int64) (*models.Task, bool, error) {
	a, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		return nil, false, err
	}
	if !a.IsActive {
		return nil, false, validationf("автор %d отключён от сбора", authorID)
	}
	return s.Enqueue(ctx, models.TaskScrapeAuthor, models.AuthorPayload{AuthorID: a.ID}, ScrapeAuthorKey(a.ID))
}

// EnqueueScrapeAll ставит сбор для всех активных авторов. Уже стоящие в очереди не дублируются.
func (s *TaskService) EnqueueScrapeAll(ctx context.Context) ([]*models.Task, error) {
	authors, err := s.authors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Task, 0, len(authors))
	created := 0
	for _, a := range authors {
		t, isNew, err := s.Enqueue(ctx, models.TaskScrapeAuthor, models.AuthorPayload{AuthorID: a.ID}, ScrapeAuthorKey(a.ID))
		if err != nil {
			return out, err
		}
		if isNew {
			created++
		}
		out = append(out, t)
	}
	logger.Log.Info("Плановый сбор поставлен в очередь", zap.Int("authors", len(authors)), zap.Int("new_tasks", created))
	return out, nil
}

func (s *TaskService) EnqueueAnalyzePost(ctx context.Context, postID int64) (*models.Task, bool, error) {
	return s.Enqueue(ctx, models.TaskAnalyzePost, models.PostPayload{PostID: postID}, AnalyzePostKey(postID))
}

func (s *TaskService) List(ctx context.Context, f models.TaskFilter) (*models.Page[*models.Task], error) {
	if f.Type != "" && !isValidTaskType(f.Type) {
		return nil, validationf("неизвестный тип задачи %q", f.Type)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return pageOf(items, total, f.Limit, f.Offset), nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}
