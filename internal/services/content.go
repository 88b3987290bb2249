package services

import (
	"context"

	"vkmod/internal/analysis"
	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/repository"

	"go.uber.org/zap"
)

type PostService struct {
	repo       repository.PostRepo
	moderation *ModerationService
}

func NewPostService(repo repository.PostRepo, moderation *ModerationService) *PostService {
	return &PostService{repo: repo, moderation: moderation}
}

func (s *PostService) List(ctx context.Context, f models.ContentFilter) (*models.Page[*models.Post], error) {
	if f.Status != "" && !models.IsValidModerationStatus(f.Status) {
		return nil, validationf("неизвестный статус %q", f.Status)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return pageOf(items, total, f.Limit, f.Offset), nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PostService) SetStatus(ctx context.Context, id int64, status string) (*models.Post, error) {
	if !models.IsValidModerationStatus(status) {
		return nil, validationf("неизвестный статус %q", status)
	}
	if err := s.repo.SetStatus(ctx, id, status, nil); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("Статус поста изменён", zap.Int64("post_id", id), zap.String("status", status))
	return s.repo.GetByID(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	logger.WithCtx(ctx).Info("Пост скрыт", zap.Int64("post_id", id))
	return s.repo.SoftDelete(ctx, id)
}

// Analyze пересчитывает анализ текста поста и сохраняет совпавшие ключевые слова.
// Решение модератора (approved/rejected) не перезаписывается.
func (s *PostService) Analyze(ctx context.Context, id int64) (*analysis.Result, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.moderation.analyzeStored(ctx, p.Text)
	if err != nil {
		return nil, err
	}

	status := p.Status
	if status == models.StatusNew || status == models.StatusFlagged {
		status = s.moderation.statusFor(ctx, res.MatchedKeywords)
	}
	if err := s.repo.SetStatus(ctx, id, status, res.MatchedKeywords); err != nil {
		return nil, err
	}
	return res, nil
}

type CommentService struct {
	repo       repository.CommentRepo
	moderation *ModerationService
}

func NewCommentService(repo repository.CommentRepo, moderation *ModerationService) *CommentService {
	return &CommentService{repo: repo, moderation: moderation}
}

func (s *CommentService) List(ctx context.Context, f models.ContentFilter) (*models.Page[*models.Comment], error) {
	if f.Status != "" && !models.IsValidModerationStatus(f.Status) {
		return nil, validationf("неизвестный статус %q", f.Status)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return pageOf(items, total, f.Limit, f.Offset), nil
}

func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CommentService) SetStatus(ctx context.Context, id int64, status string) (*models.Comment, error) {
	if !models.IsValidModerationStatus(status) {
		return nil, validationf("неизвестный статус %q", status)
	}
	if err := s.repo.SetStatus(ctx, id, status, nil); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("Статус комментария изменён", zap.Int64("comment_id", id), zap.String("status", status))
	return s.repo.GetByID(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id int64) error {
	logger.WithCtx(ctx).Info("Комментарий скрыт", zap.Int64("comment_id", id))
	return s.repo.SoftDelete(ctx, id)
}

// Analyze пересчитывает анализ текста комментария по тем же правилам, что и для постов.
func (s *CommentService) Analyze(ctx context.Context, id int64) (*analysis.Result, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.moderation.analyzeStored(ctx, c.Text)
	if err != nil {
		return nil, err
	}

	status := c.Status
	if status == models.StatusNew || status == models.StatusFlagged {
		status = s.moderation.statusFor(ctx, res.MatchedKeywords)
	}
	if err := s.repo.SetStatus(ctx, id, status, res.MatchedKeywords); err != nil {
		return nil, err
	}
	return res, nil
}
