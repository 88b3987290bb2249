package services

import (
	"context"
	"fmt"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/vk"

	"go.uber.org/zap"
)

// WallFetcher — часть vk.Service, которой пользуется сборщик.
type WallFetcher interface {
	GetAllWall(ctx context.Context, ownerID int64, limit int) ([]vk.WallPost, error)
	GetAllComments(ctx context.Context, ownerID, postID int64, limit int) ([]vk.Comment, error)
}

// Locker — распределённая блокировка (redisstore.Locker).
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type ScrapeAuthors interface {
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	MarkScraped(ctx context.Context, id int64) error
}

type PostStore interface {
	Upsert(ctx context.Context, p *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
}

type CommentStore interface {
	Upsert(ctx context.Context, c *models.Comment) (*models.Comment, error)
}

const scrapeLockTTL = 10 * time.Minute

type ScrapeResult struct {
	Posts        int `json:"posts"`
	Flagged      int `json:"flagged"`
	Comments     int `json:"comments"`
	CommentTasks int `json:"comment_tasks"`
}

type ScrapeService struct {
	authors    ScrapeAuthors
	posts      PostStore
	comments   CommentStore
	vk         WallFetcher
	locker     Locker
	tasks      TaskEnqueuer
	moderation *ModerationService
	settings   *SettingsService
}

func NewScrapeService(
	authors ScrapeAuthors,
	posts PostStore,
	comments CommentStore,
	fetcher WallFetcher,
	locker Locker,
	tasks TaskEnqueuer,
	moderation *ModerationService,
	settings *SettingsService,
) *ScrapeService {
	return &ScrapeService{
		authors:    authors,
		posts:      posts,
		comments:   comments,
		vk:         fetcher,
		locker:     locker,
		tasks:      tasks,
		moderation: moderation,
		settings:   settings,
	}
}

func (s *ScrapeService) lock(ctx context.Context, key string) (func(), error) {
	release, ok, err := s.locker.Acquire(ctx, key, scrapeLockTTL)
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, key)
	}
	return release, nil
}

// ScrapeAuthor забирает последние посты со стены автора, прогоняет их через модерацию
// и ставит в очередь сбор комментариев. Параллельный сбор одного автора исключён блокировкой.
func (s *ScrapeService) ScrapeAuthor(ctx context.Context, authorID int64) (*ScrapeResult, error) {
	author, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	res := &ScrapeResult{}
	if !author.IsActive {
		logger.Log.Info("Автор отключён, сбор пропущен", zap.Int64("author_id", authorID))
		return res, nil
	}

	release, err := s.lock(ctx, fmt.Sprintf("scrape:author:%d", authorID))
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	wall, err := s.vk.GetAllWall(ctx, author.VKID, s.settings.Int(ctx, KeyScrapePostsLimit))
	if err != nil {
		return nil, fmt.Errorf("стена автора %d: %w", authorID, err)
	}
	commentsLimit := s.settings.Int(ctx, KeyScrapeCommentsLimit)

	for _, wp := range wall {
		status, matched, err := s.moderation.Moderate(ctx, wp.Text)
		if err != nil {
			return res, err
		}
		saved, err := s.posts.Upsert(ctx, &models.Post{
			AuthorID:        author.ID,
			VKPostID:        wp.ID,
			Text:            wp.Text,
			Likes:           wp.Likes.Count,
			Reposts:         wp.Reposts.Count,
			Views:           wp.Views.Count,
			CommentsCount:   wp.Comments.Count,
			PublishedAt:     wp.PublishedAt(),
			Status:          status,
			MatchedKeywords: matched,
		})
		if err != nil {
			return res, err
		}
		res.Posts++
		if saved.Status == models.StatusFlagged {
			res.Flagged++
		}

		if wp.Comments.Count > 0 && commentsLimit > 0 {
			_, created, err := s.tasks.Enqueue(ctx, models.TaskScrapeComments,
				models.PostPayload{PostID: saved.ID}, ScrapeCommentsKey(saved.ID))
			if err != nil {
				return res, err
			}
			if created {
				res.CommentTasks++
			}
		}
	}

	if err := s.authors.MarkScraped(ctx, author.ID); err != nil {
		logger.Log.Warn("Не удалось отметить время сбора", zap.Int64("author_id", author.ID), zap.Error(err))
	}
	logger.Log.Info("Сбор стены завершён",
		zap.Int64("author_id", author.ID),
		zap.Int("posts", res.Posts),
		zap.Int("flagged", res.Flagged),
		zap.Int("comment_tasks", res.CommentTasks),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// ScrapeComments собирает комментарии к уже сохранённому посту.
func (s *ScrapeService) ScrapeComments(ctx context.Context, postID int64) (*ScrapeResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.authors.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	res := &ScrapeResult{}
	limit := s.settings.Int(ctx, KeyScrapeCommentsLimit)
	if limit <= 0 || post.IsDeleted {
		return res, nil
	}

	release, err := s.lock(ctx, fmt.Sprintf("scrape:post:%d", postID))
	if err != nil {
		return nil, err
	}
	defer release()

	list, err := s.vk.GetAllComments(ctx, author.VKID, post.VKPostID, limit)
	if err != nil {
		return nil, fmt.Errorf("комментарии поста %d: %w", postID, err)
	}
	for _, c := range list {
		status, matched, err := s.moderation.Moderate(ctx, c.Text)
		if err != nil {
			return res, err
		}
		saved, err := s.comments.Upsert(ctx, &models.Comment{
			PostID:          post.ID,
			VKCommentID:     c.ID,
			FromID:          c.FromID,
			Text:            c.Text,
			Likes:           c.Likes.Count,
			PublishedAt:     c.PublishedAt(),
			Status:          status,
			MatchedKeywords: matched,
		})
		if err != nil {
			return res, err
		}
		res.Comments++
		if saved.Status == models.StatusFlagged {
			res.Flagged++
		}
	}
	logger.Log.Info("Комментарии собраны",
		zap.Int64("post_id", postID), zap.Int("comments", res.Comments), zap.Int("flagged", res.Flagged))
	return res, nil
}
