package services

import (
	"context"
	"strings"

	"vkmod/internal/models"
)

type StatsRepo interface {
	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
}

type StatsService struct {
	repo StatsRepo
}

func NewStatsService(repo StatsRepo) *StatsService {
	return &StatsService{repo: repo}
}

func (s *StatsService) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	return s.repo.GetSystemStats(ctx)
}

type PostSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*models.Post, error)
}

type CommentSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*models.Comment, error)
}

const minSearchLen = 2

type SearchService struct {
	posts    PostSearcher
	comments CommentSearcher
}

func NewSearchService(posts PostSearcher, comments CommentSearcher) *SearchService {
	return &SearchService{posts: posts, comments: comments}
}

// Search ищет подстроку в текстах постов и комментариев (без учёта регистра).
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLen {
		return nil, validationf("запрос должен быть не короче %d символов", minSearchLen)
	}
	// % и _ в ILIKE спецсимволы
	query = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(query)

	posts, err := s.posts.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &models.SearchResult{Posts: posts, Comments: comments}, nil
}
