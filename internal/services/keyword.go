package services

import (
	"context"
	"strings"

	"vkmod/internal/analysis"
	"vkmod/internal/logger"
	"vkmod/internal/models"

	"go.uber.org/zap"
)

type KeywordRepo interface {
	Create(ctx context.Context, k *models.Keyword) (*models.Keyword, error)
	GetByID(ctx context.Context, id int) (*models.Keyword, error)
	List(ctx context.Context, category string) ([]*models.Keyword, error)
	ListActive(ctx context.Context) ([]*models.Keyword, error)
	Update(ctx context.Context, k *models.Keyword) error
	Delete(ctx context.Context, id int) error
}

const (
	defaultKeywordCategory = "general"
	maxKeywordLen          = 100
)

type KeywordService struct {
	repo       KeywordRepo
	moderation *ModerationService
}

func NewKeywordService(repo KeywordRepo, moderation *ModerationService) *KeywordService {
	return &KeywordService{repo: repo, moderation: moderation}
}

// normalizeKeyword приводит слово к виду, в котором оно хранится: нижний регистр,
// одиночные пробелы, ё → е. Основа считается по каждому слову фразы.
func normalizeKeyword(word string) (string, string, error) {
	tokens := analysis.Tokenize(word)
	if len(tokens) == 0 {
		return "", "", validationf("пустое ключевое слово")
	}
	norm := strings.Join(tokens, " ")
	if len([]rune(norm)) > maxKeywordLen {
		return "", "", validationf("ключевое слово длиннее %d символов", maxKeywordLen)
	}
	stems := make([]string, len(tokens))
	for i, t := range tokens {
		stems[i] = analysis.Stem(t)
	}
	return norm, strings.Join(stems, " "), nil
}

func (s *KeywordService) invalidate() {
	if s.moderation != nil {
		s.moderation.Invalidate()
	}
}

func (s *KeywordService) List(ctx context.Context, category string) ([]*models.Keyword, error) {
	list, err := s.repo.List(ctx, strings.TrimSpace(category))
	if list == nil {
		list = []*models.Keyword{}
	}
	return list, err
}

func (s *KeywordService) Get(ctx context.Context, id int) (*models.Keyword, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *KeywordService) Create(ctx context.Context, req *models.KeywordRequest) (*models.Keyword, error) {
	word, stem, err := normalizeKeyword(req.Word)
	if err != nil {
		return nil, err
	}
	k := &models.Keyword{
		Word:     word,
		Stem:     stem,
		Category: strings.TrimSpace(req.Category),
		IsActive: true,
	}
	if k.Category == "" {
		k.Category = defaultKeywordCategory
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}

	created, err := s.repo.Create(ctx, k)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	logger.Log.Info("Ключевое слово добавлено", zap.String("word", word), zap.String("stem", stem))
	return created, nil
}

func (s *KeywordService) Update(ctx context.Context, id int, req *models.KeywordRequest) (*models.Keyword, error) {
	k, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Word != "" {
		if k.Word, k.Stem, err = normalizeKeyword(req.Word); err != nil {
			return nil, err
		}
	}
	if c := strings.TrimSpace(req.Category); c != "" {
		k.Category = c
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, k); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.repo.GetByID(ctx, id)
}

func (s *KeywordService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	logger.Log.Info("Ключевое слово удалено", zap.Int("id", id))
	return nil
}
