package services

import (
	"context"
	"time"

	"vkmod/internal/analysis"
	"vkmod/internal/logger"
	"vkmod/internal/models"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type KeywordLister interface {
	ListActive(ctx context.Context) ([]*models.Keyword, error)
}

const activeKeywordsKey = "active"

// ModerationService сопоставляет тексты со словарём ключевых слов.
type ModerationService struct {
	keywords KeywordLister
	settings *SettingsService
	cache    *gocache.Cache
}

func NewModerationService(keywords KeywordLister, settings *SettingsService) *ModerationService {
	return &ModerationService{
		keywords: keywords,
		settings: settings,
		cache:    gocache.New(time.Minute, 5*time.Minute),
	}
}

// Invalidate сбрасывает кэш словаря после изменения ключевых слов.
func (s *ModerationService) Invalidate() {
	s.cache.Delete(activeKeywordsKey)
}

func (s *ModerationService) activeKeywords(ctx context.Context) ([]string, error) {
	if v, ok := s.cache.Get(activeKeywordsKey); ok {
		return v.([]string), nil
	}
	list, err := s.keywords.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(list))
	for _, k := range list {
		words = append(words, k.Word)
	}
	s.cache.SetDefault(activeKeywordsKey, words)
	return words, nil
}

// Moderate возвращает совпавшие ключевые слова и статус для нового контента.
func (s *ModerationService) Moderate(ctx context.Context, text string) (string, []string, error) {
	words, err := s.activeKeywords(ctx)
	if err != nil {
		return models.StatusNew, nil, err
	}
	matched := analysis.Match(analysis.Tokenize(analysis.StripHTML(text)), words)
	return s.statusFor(ctx, matched), matched, nil
}

func (s *ModerationService) statusFor(ctx context.Context, matched []string) string {
	if len(matched) > 0 && s.settings.Bool(ctx, KeyAutoFlag) {
		return models.StatusFlagged
	}
	return models.StatusNew
}

// AnalyzeText делает полный анализ произвольного текста с учётом словаря.
func (s *ModerationService) AnalyzeText(ctx context.Context, text string) (*analysis.Result, error) {
	if len([]rune(text)) > maxAnalyzeLen {
		return nil, validationf("текст длиннее %d символов", maxAnalyzeLen)
	}
	words, err := s.activeKeywords(ctx)
	if err != nil {
		logger.Log.Warn("Словарь недоступен, анализ без ключевых слов", zap.Error(err))
	}
	res := analysis.Analyze(text, words)
	return &res, nil
}

// analyzeStored анализирует текст, результат которого будет сохранён.
// Без словаря сохранять нечего: пустой список совпадений снял бы flagged.
func (s *ModerationService) analyzeStored(ctx context.Context, text string) (*analysis.Result, error) {
	words, err := s.activeKeywords(ctx)
	if err != nil {
		return nil, err
	}
	res := analysis.Analyze(text, words)
	return &res, nil
}

const maxAnalyzeLen = 100_000
