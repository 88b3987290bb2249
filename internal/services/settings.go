package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	KeyScrapeInterval      = "scrape.interval"
	KeyScrapePostsLimit    = "scrape.posts_limit"
	KeyScrapeCommentsLimit = "scrape.comments_limit"
	KeyAutoFlag            = "moderation.auto_flag"
	KeyVKCacheTTL          = "vk.cache_ttl"
)

type SettingsRepo interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, s *models.Setting) error
}

type settingDef struct {
	Type        string
	Default     string
	Description string
	Validate    func(string) error
}

func intRange(min, max int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return validationf("ожидается целое число")
		}
		if n < min || n > max {
			return validationf("значение должно быть в диапазоне %d..%d", min, max)
		}
		return nil
	}
}

func durationMin(min time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return validationf("ожидается длительность, например 30m")
		}
		if d < min {
			return validationf("значение должно быть не меньше %s", min)
		}
		return nil
	}
}

func boolValue(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return validationf("ожидается true или false")
	}
	return nil
}

func defaultRegistry() map[string]settingDef {
	return map[string]settingDef{
		KeyScrapeInterval: {
			Type: models.SettingDuration, Default: "30m",
			Description: "Период планового сбора постов со всех активных авторов",
			Validate:    durationMin(time.Minute),
		},
		KeyScrapePostsLimit: {
			Type: models.SettingInt, Default: "100",
			Description: "Сколько последних постов забирать со стены за один сбор",
			Validate:    intRange(1, 1000),
		},
		KeyScrapeCommentsLimit: {
			Type: models.SettingInt, Default: "100",
			Description: "Сколько комментариев забирать к посту (0 — не собирать)",
			Validate:    intRange(0, 1000),
		},
		KeyAutoFlag: {
			Type: models.SettingBool, Default: "true",
			Description: "Помечать flagged контент с совпавшими ключевыми словами",
			Validate:    boolValue,
		},
		KeyVKCacheTTL: {
			Type: models.SettingDuration, Default: "5m",
			Description: "Время жизни кэша ответов VK API для стен и комментариев",
			Validate:    durationMin(0),
		},
	}
}

// SettingsService — реестр известных настроек поверх таблицы settings.
// Значения кэшируются в памяти, неизвестные ключи отклоняются.
type SettingsService struct {
	repo     SettingsRepo
	registry map[string]settingDef
	cache    *gocache.Cache

	mu        sync.RWMutex
	listeners map[string][]func(string)
}

// NewSettingsService принимает значения по умолчанию из конфигурации (ключ → значение).
func NewSettingsService(repo SettingsRepo, defaults map[string]string) *SettingsService {
	reg := defaultRegistry()
	for k, v := range defaults {
		def, ok := reg[k]
		if !ok || def.Validate(v) != nil {
			continue
		}
		def.Default = v
		reg[k] = def
	}
	return &SettingsService{
		repo:      repo,
		registry:  reg,
		cache:     gocache.New(time.Minute, 5*time.Minute),
		listeners: map[string][]func(string){},
	}
}

// OnChange регистрирует обработчик изменения настройки (вызывается после сохранения).
func (s *SettingsService) OnChange(key string, fn func(value string)) {
	s.mu.Lock()
	s.listeners[key] = append(s.listeners[key], fn)
	s.mu.Unlock()
}

func (s *SettingsService) notify(key, value string) {
	s.mu.RLock()
	fns := s.listeners[key]
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(value)
	}
}

func (s *SettingsService) fromDef(key string, def settingDef, value string) *models.Setting {
	return &models.Setting{Key: key, Value: value, Type: def.Type, Description: def.Description}
}

func (s *SettingsService) List(ctx context.Context) ([]*models.Setting, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*models.Setting, len(stored))
	for _, st := range stored {
		byKey[st.Key] = st
	}

	out := make([]*models.Setting, 0, len(s.registry))
	for key, def := range s.registry {
		if st, ok := byKey[key]; ok && def.Validate(st.Value) == nil {
			st.Type = def.Type
			st.Description = def.Description
			out = append(out, st)
			continue
		}
		out = append(out, s.fromDef(key, def, def.Default))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	def, ok := s.registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if v, ok := s.cache.Get(key); ok {
		st := *v.(*models.Setting)
		return &st, nil
	}

	st, err := s.repo.Get(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		st = s.fromDef(key, def, def.Default)
	case err != nil:
		return nil, err
	case def.Validate(st.Value) != nil:
		logger.Log.Warn("Некорректное значение настройки в БД, используем значение по умолчанию",
			zap.String("key", key), zap.String("value", st.Value))
		st = s.fromDef(key, def, def.Default)
	}
	st.Type = def.Type
	st.Description = def.Description
	s.cache.SetDefault(key, st)

	cp := *st
	return &cp, nil
}

func (s *SettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	def, ok := s.registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if err := def.Validate(value); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	st := s.fromDef(key, def, value)
	if err := s.repo.Upsert(ctx, st); err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, st)
	logger.Log.Info("Настройка изменена", zap.String("key", key), zap.String("value", value))
	s.notify(key, value)

	cp := *st
	return &cp, nil
}

func (s *SettingsService) value(ctx context.Context, key string) string {
	st, err := s.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("Не удалось прочитать настройку, используем значение по умолчанию",
			zap.String("key", key), zap.Error(err))
		return s.registry[key].Default
	}
	return st.Value
}

func (s *SettingsService) Duration(ctx context.Context, key string) time.Duration {
	d, _ := time.ParseDuration(s.value(ctx, key))
	return d
}

func (s *SettingsService) Int(ctx context.Context, key string) int {
	n, _ := strconv.Atoi(s.value(ctx, key))
	return n
}

func (s *SettingsService) Bool(ctx context.Context, key string) bool {
	b, _ := strconv.ParseBool(s.value(ctx, key))
	return b
}

type settingsFile struct {
	Settings []*models.Setting `yaml:"settings"`
}

// Export выгружает текущие значения всех настроек в YAML.
func (s *SettingsService) Export(ctx context.Context) ([]byte, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(settingsFile{Settings: list})
}

// Import применяет настройки из YAML. Сначала проверяется весь файл:
// при любой ошибке ничего не сохраняется.
func (s *SettingsService) Import(ctx context.Context, data []byte) (int, error) {
	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, validationf("некорректный YAML: %v", err)
	}
	for _, st := range file.Settings {
		def, ok := s.registry[st.Key]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownSetting, st.Key)
		}
		if err := def.Validate(st.Value); err != nil {
			return 0, fmt.Errorf("%s: %w", st.Key, err)
		}
	}
	for _, st := range file.Settings {
		if _, err := s.Set(ctx, st.Key, st.Value); err != nil {
			return 0, err
		}
	}
	return len(file.Settings), nil
}
