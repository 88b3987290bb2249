package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/vk"

	"go.uber.org/zap"
)

// VKResolver — часть vk.Service, нужная для добавления автора по ссылке.
type VKResolver interface {
	ResolveScreenName(ctx context.Context, screenName string) (*vk.ResolvedObject, error)
	GetGroups(ctx context.Context, ids ...string) ([]vk.Group, error)
	GetUsers(ctx context.Context, ids ...string) ([]vk.User, error)
}

type AuthorService struct {
	repo repository.AuthorRepo
	vk   VKResolver
}

func NewAuthorService(repo repository.AuthorRepo, resolver VKResolver) *AuthorService {
	return &AuthorService{repo: repo, vk: resolver}
}

func (s *AuthorService) List(ctx context.Context, f models.AuthorFilter) (*models.Page[*models.Author], error) {
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return pageOf(items, total, f.Limit, f.Offset), nil
}

func (s *AuthorService) Get(ctx context.Context, id int64) (*models.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func validateAuthor(a *models.Author) error {
	a.Name = strings.TrimSpace(a.Name)
	a.ScreenName = strings.TrimSpace(a.ScreenName)
	switch a.Type {
	case models.AuthorTypeUser:
		if a.VKID <= 0 {
			return validationf("у пользователя vk_id должен быть положительным")
		}
	case models.AuthorTypeGroup:
		if a.VKID >= 0 {
			return validationf("у сообщества vk_id должен быть отрицательным")
		}
	default:
		return validationf("type должен быть user или group")
	}
	if a.Name == "" {
		a.Name = a.ScreenName
	}
	if a.Name == "" {
		return validationf("не указано имя автора")
	}
	return nil
}

func (s *AuthorService) Create(ctx context.Context, req *models.AuthorRequest) (*models.Author, error) {
	a := &models.Author{
		VKID:       req.VKID,
		ScreenName: req.ScreenName,
		Name:       req.Name,
		Type:       req.Type,
		IsActive:   true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := validateAuthor(a); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Автор добавлен", zap.Int64("id", created.ID), zap.Int64("vk_id", created.VKID))
	return created, nil
}

// Update применяет только заполненные поля запроса.
func (s *AuthorService) Update(ctx context.Context, id int64, req *models.AuthorRequest) (*models.Author, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.VKID != 0 {
		a.VKID = req.VKID
	}
	if req.ScreenName != "" {
		a.ScreenName = req.ScreenName
	}
	if req.Name != "" {
		a.Name = req.Name
	}
	if req.Type != "" {
		a.Type = req.Type
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := validateAuthor(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	logger.Log.Info("Удаление автора", zap.Int64("id", id))
	return s.repo.Delete(ctx, id)
}

// AddByScreenName находит объект в VK по короткому имени или ссылке и заводит автора.
// Если автор с таким vk_id уже есть, возвращает его и created=false.
func (s *AuthorService) AddByScreenName(ctx context.Context, screenName string) (*models.Author, bool, error) {
	obj, err := s.vk.ResolveScreenName(ctx, screenName)
	if err != nil {
		return nil, false, err
	}

	a := &models.Author{IsActive: true}
	id := strconv.FormatInt(obj.ObjectID, 10)
	switch obj.Type {
	case vk.ObjectUser:
		users, err := s.vk.GetUsers(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if len(users) == 0 {
			return nil, false, vk.ErrNotFound
		}
		a.VKID = users[0].ID
		a.Name = users[0].FullName()
		a.ScreenName = users[0].ScreenName
		a.Type = models.AuthorTypeUser
	case vk.ObjectGroup, vk.ObjectPage:
		groups, err := s.vk.GetGroups(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if len(groups) == 0 {
			return nil, false, vk.ErrNotFound
		}
		a.VKID = -groups[0].ID
		a.Name = groups[0].Name
		a.ScreenName = groups[0].ScreenName
		a.Type = models.AuthorTypeGroup
	default:
		return nil, false, validationf("объект %q (%s) не может быть автором", screenName, obj.Type)
	}

	existing, err := s.repo.GetByVKID(ctx, a.VKID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, false, err
	}
	logger.Log.Info("Автор добавлен по короткому имени",
		zap.String("screen_name", screenName), zap.Int64("vk_id", created.VKID))
	return created, true, nil
}
