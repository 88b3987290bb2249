package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"vkmod/internal/logger"

	"go.uber.org/zap"
)

// VK отдаёт не больше 100 записей стены/комментариев за запрос.
const pageSize = 100

// Долгоживущие сущности (имена, типы объектов) кэшируем дольше контента.
const metaTTL = time.Hour

type Service struct {
	repo       *Repository
	contentTTL atomic.Int64
}

func NewService(repo *Repository, contentTTL time.Duration) *Service {
	s := &Service{repo: repo}
	s.SetContentTTL(contentTTL)
	return s
}

// SetContentTTL меняет время жизни кэша для стен и комментариев на лету.
func (s *Service) SetContentTTL(ttl time.Duration) {
	s.contentTTL.Store(int64(ttl))
}

func (s *Service) ttl() time.Duration { return time.Duration(s.contentTTL.Load()) }

// Repository нужен админке: статистика и сброс кэша.
func (s *Service) Repository() *Repository { return s.repo }

func (s *Service) call(ctx context.Context, method string, params url.Values, ttl time.Duration, out any) error {
	raw, err := s.repo.Call(ctx, method, params, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrAPI, method, err)
	}
	return nil
}

// ResolveScreenName определяет тип и id объекта по короткому имени (apiclub, id1, club1).
func (s *Service) ResolveScreenName(ctx context.Context, screenName string) (*ResolvedObject, error) {
	screenName = normalizeScreenName(screenName)
	if screenName == "" {
		return nil, fmt.Errorf("%w: пустое короткое имя", ErrInvalidParam)
	}

	raw, err := s.repo.Call(ctx, "utils.resolveScreenName", url.Values{"screen_name": {screenName}}, metaTTL)
	if err != nil {
		return nil, err
	}
	// для несуществующего имени VK возвращает пустой массив
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "[]" || trimmed == "null" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, screenName)
	}
	var obj ResolvedObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: utils.resolveScreenName: %v", ErrAPI, err)
	}
	return &obj, nil
}

// normalizeScreenName принимает и ссылки вида https://vk.com/apiclub.
func normalizeScreenName(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://", "http://", "m.vk.com/", "vk.com/", "@"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

func (s *Service) GetGroups(ctx context.Context, ids ...string) ([]Group, error) {
	raw, err := s.repo.Call(ctx, "groups.getById", url.Values{"group_ids": {strings.Join(ids, ",")}}, metaTTL)
	if err != nil {
		return nil, err
	}
	// начиная с 5.194 ответ приходит объектом {groups: [...]}, раньше был массив
	var wrapped struct {
		Groups []Group `json:"groups"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Groups != nil {
		return wrapped.Groups, nil
	}
	var groups []Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: groups.getById: %v", ErrAPI, err)
	}
	return groups, nil
}

func (s *Service) GetUsers(ctx context.Context, ids ...string) ([]User, error) {
	var users []User
	err := s.call(ctx, "users.get", url.Values{
		"user_ids": {strings.Join(ids, ",")},
		"fields":   {"screen_name"},
	}, metaTTL, &users)
	return users, err
}

func (s *Service) GetWall(ctx context.Context, ownerID int64, offset, count int) (*WallPage, error) {
	if count <= 0 || count > pageSize {
		count = pageSize
	}
	var page WallPage
	err := s.call(ctx, "wall.get", url.Values{
		"owner_id": {strconv.FormatInt(ownerID, 10)},
		"offset":   {strconv.Itoa(offset)},
		"count":    {strconv.Itoa(count)},
	}, s.ttl(), &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetComments(ctx context.Context, ownerID, postID int64, offset, count int) (*CommentsPage, error) {
	if count <= 0 || count > pageSize {
		count = pageSize
	}
	var page CommentsPage
	err := s.call(ctx, "wall.getComments", url.Values{
		"owner_id":   {strconv.FormatInt(ownerID, 10)},
		"post_id":    {strconv.FormatInt(postID, 10)},
		"offset":     {strconv.Itoa(offset)},
		"count":      {strconv.Itoa(count)},
		"need_likes": {"1"},
		"sort":       {"asc"},
	}, s.ttl(), &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAllWall листает стену страницами по 100, пока не наберёт limit записей или стена не кончится.
func (s *Service) GetAllWall(ctx context.Context, ownerID int64, limit int) ([]WallPost, error) {
	var out []WallPost
	for offset := 0; limit <= 0 || len(out) < limit; {
		page, err := s.GetWall(ctx, ownerID, offset, pageSize)
		if err != nil {
			return out, err
		}
		out = append(out, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Count {
			break
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	logger.Log.Debug("VK: стена получена", zap.Int64("owner_id", ownerID), zap.Int("count", len(out)))
	return out, nil
}

// GetAllComments собирает комментарии первого уровня, пропуская удалённые.
func (s *Service) GetAllComments(ctx context.Context, ownerID, postID int64, limit int) ([]Comment, error) {
	var out []Comment
	for offset := 0; limit <= 0 || len(out) < limit; {
		page, err := s.GetComments(ctx, ownerID, postID, offset, pageSize)
		if err != nil {
			return out, err
		}
		for _, c := range page.Items {
			if !c.Deleted {
				out = append(out, c)
			}
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Count {
			break
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
