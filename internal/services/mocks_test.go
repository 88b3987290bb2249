package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/vk"
)

type mockSettingsRepo struct {
	data map[string]*models.Setting
	gets int
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{data: map[string]*models.Setting{}}
}

func (m *mockSettingsRepo) List(context.Context) ([]*models.Setting, error) {
	var out []*models.Setting
	for _, s := range m.data {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockSettingsRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	m.gets++
	s, ok := m.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSettingsRepo) Upsert(_ context.Context, s *models.Setting) error {
	cp := *s
	cp.UpdatedAt = time.Now()
	m.data[s.Key] = &cp
	return nil
}

type mockKeywordRepo struct {
	items  map[int]*models.Keyword
	nextID int
	calls  int
	err    error
}

func newMockKeywordRepo(words ...string) *mockKeywordRepo {
	m := &mockKeywordRepo{items: map[int]*models.Keyword{}, nextID: 1}
	for _, w := range words {
		_, _ = m.Create(context.Background(), &models.Keyword{Word: w, IsActive: true, Category: "general"})
	}
	return m
}

func (m *mockKeywordRepo) Create(_ context.Context, k *models.Keyword) (*models.Keyword, error) {
	for _, e := range m.items {
		if e.Word == k.Word {
			return nil, repository.ErrConflict
		}
	}
	cp := *k
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	return &cp, nil
}

func (m *mockKeywordRepo) GetByID(_ context.Context, id int) (*models.Keyword, error) {
	k, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *mockKeywordRepo) List(_ context.Context, category string) ([]*models.Keyword, error) {
	var out []*models.Keyword
	for i := 1; i < m.nextID; i++ {
		if k, ok := m.items[i]; ok && (category == "" || k.Category == category) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockKeywordRepo) ListActive(context.Context) ([]*models.Keyword, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Keyword
	for i := 1; i < m.nextID; i++ {
		if k, ok := m.items[i]; ok && k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockKeywordRepo) Update(_ context.Context, k *models.Keyword) error {
	if _, ok := m.items[k.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *k
	m.items[k.ID] = &cp
	return nil
}

func (m *mockKeywordRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockAuthorRepo struct {
	items   map[int64]*models.Author
	nextID  int64
	scraped map[int64]int
}

func newMockAuthorRepo() *mockAuthorRepo {
	return &mockAuthorRepo{items: map[int64]*models.Author{}, nextID: 1, scraped: map[int64]int{}}
}

func (m *mockAuthorRepo) Create(_ context.Context, a *models.Author) (*models.Author, error) {
	for _, e := range m.items {
		if e.VKID == a.VKID {
			return nil, repository.ErrConflict
		}
	}
	cp := *a
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	return &cp, nil
}

func (m *mockAuthorRepo) GetByID(_ context.Context, id int64) (*models.Author, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAuthorRepo) GetByVKID(_ context.Context, vkID int64) (*models.Author, error) {
	for _, a := range m.items {
		if a.VKID == vkID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAuthorRepo) List(_ context.Context, f models.AuthorFilter) ([]*models.Author, int, error) {
	var out []*models.Author
	for i := int64(1); i < m.nextID; i++ {
		if a, ok := m.items[i]; ok && (f.Type == "" || a.Type == f.Type) {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAuthorRepo) ListActive(context.Context) ([]*models.Author, error) {
	var out []*models.Author
	for i := int64(1); i < m.nextID; i++ {
		if a, ok := m.items[i]; ok && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAuthorRepo) Update(_ context.Context, a *models.Author) error {
	if _, ok := m.items[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAuthorRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockAuthorRepo) MarkScraped(_ context.Context, id int64) error {
	m.scraped[id]++
	return nil
}

// mockPostRepo повторяет семантику upsert: решение модератора сохраняется.
type mockPostRepo struct {
	mu     sync.Mutex
	items  map[int64]*models.Post
	nextID int64
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{items: map[int64]*models.Post{}, nextID: 1}
}

func (m *mockPostRepo) Upsert(_ context.Context, p *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.items {
		if e.AuthorID == p.AuthorID && e.VKPostID == p.VKPostID {
			e.Text, e.Likes, e.Reposts, e.Views, e.CommentsCount = p.Text, p.Likes, p.Reposts, p.Views, p.CommentsCount
			e.MatchedKeywords = p.MatchedKeywords
			if e.Status != models.StatusApproved && e.Status != models.StatusRejected {
				e.Status = p.Status
			}
			cp := *e
			return &cp, nil
		}
	}
	cp := *p
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) List(_ context.Context, f models.ContentFilter) ([]*models.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.items {
		if (!p.IsDeleted || f.IncludeDeleted) && (f.Status == "" || p.Status == f.Status) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockPostRepo) SetStatus(_ context.Context, id int64, status string, matched []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	if matched != nil {
		p.MatchedKeywords = matched
	}
	return nil
}

func (m *mockPostRepo) SoftDelete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.IsDeleted = true
	return nil
}

func (m *mockPostRepo) Search(_ context.Context, query string, limit int) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.items {
		if strings.Contains(strings.ToLower(p.Text), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockCommentRepo struct {
	items  map[int64]*models.Comment
	nextID int64
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{items: map[int64]*models.Comment{}, nextID: 1}
}

func (m *mockCommentRepo) Upsert(_ context.Context, c *models.Comment) (*models.Comment, error) {
	for _, e := range m.items {
		if e.PostID == c.PostID && e.VKCommentID == c.VKCommentID {
			e.Text, e.Likes, e.MatchedKeywords = c.Text, c.Likes, c.MatchedKeywords
			if e.Status != models.StatusApproved && e.Status != models.StatusRejected {
				e.Status = c.Status
			}
			cp := *e
			return &cp, nil
		}
	}
	cp := *c
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCommentRepo) List(_ context.Context, f models.ContentFilter) ([]*models.Comment, int, error) {
	var out []*models.Comment
	for _, c := range m.items {
		if (!c.IsDeleted || f.IncludeDeleted) && (f.PostID == 0 || c.PostID == f.PostID) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockCommentRepo) SetStatus(_ context.Context, id int64, status string, matched []string) error {
	c, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	if matched != nil {
		c.MatchedKeywords = matched
	}
	return nil
}

func (m *mockCommentRepo) SoftDelete(_ context.Context, id int64) error {
	c, ok := m.items[id]
	if !ok || c.IsDeleted {
		return repository.ErrNotFound
	}
	c.IsDeleted = true
	return nil
}

func (m *mockCommentRepo) Search(_ context.Context, query string, limit int) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range m.items {
		if strings.Contains(strings.ToLower(c.Text), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockTaskRepo struct {
	items []*models.Task
}

func (m *mockTaskRepo) Enqueue(_ context.Context, t *models.Task) (*models.Task, bool, error) {
	for _, e := range m.items {
		if t.DedupKey != "" && e.DedupKey == t.DedupKey && (e.Status == models.TaskPending || e.Status == models.TaskRunning) {
			return e, false, nil
		}
	}
	cp := *t
	cp.ID = fmt.Sprintf("task-%d", len(m.items)+1)
	cp.Status = models.TaskPending
	cp.RunAt = time.Now()
	m.items = append(m.items, &cp)
	return &cp, true, nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	for _, t := range m.items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockTaskRepo) List(_ context.Context, f models.TaskFilter) ([]*models.Task, int, error) {
	var out []*models.Task
	for _, t := range m.items {
		if (f.Type == "" || t.Type == f.Type) && (f.Status == "" || t.Status == f.Status) {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *mockTaskRepo) byType(taskType string) []*models.Task {
	out, _, _ := m.List(context.Background(), models.TaskFilter{Type: taskType})
	return out
}

type mockErrorRepo struct {
	items []*models.ErrorReport
}

func (m *mockErrorRepo) Create(_ context.Context, e *models.ErrorReport) (*models.ErrorReport, error) {
	cp := *e
	cp.ID = int64(len(m.items) + 1)
	cp.CreatedAt = time.Now()
	m.items = append(m.items, &cp)
	return &cp, nil
}

func (m *mockErrorRepo) List(_ context.Context, status string, limit, offset int) ([]*models.ErrorReport, int, error) {
	var out []*models.ErrorReport
	for _, e := range m.items {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *mockErrorRepo) Resolve(_ context.Context, id int64) (*models.ErrorReport, error) {
	for _, e := range m.items {
		if e.ID == id {
			now := time.Now()
			e.Status = models.ErrorStatusResolved
			e.ResolvedAt = &now
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeVK отдаёт заранее заданные стены и комментарии.
type fakeVK struct {
	walls    map[int64][]vk.WallPost
	comments map[int64][]vk.Comment
	wallErr  error
	resolved map[string]*vk.ResolvedObject
	groups   map[int64]vk.Group
	users    map[int64]vk.User
	limits   []int
}

func (f *fakeVK) GetAllWall(_ context.Context, ownerID int64, limit int) ([]vk.WallPost, error) {
	f.limits = append(f.limits, limit)
	if f.wallErr != nil {
		return nil, f.wallErr
	}
	posts := f.walls[ownerID]
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakeVK) GetAllComments(_ context.Context, ownerID, postID int64, limit int) ([]vk.Comment, error) {
	return f.comments[postID], nil
}

func (f *fakeVK) ResolveScreenName(_ context.Context, name string) (*vk.ResolvedObject, error) {
	obj, ok := f.resolved[name]
	if !ok {
		return nil, vk.ErrNotFound
	}
	return obj, nil
}

func (f *fakeVK) GetGroups(_ context.Context, ids ...string) ([]vk.Group, error) {
	var out []vk.Group
	for _, id := range ids {
		for gid, g := range f.groups {
			if fmt.Sprint(gid) == id {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f *fakeVK) GetUsers(_ context.Context, ids ...string) ([]vk.User, error) {
	var out []vk.User
	for _, id := range ids {
		for uid, u := range f.users {
			if fmt.Sprint(uid) == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}
