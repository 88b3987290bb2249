package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vkmod/internal/models"
	"vkmod/internal/redisstore"
	"vkmod/internal/repository"
	"vkmod/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Мок-репозиторий пользователей
type mockUserRepo struct {
	mu       sync.Mutex
	users    map[int]*models.User
	tokens   map[string]int
	nextID   int
	lastUser *models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int]*models.User{}, tokens: map[string]int{}, nextID: 1}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	if len(m.users) == 0 {
		user.Role = models.RoleAdmin
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	m.lastUser = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ListUsers(_ context.Context, limit, offset int) ([]*models.User, int, error) {
	var out []*models.User
	for i := 1; i < m.nextID; i++ {
		if u, ok := m.users[i]; ok {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *mockUserRepo) UpdateUserFields(_ context.Context, id int, in *models.UpdateUserRequest) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	return nil
}

func (m *mockUserRepo) DeleteUserByID(_ context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id int) error {
	now := time.Now()
	m.users[id].LastLoginAt = &now
	return nil
}

func (m *mockUserRepo) SaveRefreshToken(_ context.Context, userID int, token string) error {
	m.tokens[token] = userID
	return nil
}

func (m *mockUserRepo) IsRefreshTokenValid(_ context.Context, userID int, token string) (bool, error) {
	return m.tokens[token] == userID, nil
}

func (m *mockUserRepo) DeleteRefreshToken(_ context.Context, userID int, token string) error {
	delete(m.tokens, token)
	return nil
}

func (m *mockUserRepo) DeleteUserRefreshTokens(_ context.Context, userID int) error {
	for tok, uid := range m.tokens {
		if uid == userID {
			delete(m.tokens, tok)
		}
	}
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *mockUserRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newMockUserRepo()
	svc := NewAuthService(repo, redisstore.NewCounter(rdb, "attempts:"), redisstore.NewBlacklist(rdb), AuthConfig{
		JWTSecret:        "test-secret",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       24 * time.Hour,
		MaxLoginAttempts: 3,
		LoginLockTTL:     time.Minute,
	})
	return svc, repo, mr
}

func register(t *testing.T, svc *AuthService, username, password string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Email:    gofakeit.Email(),
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, repo, _ := newAuthService(t)

	first := register(t, svc, "Boss_1", "password1")
	second := register(t, svc, "reader", "password2")

	require.Equal(t, "boss_1", first.Username)
	require.Equal(t, models.RoleAdmin, first.Role)
	require.Equal(t, models.RoleViewer, second.Role)
	require.NotEmpty(t, repo.lastUser.PasswordHash)
	require.NotEqual(t, "password2", repo.lastUser.PasswordHash)
}

func TestRegister_ConcurrentSignupsYieldSingleAdmin(t *testing.T) {
	svc, repo, _ := newAuthService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "user_" + strings.Repeat("x", i+1)
			_, err := svc.Register(context.Background(), &models.RegisterRequest{
				Username: name,
				Email:    name + "@example.com",
				Password: "password1",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	admins := 0
	for _, u := range repo.users {
		if u.Role == models.RoleAdmin {
			admins++
		}
	}
	require.Len(t, repo.users, 8)
	require.Equal(t, 1, admins)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	cases := []models.RegisterRequest{
		{Username: "ab", Email: "a@b.ru", Password: "password1"},
		{Username: "bad name", Email: "a@b.ru", Password: "password1"},
		{Username: strings.Repeat("a", 33), Email: "a@b.ru", Password: "password1"},
		{Username: "gooduser", Email: "not-an-email", Password: "password1"},
		{Username: "gooduser", Email: "a@b.ru", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, &in)
		require.ErrorIs(t, err, ErrValidation, "%+v", in)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc, "dup_user", "password1")

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: "dup_user", Email: gofakeit.Email(), Password: "password1",
	})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestLogin_Success(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	u := register(t, svc, "testuser", "secret123")

	pair, err := svc.Login(context.Background(), "TestUser", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, models.RoleAdmin, pair.Role)
	require.NotNil(t, repo.users[u.ID].LastLoginAt)

	claims, err := utils.ParseToken("test-secret", pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, utils.TokenAccess, claims.TokenType)
}

func TestLogin_Fail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "unknown", "pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	svc, _, mr := newAuthService(t)
	register(t, svc, "victim", "secret123")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, "victim", "wrong-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, "victim", "secret123")
	require.ErrorIs(t, err, ErrLoginLocked, "правильный пароль не помогает, пока действует блокировка")

	mr.FastForward(2 * time.Minute)
	_, err = svc.Login(ctx, "victim", "secret123")
	require.NoError(t, err)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc, "user1", "secret123")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(ctx, "user1", "wrong-pass")
	}
	_, err := svc.Login(ctx, "user1", "secret123")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(ctx, "user1", "wrong-pass")
	}
	_, err = svc.Login(ctx, "user1", "secret123")
	require.NoError(t, err)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	u := register(t, svc, "blocked", "secret123")
	repo.users[u.ID].IsActive = false

	_, err := svc.Login(context.Background(), "blocked", "secret123")
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	register(t, svc, "user1", "secret123")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "user1", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	require.NotContains(t, repo.tokens, pair.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken, "старый refresh повторно не принимается")

	_, err = svc.Refresh(ctx, next.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken, "access-токен не годится для refresh")
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	register(t, svc, "user1", "secret123")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "user1", "secret123")
	require.NoError(t, err)

	revoked, err := svc.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	revoked, err = svc.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, revoked)
	require.Empty(t, repo.tokens)
}

func TestUpdateUser(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	admin := register(t, svc, "admin", "secret123")
	viewer := register(t, svc, "viewer", "secret123")
	ctx := context.Background()

	_, err := svc.Login(ctx, "viewer", "secret123")
	require.NoError(t, err)

	role := models.RoleModerator
	updated, err := svc.UpdateUser(ctx, admin.ID, viewer.ID, &models.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	require.Equal(t, models.RoleModerator, updated.Role)
	for _, uid := range repo.tokens {
		require.NotEqual(t, viewer.ID, uid, "после смены роли refresh-токены отозваны")
	}

	bad := "superuser"
	_, err = svc.UpdateUser(ctx, admin.ID, viewer.ID, &models.UpdateUserRequest{Role: &bad})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateUser(ctx, admin.ID, admin.ID, &models.UpdateUserRequest{Role: &role})
	require.ErrorIs(t, err, ErrValidation)

	require.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrValidation)
	require.NoError(t, svc.DeleteUser(ctx, admin.ID, viewer.ID))
	_, err = svc.GetUserByID(ctx, viewer.ID)
	require.True(t, errors.Is(err, repository.ErrNotFound))
}
