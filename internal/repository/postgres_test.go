package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"vkmod/internal/db"
	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// newTestPool подключается к TEST_DATABASE_URL, применяет миграции и очищает таблицы.
// Без переменной окружения тесты пропускаются.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	require.NoError(t, db.MigrateDSN(dsn))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `
		TRUNCATE users, refresh_tokens, authors, posts, comments, keywords,
		         error_reports, settings, tasks RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedAuthor(t *testing.T, pool *pgxpool.Pool) *models.Author {
	t.Helper()
	a, err := NewAuthorRepo(pool).Create(context.Background(), &models.Author{
		VKID: -1, ScreenName: "apiclub", Name: "API Club", Type: "group", IsActive: true,
	})
	require.NoError(t, err)
	return a
}

func TestPostgres_PostUpsertKeepsModeratorDecision(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	author := seedAuthor(t, pool)
	repo := NewPostRepo(pool)

	in := &models.Post{AuthorID: author.ID, VKPostID: 100, Text: "первый", PublishedAt: time.Now(),
		Status: models.StatusNew}
	p, err := repo.Upsert(ctx, in)
	require.NoError(t, err)

	for _, decided := range []string{models.StatusApproved, models.StatusRejected} {
		require.NoError(t, repo.SetStatus(ctx, p.ID, decided, nil))

		in.Text, in.Likes, in.Status = "обновлённый "+decided, 7, models.StatusFlagged
		in.MatchedKeywords = []string{"спам"}
		got, err := repo.Upsert(ctx, in)
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
		require.Equal(t, decided, got.Status)
		require.Equal(t, "обновлённый "+decided, got.Text)
		require.Equal(t, 7, got.Likes)
		require.Equal(t, []string{"спам"}, got.MatchedKeywords)
	}

	require.NoError(t, repo.SetStatus(ctx, p.ID, models.StatusNew, []string{}))
	in.Status = models.StatusFlagged
	got, err := repo.Upsert(ctx, in)
	require.NoError(t, err)
	require.Equal(t, models.StatusFlagged, got.Status, "статус без решения модератора пересчитывается")
}

func TestPostgres_CommentUpsertKeepsModeratorDecision(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	author := seedAuthor(t, pool)
	post, err := NewPostRepo(pool).Upsert(ctx, &models.Post{AuthorID: author.ID, VKPostID: 1,
		PublishedAt: time.Now(), Status: models.StatusNew})
	require.NoError(t, err)
	repo := NewCommentRepo(pool)

	in := &models.Comment{PostID: post.ID, VKCommentID: 5, Text: "спам", PublishedAt: time.Now(),
		Status: models.StatusFlagged, MatchedKeywords: []string{"спам"}}
	c, err := repo.Upsert(ctx, in)
	require.NoError(t, err)
	require.NoError(t, repo.SetStatus(ctx, c.ID, models.StatusApproved, nil))

	in.Text = "спам, но уже отредактированный"
	got, err := repo.Upsert(ctx, in)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
	require.Equal(t, models.StatusApproved, got.Status)
	require.Equal(t, in.Text, got.Text)

	require.NoError(t, repo.SetStatus(ctx, c.ID, models.StatusFlagged, []string{"спам", "реклама"}))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"спам", "реклама"}, got.MatchedKeywords)

	require.ErrorIs(t, repo.SetStatus(ctx, c.ID+100, models.StatusApproved, nil), ErrNotFound)
}

func TestPostgres_EnqueueDedup(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)
	newTask := func() *models.Task {
		return &models.Task{Type: models.TaskScrapeAuthor, DedupKey: "scrape_author:1", MaxAttempts: 3}
	}

	first, created, err := repo.Enqueue(ctx, newTask())
	require.NoError(t, err)
	require.True(t, created)

	dup, created, err := repo.Enqueue(ctx, newTask())
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, dup.ID)

	claimed, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, claimed.ID)

	dup, created, err = repo.Enqueue(ctx, newTask())
	require.NoError(t, err)
	require.False(t, created, "задача в running тоже блокирует дубликат")
	require.Equal(t, first.ID, dup.ID)

	require.NoError(t, repo.MarkSucceeded(ctx, first.ID))
	next, created, err := repo.Enqueue(ctx, newTask())
	require.NoError(t, err)
	require.True(t, created, "после завершения задачу можно поставить снова")
	require.NotEqual(t, first.ID, next.ID)

	free1, created1, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor, MaxAttempts: 3})
	require.NoError(t, err)
	free2, created2, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor, MaxAttempts: 3})
	require.NoError(t, err)
	require.True(t, created1 && created2, "пустой dedup_key не дедуплицируется")
	require.NotEqual(t, free1.ID, free2.ID)
}

func TestPostgres_ClaimSkipsLockedAndCountsAttempts(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)

	first, _, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor, DedupKey: "a", MaxAttempts: 3})
	require.NoError(t, err)
	second, _, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor, DedupKey: "b", MaxAttempts: 3})
	require.NoError(t, err)

	// чужая транзакция держит первую задачу
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()
	_, err = tx.Exec(ctx, `SELECT id FROM tasks WHERE dedup_key = 'a' FOR UPDATE`)
	require.NoError(t, err)

	claimCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	got, err := repo.Claim(claimCtx)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
	require.Equal(t, models.TaskRunning, got.Status)
	require.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.StartedAt)

	_, err = repo.Claim(claimCtx)
	require.ErrorIs(t, err, ErrNotFound, "заблокированная задача пропускается, а не ожидается")

	require.NoError(t, tx.Rollback(ctx))
	got, err = repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, 1, got.Attempts)
}

func TestPostgres_ConcurrentClaimsAreDistinct(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)

	const n = 6
	for i := 0; i < n; i++ {
		_, _, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor,
			DedupKey: fmt.Sprintf("scrape_author:%d", i), MaxAttempts: 3})
		require.NoError(t, err)
	}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, err := repo.Claim(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[task.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for id, times := range seen {
		require.Equal(t, 1, times, id)
	}
}

func TestPostgres_ReleaseAndRequeueStale(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)

	task, _, err := repo.Enqueue(ctx, &models.Task{Type: models.TaskScrapeAuthor, DedupKey: "x", MaxAttempts: 3})
	require.NoError(t, err)

	claimed, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, claimed.Attempts)

	require.NoError(t, repo.Release(ctx, task.ID, "остановка"))
	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskPending, got.Status)
	require.Zero(t, got.Attempts, "прерванный запуск не тратит попытку")
	require.Nil(t, got.StartedAt)
	require.Equal(t, "остановка", got.LastError)

	_, err = repo.Claim(ctx)
	require.NoError(t, err)

	n, err := repo.RequeueStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	require.Zero(t, n, "свежая задача не считается зависшей")

	_, err = pool.Exec(ctx, `UPDATE tasks SET started_at = NOW() - INTERVAL '1 hour' WHERE id = $1`, task.ID)
	require.NoError(t, err)
	n, err = repo.RequeueStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskPending, got.Status)
	require.Equal(t, 1, got.Attempts)

	again, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, task.ID, again.ID)
	require.Equal(t, 2, again.Attempts)
}

func TestPostgres_FirstUserIsSingleAdmin(t *testing.T) {
	pool := newTestPool(t)
	repo := NewUserRepository(pool)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.CreateUser(context.Background(), &models.User{
				Username:     fmt.Sprintf("user_%d", i),
				Email:        fmt.Sprintf("user_%d@example.com", i),
				PasswordHash: "hash",
				Role:         models.RoleViewer,
				IsActive:     true,
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var admins int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins))
	require.Equal(t, 1, admins)
}
