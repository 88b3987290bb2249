package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vkmod/internal/analysis"
	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/retry"
	"vkmod/internal/services"
	"vkmod/internal/vk"

	"github.com/stretchr/testify/require"
)

// memQueue — очередь в памяти с той же семантикой статусов, что у TaskRepository.
type memQueue struct {
	mu      sync.Mutex
	tasks   []*models.Task
	runAt   map[string]time.Time
	stale   int
	claimed int
}

func newMemQueue(tasks ...*models.Task) *memQueue {
	q := &memQueue{runAt: map[string]time.Time{}}
	for i, t := range tasks {
		if t.ID == "" {
			t.ID = fmt.Sprintf("t%d", i+1)
		}
		if t.Status == "" {
			t.Status = models.TaskPending
		}
		if t.MaxAttempts == 0 {
			t.MaxAttempts = 3
		}
		q.tasks = append(q.tasks, t)
	}
	return q
}

func (q *memQueue) Claim(context.Context) (*models.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.Status == models.TaskPending {
			t.Status = models.TaskRunning
			t.Attempts++
			q.claimed++
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (q *memQueue) find(id string) *models.Task {
	for _, t := range q.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (q *memQueue) MarkSucceeded(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.find(id).Status = models.TaskSucceeded
	return nil
}

func (q *memQueue) Reschedule(ctx context.Context, id string, runAt time.Time, lastErr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.find(id)
	t.Status = models.TaskPending
	t.LastError = lastErr
	q.runAt[id] = runAt
	return nil
}

func (q *memQueue) MarkFailed(ctx context.Context, id string, lastErr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.find(id)
	t.Status = models.TaskFailed
	t.LastError = lastErr
	return nil
}

func (q *memQueue) Release(ctx context.Context, id string, lastErr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.find(id)
	if t.Status != models.TaskRunning {
		return nil
	}
	t.Status = models.TaskPending
	t.Attempts--
	t.LastError = lastErr
	return nil
}

func (q *memQueue) attempts(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.find(id).Attempts
}

func (q *memQueue) RequeueStale(context.Context, time.Duration) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for _, t := range q.tasks {
		if t.Status == models.TaskRunning {
			t.Status = models.TaskPending
			n++
		}
	}
	q.stale += int(n)
	return n, nil
}

func (q *memQueue) status(id string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.find(id).Status
}

type reportCall struct {
	source, code string
	details      map[string]any
}

type fakeReporter struct {
	mu    sync.Mutex
	calls []reportCall
}

func (r *fakeReporter) Report(ctx context.Context, source, code, message string, details map[string]any) (*models.ErrorReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reportCall{source: source, code: code, details: details})
	return &models.ErrorReport{ID: int64(len(r.calls)), Source: source, Code: code, Message: message}, nil
}

func newTestPool(q Queue, rep ErrorReporter) *Pool {
	p := NewPool(q, rep, Options{Workers: 1, Poll: 5 * time.Millisecond, Backoff: retry.Backoff{Base: time.Second, Max: 4 * time.Second}})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	return p
}

func TestPool_Success(t *testing.T) {
	q := newMemQueue(&models.Task{Type: models.TaskScrapeAuthor, Payload: json.RawMessage(`{"author_id":3}`)})
	p := newTestPool(q, &fakeReporter{})
	var got int64
	p.Handle(models.TaskScrapeAuthor, func(_ context.Context, tk *models.Task) error {
		var in models.AuthorPayload
		_ = json.Unmarshal(tk.Payload, &in)
		got = in.AuthorID
		return nil
	})

	ok, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), got)
	require.Equal(t, models.TaskSucceeded, q.status("t1"))

	ok, err = p.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "очередь пуста")
}

func TestPool_RetryWithBackoffThenFail(t *testing.T) {
	q := newMemQueue(&models.Task{Type: models.TaskScrapeAuthor, Payload: json.RawMessage(`{"author_id":9}`), MaxAttempts: 3})
	rep := &fakeReporter{}
	p := newTestPool(q, rep)
	p.Handle(models.TaskScrapeAuthor, func(context.Context, *models.Task) error {
		return &vk.APIError{Code: vk.CodeTooManyRequests, Method: "wall.get"}
	})
	base := p.now()
	ctx := context.Background()

	_, _ = p.RunOnce(ctx)
	require.Equal(t, models.TaskPending, q.status("t1"))
	require.Equal(t, base.Add(time.Second), q.runAt["t1"])

	_, _ = p.RunOnce(ctx)
	require.Equal(t, base.Add(2*time.Second), q.runAt["t1"])
	require.Empty(t, rep.calls)

	_, _ = p.RunOnce(ctx)
	require.Equal(t, models.TaskFailed, q.status("t1"))
	require.Len(t, rep.calls, 1)
	require.Equal(t, models.ErrorSourceVK, rep.calls[0].source)
	require.Equal(t, "vk_6", rep.calls[0].code)
	require.Equal(t, float64(9), rep.calls[0].details["author_id"])
	require.Equal(t, 3, rep.calls[0].details["attempts"])
}

func TestPool_PermanentErrorsFailImmediately(t *testing.T) {
	cases := map[string]error{
		"access denied": &vk.APIError{Code: vk.CodeAccessDenied},
		"not found":     repository.ErrNotFound,
		"validation":    fmt.Errorf("%w: bad", services.ErrValidation),
		"permanent":     Permanent(errors.New("broken payload")),
	}
	for name, herr := range cases {
		t.Run(name, func(t *testing.T) {
			q := newMemQueue(&models.Task{Type: models.TaskAnalyzePost, MaxAttempts: 5})
			rep := &fakeReporter{}
			p := newTestPool(q, rep)
			p.Handle(models.TaskAnalyzePost, func(context.Context, *models.Task) error { return herr })

			_, err := p.RunOnce(context.Background())
			require.NoError(t, err)
			require.Equal(t, models.TaskFailed, q.status("t1"))
			require.Len(t, rep.calls, 1)
		})
	}
}

func TestPool_UnknownTypeAndPanic(t *testing.T) {
	q := newMemQueue(
		&models.Task{Type: "reindex"},
		&models.Task{Type: models.TaskScrapeComments},
	)
	rep := &fakeReporter{}
	p := newTestPool(q, rep)
	p.Handle(models.TaskScrapeComments, func(context.Context, *models.Task) error { panic("nil map") })

	_, _ = p.RunOnce(context.Background())
	_, _ = p.RunOnce(context.Background())
	require.Equal(t, models.TaskFailed, q.status("t1"))
	require.Equal(t, models.TaskFailed, q.status("t2"))
	require.Equal(t, "task_reindex", rep.calls[0].code)
	require.Equal(t, models.ErrorSourceScraper, rep.calls[1].source)
}

func TestPool_AlreadyRunningIsRetried(t *testing.T) {
	q := newMemQueue(&models.Task{Type: models.TaskScrapeAuthor, MaxAttempts: 2})
	p := newTestPool(q, &fakeReporter{})
	p.Handle(models.TaskScrapeAuthor, func(context.Context, *models.Task) error {
		return fmt.Errorf("%w: scrape:author:1", services.ErrAlreadyRunning)
	})
	_, _ = p.RunOnce(context.Background())
	require.Equal(t, models.TaskPending, q.status("t1"))
}

func TestPool_StartAndStop(t *testing.T) {
	stuck := &models.Task{ID: "stuck", Type: models.TaskAnalyzePost, Status: models.TaskRunning, Attempts: 1, MaxAttempts: 3}
	q := newMemQueue(stuck,
		&models.Task{ID: "a", Type: models.TaskAnalyzePost},
		&models.Task{ID: "b", Type: models.TaskAnalyzePost},
	)
	p := NewPool(q, nil, Options{Workers: 3, Poll: 5 * time.Millisecond})
	var mu sync.Mutex
	seen := map[string]int{}
	p.Handle(models.TaskAnalyzePost, func(_ context.Context, tk *models.Task) error {
		mu.Lock()
		seen[tk.ID]++
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	require.Eventually(t, func() bool {
		return q.status("stuck") == models.TaskSucceeded &&
			q.status("a") == models.TaskSucceeded &&
			q.status("b") == models.TaskSucceeded
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	p.Wait()

	require.Equal(t, 1, q.stale)
	require.Equal(t, map[string]int{"stuck": 1, "a": 1, "b": 1}, seen)
}

func TestPool_ShutdownReleasesTask(t *testing.T) {
	q := newMemQueue(&models.Task{Type: models.TaskScrapeAuthor, MaxAttempts: 3})
	rep := &fakeReporter{}
	p := newTestPool(q, rep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Handle(models.TaskScrapeAuthor, func(hctx context.Context, _ *models.Task) error {
		cancel()
		<-hctx.Done()
		return hctx.Err()
	})

	ok, err := p.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.TaskPending, q.status("t1"))
	require.Equal(t, 0, q.attempts("t1"), "прерванный запуск не тратит попытку")
	require.Empty(t, rep.calls)
}

func TestPool_SuccessRecordedAfterCancel(t *testing.T) {
	q := newMemQueue(&models.Task{Type: models.TaskAnalyzePost})
	p := newTestPool(q, &fakeReporter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Handle(models.TaskAnalyzePost, func(context.Context, *models.Task) error {
		cancel()
		return nil
	})

	ok, err := p.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.TaskSucceeded, q.status("t1"))
	require.Equal(t, 1, q.attempts("t1"))
}

func TestRetryable(t *testing.T) {
	require.False(t, Retryable(nil))
	require.True(t, Retryable(errors.New("connection reset")))
	require.True(t, Retryable(fmt.Errorf("wrap: %w", vk.ErrTransport)))
	require.False(t, Retryable(&vk.APIError{Code: vk.CodeAuthFailed}))
	require.True(t, Retryable(&vk.APIError{Code: vk.CodeInternalServer}))
	require.False(t, Retryable(Permanent(vk.ErrTransport)))
}

type fakeScraper struct {
	authors []int64
	posts   []int64
}

func (f *fakeScraper) ScrapeAuthor(_ context.Context, id int64) (*services.ScrapeResult, error) {
	f.authors = append(f.authors, id)
	return &services.ScrapeResult{}, nil
}

func (f *fakeScraper) ScrapeComments(_ context.Context, id int64) (*services.ScrapeResult, error) {
	f.posts = append(f.posts, id)
	return &services.ScrapeResult{}, nil
}

type fakeAnalyzer struct{ ids []int64 }

func (f *fakeAnalyzer) Analyze(_ context.Context, id int64) (*analysis.Result, error) {
	f.ids = append(f.ids, id)
	return &analysis.Result{}, nil
}

func TestRegister(t *testing.T) {
	q := newMemQueue(
		&models.Task{Type: models.TaskScrapeAuthor, Payload: json.RawMessage(`{"author_id":4}`)},
		&models.Task{Type: models.TaskScrapeComments, Payload: json.RawMessage(`{"post_id":40}`)},
		&models.Task{Type: models.TaskAnalyzePost, Payload: json.RawMessage(`{"post_id":41}`)},
		&models.Task{Type: models.TaskScrapeAuthor, Payload: json.RawMessage(`not json`)},
		&models.Task{Type: models.TaskScrapeAuthor, Payload: json.RawMessage(`{}`)},
	)
	p := newTestPool(q, &fakeReporter{})
	scraper, analyzer := &fakeScraper{}, &fakeAnalyzer{}
	Register(p, scraper, analyzer)

	for i := 0; i < 5; i++ {
		_, err := p.RunOnce(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, []int64{4}, scraper.authors)
	require.Equal(t, []int64{40}, scraper.posts)
	require.Equal(t, []int64{41}, analyzer.ids)
	require.Equal(t, models.TaskFailed, q.status("t4"))
	require.Equal(t, models.TaskFailed, q.status("t5"))
}
