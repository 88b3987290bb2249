package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vkmod/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository — очередь задач поверх таблицы tasks.
// Воркеры забирают задачи через FOR UPDATE SKIP LOCKED, поэтому их можно запускать в нескольких процессах.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, type, payload, dedup_key, status, attempts, max_attempts, last_error,
	run_at, created_at, started_at, finished_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	var id uuid.UUID
	if err := row.Scan(
		&id, &t.Type, &t.Payload, &t.DedupKey, &t.Status, &t.Attempts, &t.MaxAttempts, &t.LastError,
		&t.RunAt, &t.CreatedAt, &t.StartedAt, &t.FinishedAt,
	); err != nil {
		return nil, mapError(err)
	}
	t.ID = id.String()
	return &t, nil
}

// Enqueue ставит задачу в очередь. Если задача с тем же dedup_key уже ждёт или выполняется,
// возвращается она, а новая не создаётся.
func (r *TaskRepository) Enqueue(ctx context.Context, t *models.Task) (*models.Task, bool, error) {
	if len(t.Payload) == 0 {
		t.Payload = []byte("{}")
	}
	id := uuid.New()
	created, err := scanTask(r.db.QueryRow(ctx, `
		INSERT INTO tasks (id, type, payload, dedup_key, max_attempts, run_at)
		VALUES ($1,$2,$3::jsonb,$4,$5,$6)
		ON CONFLICT (dedup_key) WHERE dedup_key <> '' AND status IN ('pending','running') DO NOTHING
		RETURNING `+taskColumns,
		id, t.Type, []byte(t.Payload), t.DedupKey, t.MaxAttempts, time.Now().UTC(),
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	existing, err := scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE dedup_key = $1 AND status IN ('pending','running') LIMIT 1`,
		t.DedupKey))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Claim атомарно забирает ближайшую готовую задачу. ErrNotFound, если очередь пуста.
func (r *TaskRepository) Claim(ctx context.Context) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM tasks
		WHERE status = 'pending' AND run_at <= NOW()
		ORDER BY run_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}

	t, err := scanTask(tx.QueryRow(ctx, `
		UPDATE tasks SET status = 'running', attempts = attempts + 1, started_at = NOW()
		WHERE id = $1 RETURNING `+taskColumns, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) MarkSucceeded(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = 'succeeded', last_error = '', finished_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *TaskRepository) Reschedule(ctx context.Context, id string, runAt time.Time, lastErr string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = 'pending', run_at = $2, last_error = $3 WHERE id = $1`, id, runAt, lastErr)
	return err
}

func (r *TaskRepository) MarkFailed(ctx context.Context, id string, lastErr string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = 'failed', last_error = $2, finished_at = NOW() WHERE id = $1`, id, lastErr)
	return err
}

// Release возвращает прерванную задачу в очередь, не засчитывая попытку.
func (r *TaskRepository) Release(ctx context.Context, id string, lastErr string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tasks SET status = 'pending', attempts = GREATEST(attempts - 1, 0), run_at = NOW(),
		                 started_at = NULL, last_error = $2
		WHERE id = $1 AND status = 'running'`, id, lastErr)
	return err
}

// RequeueStale возвращает в очередь задачи, зависшие в running (например, после падения воркера).
func (r *TaskRepository) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET status = 'pending', run_at = NOW(), last_error = 'requeued after timeout'
		WHERE status = 'running' AND started_at < NOW() - make_interval(secs => $1)`,
		olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, uid))
}

func (r *TaskRepository) List(ctx context.Context, f models.TaskFilter) ([]*models.Task, int, error) {
	limit, offset := ClampPage(f.Limit, f.Offset)

	where := []string{}
	args := []interface{}{}
	i := 1
	if f.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", i))
		args = append(args, f.Type)
		i++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, f.Status)
		i++
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + taskColumns + ` FROM tasks` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}
