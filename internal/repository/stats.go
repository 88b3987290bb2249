package repository

import (
	"context"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM users),
  (SELECT COUNT(*) FROM users WHERE role = 'admin'),
  (SELECT COUNT(*) FROM users WHERE role = 'moderator'),
  (SELECT COUNT(*) FROM users WHERE role = 'viewer'),
  (SELECT COUNT(*) FROM authors),
  (SELECT COUNT(*) FROM authors WHERE is_active),
  (SELECT COUNT(*) FROM posts WHERE NOT is_deleted),
  (SELECT COUNT(*) FROM posts WHERE NOT is_deleted AND status = 'flagged'),
  (SELECT COUNT(*) FROM comments WHERE NOT is_deleted),
  (SELECT COUNT(*) FROM comments WHERE NOT is_deleted AND status = 'flagged'),
  (SELECT COUNT(*) FROM keywords),
  (SELECT COUNT(*) FROM error_reports WHERE status = 'open'),
  (SELECT COUNT(*) FROM tasks WHERE status = 'pending'),
  (SELECT COUNT(*) FROM tasks WHERE status = 'failed')
`
	var s models.SystemStats
	err := r.db.QueryRow(ctx, q).Scan(
		&s.TotalUsers, &s.Admins, &s.Moderators, &s.Viewers,
		&s.Authors, &s.ActiveAuthors,
		&s.Posts, &s.FlaggedPosts,
		&s.Comments, &s.FlaggedComments,
		&s.Keywords, &s.OpenErrors, &s.PendingTasks, &s.FailedTasks,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
