package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepo interface {
	Upsert(ctx context.Context, p *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, f models.ContentFilter) ([]*models.Post, int, error)
	SetStatus(ctx context.Context, id int64, status string, matched []string) error
	SoftDelete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, limit int) ([]*models.Post, error)
}

type postRepo struct{ db *pgxpool.Pool }

func NewPostRepo(db *pgxpool.Pool) PostRepo { return &postRepo{db: db} }

const postColumns = `id, author_id, vk_post_id, text, likes, reposts, views, comments_count,
	published_at, status, matched_keywords, is_deleted, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var matchedRaw []byte
	if err := row.Scan(
		&p.ID, &p.AuthorID, &p.VKPostID, &p.Text, &p.Likes, &p.Reposts, &p.Views, &p.CommentsCount,
		&p.PublishedAt, &p.Status, &matchedRaw, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	_ = json.Unmarshal(matchedRaw, &p.MatchedKeywords)
	if p.MatchedKeywords == nil {
		p.MatchedKeywords = []string{}
	}
	return &p, nil
}

func marshalKeywords(words []string) []byte {
	if words == nil {
		words = []string{}
	}
	raw, _ := json.Marshal(words)
	return raw
}

// Upsert вставляет пост или обновляет текст и метрики уже собранного.
// Статус модерации при повторном сборе не сбрасывается, если его уже выставил модератор.
func (r *postRepo) Upsert(ctx context.Context, p *models.Post) (*models.Post, error) {
	const q = `
		INSERT INTO posts (author_id, vk_post_id, text, likes, reposts, views, comments_count,
		                   published_at, status, matched_keywords)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::jsonb)
		ON CONFLICT (author_id, vk_post_id) DO UPDATE
		SET text = EXCLUDED.text,
		    likes = EXCLUDED.likes,
		    reposts = EXCLUDED.reposts,
		    views = EXCLUDED.views,
		    comments_count = EXCLUDED.comments_count,
		    matched_keywords = EXCLUDED.matched_keywords,
		    status = CASE WHEN posts.status IN ('approved','rejected') THEN posts.status ELSE EXCLUDED.status END,
		    updated_at = NOW()
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRow(ctx, q,
		p.AuthorID, p.VKPostID, p.Text, p.Likes, p.Reposts, p.Views, p.CommentsCount,
		p.PublishedAt, p.Status, marshalKeywords(p.MatchedKeywords),
	))
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id=$1`, id))
}

func (r *postRepo) List(ctx context.Context, f models.ContentFilter) ([]*models.Post, int, error) {
	limit, offset := ClampPage(f.Limit, f.Offset)

	where := []string{}
	args := []interface{}{}
	i := 1

	if !f.IncludeDeleted {
		where = append(where, "NOT is_deleted")
	}
	if f.AuthorID > 0 {
		where = append(where, fmt.Sprintf("author_id = $%d", i))
		args = append(args, f.AuthorID)
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
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + postColumns + ` FROM posts` + cond +
		fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *postRepo) SetStatus(ctx context.Context, id int64, status string, matched []string) error {
	q := `UPDATE posts SET status = $2, updated_at = NOW() WHERE id = $1`
	args := []interface{}{id, status}
	if matched != nil {
		q = `UPDATE posts SET status = $2, matched_keywords = $3::jsonb, updated_at = NOW() WHERE id = $1`
		args = append(args, marshalKeywords(matched))
	}
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE posts SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) Search(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	limit, _ = ClampPage(limit, 0)
	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE NOT is_deleted AND text ILIKE '%' || $1 || '%'
		 ORDER BY published_at DESC LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
