package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepo interface {
	Upsert(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	List(ctx context.Context, f models.ContentFilter) ([]*models.Comment, int, error)
	SetStatus(ctx context.Context, id int64, status string, matched []string) error
	SoftDelete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, limit int) ([]*models.Comment, error)
}

type commentRepo struct{ db *pgxpool.Pool }

func NewCommentRepo(db *pgxpool.Pool) CommentRepo { return &commentRepo{db: db} }

const commentColumns = `id, post_id, vk_comment_id, from_id, text, likes, published_at,
	status, matched_keywords, is_deleted, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	var matchedRaw []byte
	if err := row.Scan(
		&c.ID, &c.PostID, &c.VKCommentID, &c.FromID, &c.Text, &c.Likes, &c.PublishedAt,
		&c.Status, &matchedRaw, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	_ = json.Unmarshal(matchedRaw, &c.MatchedKeywords)
	if c.MatchedKeywords == nil {
		c.MatchedKeywords = []string{}
	}
	return &c, nil
}

func (r *commentRepo) Upsert(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	const q = `
		INSERT INTO comments (post_id, vk_comment_id, from_id, text, likes, published_at, status, matched_keywords)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb)
		ON CONFLICT (post_id, vk_comment_id) DO UPDATE
		SET text = EXCLUDED.text,
		    likes = EXCLUDED.likes,
		    matched_keywords = EXCLUDED.matched_keywords,
		    status = CASE WHEN comments.status IN ('approved','rejected') THEN comments.status ELSE EXCLUDED.status END,
		    updated_at = NOW()
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRow(ctx, q,
		c.PostID, c.VKCommentID, c.FromID, c.Text, c.Likes, c.PublishedAt, c.Status,
		marshalKeywords(c.MatchedKeywords),
	))
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	return scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id=$1`, id))
}

func (r *commentRepo) List(ctx context.Context, f models.ContentFilter) ([]*models.Comment, int, error) {
	limit, offset := ClampPage(f.Limit, f.Offset)

	where := []string{}
	args := []interface{}{}
	i := 1

	if !f.IncludeDeleted {
		where = append(where, "NOT is_deleted")
	}
	if f.PostID > 0 {
		where = append(where, fmt.Sprintf("post_id = $%d", i))
		args = append(args, f.PostID)
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
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + commentColumns + ` FROM comments` + cond +
		fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func (r *commentRepo) SetStatus(ctx context.Context, id int64, status string, matched []string) error {
	q := `UPDATE comments SET status = $2, updated_at = NOW() WHERE id = $1`
	args := []interface{}{id, status}
	if matched != nil {
		q = `UPDATE comments SET status = $2, matched_keywords = $3::jsonb, updated_at = NOW() WHERE id = $1`
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

func (r *commentRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepo) Search(ctx context.Context, query string, limit int) ([]*models.Comment, error) {
	limit, _ = ClampPage(limit, 0)
	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE NOT is_deleted AND text ILIKE '%' || $1 || '%'
		 ORDER BY published_at DESC LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
