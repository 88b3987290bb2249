package repository

import (
	"context"
	"fmt"
	"strings"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthorRepo interface {
	Create(ctx context.Context, a *models.Author) (*models.Author, error)
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	GetByVKID(ctx context.Context, vkID int64) (*models.Author, error)
	List(ctx context.Context, f models.AuthorFilter) ([]*models.Author, int, error)
	ListActive(ctx context.Context) ([]*models.Author, error)
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id int64) error
	MarkScraped(ctx context.Context, id int64) error
}

type authorRepo struct{ db *pgxpool.Pool }

func NewAuthorRepo(db *pgxpool.Pool) AuthorRepo { return &authorRepo{db: db} }

const authorColumns = `id, vk_id, screen_name, name, type, is_active, last_scraped_at, created_at, updated_at`

func scanAuthor(row interface{ Scan(...any) error }) (*models.Author, error) {
	var a models.Author
	if err := row.Scan(
		&a.ID, &a.VKID, &a.ScreenName, &a.Name, &a.Type,
		&a.IsActive, &a.LastScrapedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *authorRepo) Create(ctx context.Context, a *models.Author) (*models.Author, error) {
	const q = `
		INSERT INTO authors (vk_id, screen_name, name, type, is_active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING ` + authorColumns
	return scanAuthor(r.db.QueryRow(ctx, q, a.VKID, a.ScreenName, a.Name, a.Type, a.IsActive))
}

func (r *authorRepo) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	return scanAuthor(r.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1`, id))
}

func (r *authorRepo) GetByVKID(ctx context.Context, vkID int64) (*models.Author, error) {
	return scanAuthor(r.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE vk_id=$1`, vkID))
}

func (r *authorRepo) List(ctx context.Context, f models.AuthorFilter) ([]*models.Author, int, error) {
	limit, offset := ClampPage(f.Limit, f.Offset)

	where := []string{}
	args := []interface{}{}
	i := 1

	if f.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", i))
		args = append(args, f.Type)
		i++
	}
	if f.IsActive != nil {
		where = append(where, fmt.Sprintf("is_active = $%d", i))
		args = append(args, *f.IsActive)
		i++
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR screen_name ILIKE $%d)", i, i))
		args = append(args, "%"+q+"%")
		i++
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + authorColumns + ` FROM authors` + cond +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

func (r *authorRepo) ListActive(ctx context.Context) ([]*models.Author, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE is_active ORDER BY last_scraped_at NULLS FIRST, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *authorRepo) Update(ctx context.Context, a *models.Author) error {
	const q = `
		UPDATE authors
		SET vk_id=$1, screen_name=$2, name=$3, type=$4, is_active=$5, updated_at=NOW()
		WHERE id=$6
	`
	tag, err := r.db.Exec(ctx, q, a.VKID, a.ScreenName, a.Name, a.Type, a.IsActive, a.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM authors WHERE id=$1", id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authorRepo) MarkScraped(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE authors SET last_scraped_at = NOW() WHERE id = $1`, id)
	return err
}
