package repository

import (
	"context"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type KeywordRepo struct {
	db *pgxpool.Pool
}

func NewKeywordRepo(db *pgxpool.Pool) *KeywordRepo { return &KeywordRepo{db: db} }

const keywordColumns = `id, word, stem, category, is_active, created_at, updated_at`

func scanKeyword(row interface{ Scan(...any) error }) (*models.Keyword, error) {
	var k models.Keyword
	if err := row.Scan(&k.ID, &k.Word, &k.Stem, &k.Category, &k.IsActive, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &k, nil
}

func (r *KeywordRepo) Create(ctx context.Context, k *models.Keyword) (*models.Keyword, error) {
	return scanKeyword(r.db.QueryRow(ctx,
		`INSERT INTO keywords (word, stem, category, is_active) VALUES ($1,$2,$3,$4) RETURNING `+keywordColumns,
		k.Word, k.Stem, k.Category, k.IsActive,
	))
}

func (r *KeywordRepo) GetByID(ctx context.Context, id int) (*models.Keyword, error) {
	return scanKeyword(r.db.QueryRow(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE id=$1`, id))
}

func (r *KeywordRepo) list(ctx context.Context, q string, args ...any) ([]*models.Keyword, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Keyword
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, k)
	}
	return list, rows.Err()
}

// List возвращает словарь целиком: ключевых слов немного, пагинация не нужна.
func (r *KeywordRepo) List(ctx context.Context, category string) ([]*models.Keyword, error) {
	if category != "" {
		return r.list(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE category=$1 ORDER BY word`, category)
	}
	return r.list(ctx, `SELECT `+keywordColumns+` FROM keywords ORDER BY word`)
}

func (r *KeywordRepo) ListActive(ctx context.Context) ([]*models.Keyword, error) {
	return r.list(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE is_active ORDER BY word`)
}

func (r *KeywordRepo) Update(ctx context.Context, k *models.Keyword) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE keywords SET word=$1, stem=$2, category=$3, is_active=$4, updated_at=now() WHERE id=$5`,
		k.Word, k.Stem, k.Category, k.IsActive, k.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *KeywordRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM keywords WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
