package repository

import (
	"context"
	"encoding/json"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ErrorReportRepository struct {
	db *pgxpool.Pool
}

func NewErrorReportRepository(db *pgxpool.Pool) *ErrorReportRepository {
	return &ErrorReportRepository{db: db}
}

const errorReportColumns = `id, source, code, message, context, status, created_at, resolved_at`

func scanErrorReport(row interface{ Scan(...any) error }) (*models.ErrorReport, error) {
	var e models.ErrorReport
	var ctxRaw []byte
	if err := row.Scan(&e.ID, &e.Source, &e.Code, &e.Message, &ctxRaw, &e.Status, &e.CreatedAt, &e.ResolvedAt); err != nil {
		return nil, mapError(err)
	}
	_ = json.Unmarshal(ctxRaw, &e.Context)
	return &e, nil
}

func (r *ErrorReportRepository) Create(ctx context.Context, e *models.ErrorReport) (*models.ErrorReport, error) {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	ctxJSON, err := json.Marshal(e.Context)
	if err != nil {
		return nil, err
	}
	return scanErrorReport(r.db.QueryRow(ctx,
		`INSERT INTO error_reports (source, code, message, context) VALUES ($1,$2,$3,$4::jsonb)
		 RETURNING `+errorReportColumns,
		e.Source, e.Code, e.Message, ctxJSON,
	))
}

func (r *ErrorReportRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.ErrorReport, int, error) {
	limit, offset = ClampPage(limit, offset)

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM error_reports WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+errorReportColumns+` FROM error_reports
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.ErrorReport
	for rows.Next() {
		e, err := scanErrorReport(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

func (r *ErrorReportRepository) Resolve(ctx context.Context, id int64) (*models.ErrorReport, error) {
	return scanErrorReport(r.db.QueryRow(ctx,
		`UPDATE error_reports SET status = 'resolved', resolved_at = COALESCE(resolved_at, NOW())
		 WHERE id = $1 RETURNING `+errorReportColumns, id))
}
