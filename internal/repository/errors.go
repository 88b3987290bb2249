package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("запись не найдена")
	ErrConflict         = errors.New("запись уже существует")
	ErrInvalidReference = errors.New("ссылка на несуществующую запись")
)

// mapError переводит ошибки pgx в ошибки репозитория, остальные возвращает как есть.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Join(ErrConflict, err)
		case pgerrcode.ForeignKeyViolation:
			return errors.Join(ErrInvalidReference, err)
		}
	}
	return err
}

func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
