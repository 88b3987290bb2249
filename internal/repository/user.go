package repository

import (
	"context"
	"fmt"
	"strings"

	"vkmod/internal/logger"
	"vkmod/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// CreateUser создаёт пользователя с ролью user.Role, а первого пользователя в пустой
// таблице делает admin. Проверка пустоты и вставка идут под блокировкой таблицы,
// поэтому при одновременной регистрации admin окажется только один.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("username", user.Username), zap.String("email", user.Email))
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return err
	}
	query := `
	INSERT INTO users (username, email, password_hash, role, is_active)
	SELECT $1, $2, $3,
	       CASE WHEN EXISTS (SELECT 1 FROM users) THEN $4::varchar ELSE $6::varchar END,
	       $5
	RETURNING id, role, created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		models.RoleAdmin,
	).Scan(&user.ID, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.Error(err))
		return mapError(err)
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по username (repo)", zap.String("username", username))
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (repo)", zap.Int("user_id", id))
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	limit, offset = ClampPage(limit, offset)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		logger.Log.Error("Ошибка подсчёта пользователей (repo)", zap.Error(err))
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		logger.Log.Error("Ошибка получения пользователей (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Log.Error("Ошибка сканирования пользователя (repo)", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) UpdateUserFields(ctx context.Context, id int, input *models.UpdateUserRequest) error {
	logger.Log.Info("Обновление пользователя (repo)", zap.Int("user_id", id))
	query := `UPDATE users SET`
	var args []interface{}
	argNum := 1

	if input.Email != nil {
		query += fmt.Sprintf(" email = $%d,", argNum)
		args = append(args, *input.Email)
		argNum++
	}
	if input.Role != nil {
		query += fmt.Sprintf(" role = $%d,", argNum)
		args = append(args, *input.Role)
		argNum++
	}
	if input.IsActive != nil {
		query += fmt.Sprintf(" is_active = $%d,", argNum)
		args = append(args, *input.IsActive)
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Warn("Нет полей для обновления пользователя (repo)", zap.Int("user_id", id))
		return nil
	}

	query += " updated_at = NOW()"
	query = strings.TrimSuffix(query, ",") + fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка обновления пользователя (repo)", zap.Error(err), zap.Int("user_id", id))
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUserByID(ctx context.Context, id int) error {
	logger.Log.Info("Удаление пользователя (repo)", zap.Int("user_id", id))
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *UserRepository) SaveRefreshToken(ctx context.Context, userID int, token string) error {
	logger.Log.Debug("Сохранение refresh токена (repo)", zap.Int("user_id", userID))
	_, err := r.db.Exec(ctx, `INSERT INTO refresh_tokens (user_id, token) VALUES ($1, $2)`, userID, token)
	if err != nil {
		logger.Log.Error("Ошибка сохранения refresh токена (repo)", zap.Error(err))
	}
	return err
}

func (r *UserRepository) IsRefreshTokenValid(ctx context.Context, userID int, token string) (bool, error) {
	logger.Log.Debug("Проверка refresh токена (repo)", zap.Int("user_id", userID))
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE user_id = $1 AND token = $2)`, userID, token,
	).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки refresh токена (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *UserRepository) DeleteRefreshToken(ctx context.Context, userID int, token string) error {
	logger.Log.Debug("Удаление refresh токена (repo)", zap.Int("user_id", userID))
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		logger.Log.Error("Ошибка удаления refresh токена (repo)", zap.Error(err))
	}
	return err
}

func (r *UserRepository) DeleteUserRefreshTokens(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
