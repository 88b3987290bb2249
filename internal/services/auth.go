package services

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/utils"

	"go.uber.org/zap"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

const minPasswordLen = 8

type UserRepo interface {
	// CreateUser сохраняет пользователя; первый пользователь системы получает роль admin.
	CreateUser(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	UpdateUserFields(ctx context.Context, id int, input *models.UpdateUserRequest) error
	DeleteUserByID(ctx context.Context, id int) error
	TouchLastLogin(ctx context.Context, id int) error
	SaveRefreshToken(ctx context.Context, userID int, token string) error
	IsRefreshTokenValid(ctx context.Context, userID int, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID int, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID int) error
}

// AttemptCounter считает неудачные входы (реализуется redisstore.Counter).
type AttemptCounter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// TokenBlacklist хранит отозванные access-токены до истечения их срока.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type AuthConfig struct {
	JWTSecret        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	MaxLoginAttempts int
	LoginLockTTL     time.Duration
}

type AuthService struct {
	repo      UserRepo
	attempts  AttemptCounter
	blacklist TokenBlacklist
	cfg       AuthConfig
}

func NewAuthService(repo UserRepo, attempts AttemptCounter, blacklist TokenBlacklist, cfg AuthConfig) *AuthService {
	return &AuthService{repo: repo, attempts: attempts, blacklist: blacklist, cfg: cfg}
}

func normalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return validationf("некорректный email")
	}
	return nil
}

// Register создаёт пользователя. Первый зарегистрированный становится администратором.
func (s *AuthService) Register(ctx context.Context, input *models.RegisterRequest) (*models.User, error) {
	username := normalizeUsername(input.Username)
	email := strings.TrimSpace(input.Email)
	logger.Log.Info("Регистрация пользователя (service)", zap.String("username", username), zap.String("email", email))

	if !usernameRe.MatchString(username) {
		return nil, validationf("имя пользователя: 3-32 символа, латиница, цифры и _")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLen {
		return nil, validationf("пароль должен быть не короче %d символов", minPasswordLen)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleViewer,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		logger.Log.Warn("Ошибка создания пользователя", zap.Error(err))
		return nil, err
	}
	logger.Log.Info("Пользователь зарегистрирован (service)", zap.String("username", username), zap.String("role", user.Role))
	return user, nil
}

func (s *AuthService) loginKey(username string) string { return "login:" + username }

func (s *AuthService) isLocked(ctx context.Context, username string) bool {
	if s.attempts == nil || s.cfg.MaxLoginAttempts <= 0 {
		return false
	}
	n, err := s.attempts.Get(ctx, s.loginKey(username))
	if err != nil {
		// без Redis вход не блокируем
		logger.Log.Warn("Не удалось проверить счётчик попыток входа", zap.Error(err))
		return false
	}
	return n >= int64(s.cfg.MaxLoginAttempts)
}

func (s *AuthService) registerFailure(ctx context.Context, username string) {
	if s.attempts == nil {
		return
	}
	n, err := s.attempts.Incr(ctx, s.loginKey(username), s.cfg.LoginLockTTL)
	if err != nil {
		logger.Log.Warn("Не удалось увеличить счётчик попыток входа", zap.Error(err))
		return
	}
	if s.cfg.MaxLoginAttempts > 0 && n >= int64(s.cfg.MaxLoginAttempts) {
		logger.Log.Warn("Вход заблокирован после неудачных попыток",
			zap.String("username", username), zap.Int64("attempts", n), zap.Duration("ttl", s.cfg.LoginLockTTL))
	}
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	access, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.AccessTTL, utils.TokenAccess)
	if err != nil {
		logger.Log.Error("Ошибка генерации access-токена", zap.Error(err))
		return nil, err
	}
	refresh, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.RefreshTTL, utils.TokenRefresh)
	if err != nil {
		logger.Log.Error("Ошибка генерации refresh-токена", zap.Error(err))
		return nil, err
	}
	if err := s.repo.SaveRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		Username:     user.Username,
		Role:         user.Role,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	username = normalizeUsername(username)
	logger.Log.Info("Попытка входа (service)", zap.String("username", username))

	if s.isLocked(ctx, username) {
		return nil, ErrLoginLocked
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.registerFailure(ctx, username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.String("username", username))
		s.registerFailure(ctx, username)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, s.loginKey(username)); err != nil {
			logger.Log.Warn("Не удалось сбросить счётчик попыток входа", zap.Error(err))
		}
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Log.Warn("Не удалось обновить last_login_at", zap.Error(err), zap.Int("user_id", user.ID))
	}
	logger.Log.Info("Вход выполнен (service)", zap.String("username", username))
	return pair, nil
}

// Refresh меняет refresh-токен на новую пару. Старый refresh удаляется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := utils.ParseToken(s.cfg.JWTSecret, refreshToken)
	if err != nil || claims.TokenType != utils.TokenRefresh {
		return nil, ErrInvalidToken
	}
	ok, err := s.repo.IsRefreshTokenValid(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Log.Warn("Refresh токен не найден (service)", zap.Int("user_id", claims.UserID))
		return nil, ErrInvalidToken
	}

	// роль могла смениться с момента выдачи токена
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.repo.DeleteRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout отзывает refresh-токен и заносит access-токен в чёрный список до его истечения.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" && s.blacklist != nil {
		if claims, err := utils.ParseToken(s.cfg.JWTSecret, accessToken); err == nil {
			if err := s.blacklist.Add(ctx, accessToken, time.Until(claims.ExpiresAt)); err != nil {
				logger.Log.Warn("Не удалось занести токен в чёрный список", zap.Error(err))
			}
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := utils.ParseToken(s.cfg.JWTSecret, refreshToken)
	if err != nil {
		return ErrInvalidToken
	}
	logger.Log.Info("Выход пользователя (service)", zap.Int("user_id", claims.UserID))
	return s.repo.DeleteRefreshToken(ctx, claims.UserID, refreshToken)
}

// IsRevoked проверяет access-токен по блоклисту (для middleware).
func (s *AuthService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	return s.blacklist.Contains(ctx, accessToken)
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) (*models.Page[*models.User], error) {
	users, total, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return pageOf(users, total, limit, offset), nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Пользователь не найден по ID (service)", zap.Int("user_id", id), zap.Error(err))
	}
	return user, err
}

// UpdateUser меняет email, роль или активность. Администратор не может понизить или заблокировать сам себя.
func (s *AuthService) UpdateUser(ctx context.Context, actorID, id int, input *models.UpdateUserRequest) (*models.User, error) {
	logger.Log.Info("Обновление пользователя (service)", zap.Int("user_id", id), zap.Int("actor_id", actorID))
	if input.Role != nil && !models.IsValidRole(*input.Role) {
		return nil, validationf("неизвестная роль %q", *input.Role)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		input.Email = &email
	}
	if actorID == id {
		if input.Role != nil && *input.Role != models.RoleAdmin {
			return nil, validationf("нельзя снять с себя роль администратора")
		}
		if input.IsActive != nil && !*input.IsActive {
			return nil, validationf("нельзя заблокировать самого себя")
		}
	}

	if err := s.repo.UpdateUserFields(ctx, id, input); err != nil {
		logger.Log.Error("Ошибка при обновлении пользователя (service)", zap.Error(err), zap.Int("user_id", id))
		return nil, err
	}
	// смена роли или блокировка: выданные refresh-токены больше не годятся
	if input.Role != nil || (input.IsActive != nil && !*input.IsActive) {
		if err := s.repo.DeleteUserRefreshTokens(ctx, id); err != nil {
			logger.Log.Warn("Не удалось отозвать refresh-токены", zap.Error(err), zap.Int("user_id", id))
		}
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *AuthService) DeleteUser(ctx context.Context, actorID, id int) error {
	logger.Log.Info("Сервис: удаление user", zap.Int("user_id", id), zap.Int("actor_id", actorID))
	if actorID == id {
		return validationf("нельзя удалить самого себя")
	}
	return s.repo.DeleteUserByID(ctx, id)
}
