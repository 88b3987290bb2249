package handlers

import (
	"net/http"

	"vkmod/internal/logger"
	"vkmod/internal/middleware"
	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Первый зарегистрированный пользователь получает роль admin, остальные — viewer.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.RegisterRequest true "Данные регистрации"
// @Success 201 {object} models.User
// @Failure 400 {object} helpers.Response "Ошибка валидации"
// @Failure 409 {object} helpers.Response "Имя или email заняты"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, "Ошибка регистрации пользователя", err)
		return
	}
	logger.WithCtx(r.Context()).Info("Пользователь зарегистрирован",
		zap.Int("user_id", user.ID), zap.String("role", user.Role))
	helpers.JSON(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Авторизация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.LoginRequest true "Данные для входа"
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} helpers.Response "Неверный логин или пароль"
// @Failure 429 {object} helpers.Response "Слишком много попыток"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pair, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, "Неудачная попытка входа", err)
		return
	}
	helpers.JSON(w, http.StatusOK, pair)
}

// Refresh godoc
// @Summary Обновление токенов
// @Description Refresh-токен одноразовый: в ответе выдаётся новая пара.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} helpers.Response "Невалидный refresh token"
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, "Ошибка обновления токена", err)
		return
	}
	helpers.JSON(w, http.StatusOK, pair)
}

// Logout godoc
// @Summary Выход
// @Description Удаляет refresh-токен и заносит access-токен из заголовка в блоклист.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.RefreshRequest false "Refresh token"
// @Success 200 {object} helpers.Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	access, _ := middleware.BearerToken(r)
	if err := h.authService.Logout(r.Context(), access, req.RefreshToken); err != nil {
		writeError(w, r, "Ошибка выхода", err)
		return
	}
	helpers.JSON(w, http.StatusOK, "Вы вышли из системы")
}

// Me godoc
// @Summary Текущий пользователь
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} helpers.Response
// @Router /api/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, r, "Ошибка получения профиля", err)
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// ListUsers godoc
// @Summary Список пользователей
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Лимит (по умолч. 50, макс. 200)"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.User]
// @Router /api/admin/users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.authService.ListUsers(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, r, "Ошибка получения пользователей", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// GetUser godoc
// @Summary Пользователь по ID
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} models.User
// @Failure 404 {object} helpers.Response
// @Router /api/admin/users/{id} [get]
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	user, err := h.authService.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка получения пользователя", err)
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Изменение пользователя
// @Description Роль, email, блокировка. Снять с себя роль admin или заблокировать себя нельзя.
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body models.UpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} models.User
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/admin/users/{id} [patch]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.authService.UpdateUser(r.Context(), currentUserID(r), id, &req)
	if err != nil {
		writeError(w, r, "Ошибка обновления пользователя", err)
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Tags admin
// @Security ApiKeyAuth
// @Param id path int true "ID пользователя"
// @Success 204
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/admin/users/{id} [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.authService.DeleteUser(r.Context(), currentUserID(r), id); err != nil {
		writeError(w, r, "Ошибка удаления пользователя", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
