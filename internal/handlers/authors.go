package handlers

import (
	"net/http"
	"strings"

	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
)

type AuthorHandler struct {
	service *services.AuthorService
}

func NewAuthorHandler(service *services.AuthorService) *AuthorHandler {
	return &AuthorHandler{service: service}
}

// List godoc
// @Summary Список авторов
// @Tags authors
// @Security ApiKeyAuth
// @Produce json
// @Param type query string false "user | group"
// @Param active query bool false "Только активные / только отключённые"
// @Param q query string false "Поиск по имени"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.Author]
// @Router /api/authors [get]
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	f := models.AuthorFilter{
		Type:     r.URL.Query().Get("type"),
		IsActive: queryOptBool(r, "active"),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	}
	page, err := h.service.List(r.Context(), f)
	if err != nil {
		writeError(w, r, "Ошибка получения авторов", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Автор по ID
// @Tags authors
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} models.Author
// @Failure 404 {object} helpers.Response
// @Router /api/authors/{id} [get]
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка получения автора", err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Create godoc
// @Summary Добавление автора
// @Description vk_id сообществ отрицательный (как owner_id в VK API).
// @Tags authors
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.AuthorRequest true "Автор"
// @Success 201 {object} models.Author
// @Failure 400 {object} helpers.Response
// @Failure 409 {object} helpers.Response "Автор уже добавлен"
// @Router /api/authors [post]
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AuthorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, "Ошибка добавления автора", err)
		return
	}
	helpers.JSON(w, http.StatusCreated, a)
}

// Update godoc
// @Summary Изменение автора
// @Tags authors
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID автора"
// @Param input body models.AuthorRequest true "Изменяемые поля"
// @Success 200 {object} models.Author
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/authors/{id} [put]
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req models.AuthorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, "Ошибка обновления автора", err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Delete godoc
// @Summary Удаление автора
// @Description Вместе с автором удаляются его посты и комментарии.
// @Tags authors
// @Security ApiKeyAuth
// @Param id path int true "ID автора"
// @Success 204
// @Failure 404 {object} helpers.Response
// @Router /api/authors/{id} [delete]
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Ошибка удаления автора", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolve godoc
// @Summary Добавление автора по короткому имени
// @Description Принимает screen_name или ссылку vk.com/..., находит объект через VK API и заводит автора.
// @Tags authors
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.ResolveAuthorRequest true "Короткое имя"
// @Success 201 {object} models.Author "Автор добавлен"
// @Success 200 {object} models.Author "Автор уже был"
// @Failure 404 {object} helpers.Response "Не найдено в VK"
// @Failure 502 {object} helpers.Response "Ошибка VK API"
// @Router /api/authors/resolve [post]
func (h *AuthorHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveAuthorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, created, err := h.service.AddByScreenName(r.Context(), req.ScreenName)
	if err != nil {
		writeError(w, r, "Ошибка добавления автора по короткому имени", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.JSON(w, status, a)
}
