package handlers

import (
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
)

// contentFilter собирает фильтр из query. Удалённые записи видит только админ.
func contentFilter(r *http.Request) models.ContentFilter {
	return models.ContentFilter{
		AuthorID:       queryInt64(r, "author_id"),
		PostID:         queryInt64(r, "post_id"),
		Status:         r.URL.Query().Get("status"),
		IncludeDeleted: queryBool(r, "include_deleted") && currentRole(r) == models.RoleAdmin,
		Limit:          queryInt(r, "limit", 0),
		Offset:         queryInt(r, "offset", 0),
	}
}

type PostHandler struct {
	service *services.PostService
	tasks   *services.TaskService
}

func NewPostHandler(service *services.PostService, tasks *services.TaskService) *PostHandler {
	return &PostHandler{service: service, tasks: tasks}
}

// List godoc
// @Summary Список постов
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param author_id query int false "ID автора"
// @Param status query string false "new | approved | rejected | flagged"
// @Param include_deleted query bool false "Показать удалённые (только admin)"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.Post]
// @Failure 400 {object} helpers.Response
// @Router /api/posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), contentFilter(r))
	if err != nil {
		writeError(w, r, "Ошибка получения постов", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Пост по ID
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID поста"
// @Success 200 {object} models.Post
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка получения поста", err)
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// SetStatus godoc
// @Summary Решение модератора по посту
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID поста"
// @Param input body models.StatusRequest true "Новый статус"
// @Success 200 {object} models.Post
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id}/status [patch]
func (h *PostHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, "Ошибка смены статуса поста", err)
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// Delete godoc
// @Summary Удаление поста
// @Description Мягкое удаление: пост скрывается из выдачи, но остаётся в базе.
// @Tags posts
// @Security ApiKeyAuth
// @Param id path int true "ID поста"
// @Success 204
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Ошибка удаления поста", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze godoc
// @Summary Анализ текста поста
// @Description Без async=true анализирует сразу и возвращает результат; с async=true ставит задачу analyze_post.
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID поста"
// @Param async query bool false "Поставить в очередь"
// @Success 200 {object} analysis.Result
// @Success 202 {object} models.Task
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id}/analyze [post]
func (h *PostHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if queryBool(r, "async") {
		if _, err := h.service.Get(r.Context(), id); err != nil {
			writeError(w, r, "Ошибка постановки анализа", err)
			return
		}
		t, _, err := h.tasks.EnqueueAnalyzePost(r.Context(), id)
		if err != nil {
			writeError(w, r, "Ошибка постановки анализа", err)
			return
		}
		helpers.JSON(w, http.StatusAccepted, t)
		return
	}
	res, err := h.service.Analyze(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка анализа поста", err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}

type CommentHandler struct {
	service *services.CommentService
}

func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List godoc
// @Summary Список комментариев
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param post_id query int false "ID поста"
// @Param status query string false "new | approved | rejected | flagged"
// @Param include_deleted query bool false "Показать удалённые (только admin)"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.Comment]
// @Router /api/comments [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), contentFilter(r))
	if err != nil {
		writeError(w, r, "Ошибка получения комментариев", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Комментарий по ID
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID комментария"
// @Success 200 {object} models.Comment
// @Failure 404 {object} helpers.Response
// @Router /api/comments/{id} [get]
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка получения комментария", err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// SetStatus godoc
// @Summary Решение модератора по комментарию
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID комментария"
// @Param input body models.StatusRequest true "Новый статус"
// @Success 200 {object} models.Comment
// @Failure 400 {object} helpers.Response
// @Router /api/comments/{id}/status [patch]
func (h *CommentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, "Ошибка смены статуса комментария", err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// Delete godoc
// @Summary Удаление комментария
// @Tags comments
// @Security ApiKeyAuth
// @Param id path int true "ID комментария"
// @Success 204
// @Failure 404 {object} helpers.Response
// @Router /api/comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Ошибка удаления комментария", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze godoc
// @Summary Анализ текста комментария
// @Description Пересчитывает совпадения со словарём; new и flagged получают статус заново, решение модератора сохраняется.
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID комментария"
// @Success 200 {object} analysis.Result
// @Failure 404 {object} helpers.Response
// @Router /api/comments/{id}/analyze [post]
func (h *CommentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	res, err := h.service.Analyze(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка анализа комментария", err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}
