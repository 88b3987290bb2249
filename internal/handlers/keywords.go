package handlers

import (
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
)

type KeywordHandler struct {
	service *services.KeywordService
}

func NewKeywordHandler(service *services.KeywordService) *KeywordHandler {
	return &KeywordHandler{service: service}
}

// List godoc
// @Summary Словарь ключевых слов
// @Tags keywords
// @Security ApiKeyAuth
// @Produce json
// @Param category query string false "Категория"
// @Success 200 {array} models.Keyword
// @Router /api/keywords [get]
func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, "Ошибка получения ключевых слов", err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary Ключевое слово по ID
// @Tags keywords
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID"
// @Success 200 {object} models.Keyword
// @Failure 404 {object} helpers.Response
// @Router /api/keywords/{id} [get]
func (h *KeywordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	k, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка получения ключевого слова", err)
		return
	}
	helpers.JSON(w, http.StatusOK, k)
}

// Create godoc
// @Summary Добавление ключевого слова
// @Description Слово приводится к нижнему регистру, для сопоставления сохраняется его основа.
// @Tags keywords
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.KeywordRequest true "Ключевое слово"
// @Success 201 {object} models.Keyword
// @Failure 400 {object} helpers.Response
// @Failure 409 {object} helpers.Response "Слово уже есть"
// @Router /api/keywords [post]
func (h *KeywordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.KeywordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, "Ошибка добавления ключевого слова", err)
		return
	}
	helpers.JSON(w, http.StatusCreated, k)
}

// Update godoc
// @Summary Изменение ключевого слова
// @Tags keywords
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID"
// @Param input body models.KeywordRequest true "Изменяемые поля"
// @Success 200 {object} models.Keyword
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/keywords/{id} [put]
func (h *KeywordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.KeywordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, "Ошибка обновления ключевого слова", err)
		return
	}
	helpers.JSON(w, http.StatusOK, k)
}

// Delete godoc
// @Summary Удаление ключевого слова
// @Tags keywords
// @Security ApiKeyAuth
// @Param id path int true "ID"
// @Success 204
// @Failure 404 {object} helpers.Response
// @Router /api/keywords/{id} [delete]
func (h *KeywordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, "Ошибка удаления ключевого слова", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
