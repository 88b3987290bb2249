package handlers

import (
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List godoc
// @Summary Очередь задач
// @Tags tasks
// @Security ApiKeyAuth
// @Produce json
// @Param type query string false "scrape_author | scrape_comments | analyze_post"
// @Param status query string false "pending | running | succeeded | failed"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.Task]
// @Router /api/tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), models.TaskFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, "Ошибка получения задач", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Задача по ID
// @Tags tasks
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "UUID задачи"
// @Success 200 {object} models.Task
// @Failure 404 {object} helpers.Response
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, "Ошибка получения задачи", err)
		return
	}
	helpers.JSON(w, http.StatusOK, t)
}

// Scrape godoc
// @Summary Запуск сбора
// @Description С author_id ставит сбор одного автора, без него — всех активных. Уже стоящие в очереди задачи не дублируются.
// @Tags tasks
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.ScrapeRequest false "Автор"
// @Success 202 {array} models.Task
// @Failure 400 {object} helpers.Response "Автор отключён"
// @Failure 404 {object} helpers.Response
// @Router /api/tasks/scrape [post]
func (h *TaskHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.AuthorID != nil {
		t, _, err := h.service.EnqueueScrapeAuthor(r.Context(), *req.AuthorID)
		if err != nil {
			writeError(w, r, "Ошибка постановки сбора", err)
			return
		}
		helpers.JSON(w, http.StatusAccepted, []*models.Task{t})
		return
	}
	list, err := h.service.EnqueueScrapeAll(r.Context())
	if err != nil {
		writeError(w, r, "Ошибка постановки сбора", err)
		return
	}
	helpers.JSON(w, http.StatusAccepted, list)
}
