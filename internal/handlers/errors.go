package handlers

import (
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
)

type ErrorReportHandler struct {
	service *services.ErrorReportService
}

func NewErrorReportHandler(service *services.ErrorReportService) *ErrorReportHandler {
	return &ErrorReportHandler{service: service}
}

// Report godoc
// @Summary Отчёт об ошибке клиента
// @Tags errors
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.ErrorReportRequest true "Ошибка"
// @Success 201 {object} models.ErrorReport
// @Failure 400 {object} helpers.Response
// @Router /api/errors [post]
func (h *ErrorReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ErrorReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.service.ReportClient(r.Context(), currentUserID(r), &req)
	if err != nil {
		writeError(w, r, "Ошибка сохранения отчёта", err)
		return
	}
	helpers.JSON(w, http.StatusCreated, e)
}

// List godoc
// @Summary Журнал ошибок
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "open | resolved"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.Page[models.ErrorReport]
// @Router /api/admin/errors [get]
func (h *ErrorReportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query().Get("status"), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, r, "Ошибка получения журнала ошибок", err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Resolve godoc
// @Summary Закрыть ошибку
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID"
// @Success 200 {object} models.ErrorReport
// @Failure 404 {object} helpers.Response
// @Router /api/admin/errors/{id}/resolve [post]
func (h *ErrorReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	e, err := h.service.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ошибка закрытия отчёта", err)
		return
	}
	helpers.JSON(w, http.StatusOK, e)
}
