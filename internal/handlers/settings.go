package handlers

import (
	"io"
	"net/http"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	service *services.SettingsService
}

func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// List godoc
// @Summary Настройки
// @Description Все известные настройки с текущими значениями (или значениями по умолчанию).
// @Tags admin-settings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.Setting
// @Router /api/admin/settings [get]
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, "Ошибка получения настроек", err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary Настройка по ключу
// @Tags admin-settings
// @Security ApiKeyAuth
// @Produce json
// @Param key path string true "Ключ, например scrape.interval"
// @Success 200 {object} models.Setting
// @Failure 400 {object} helpers.Response "Неизвестная настройка"
// @Router /api/admin/settings/{key} [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		writeError(w, r, "Ошибка получения настройки", err)
		return
	}
	helpers.JSON(w, http.StatusOK, s)
}

// Set godoc
// @Summary Изменение настройки
// @Tags admin-settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param key path string true "Ключ"
// @Param input body models.SettingRequest true "Значение"
// @Success 200 {object} models.Setting
// @Failure 400 {object} helpers.Response
// @Router /api/admin/settings/{key} [put]
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req models.SettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := mux.Vars(r)["key"]
	s, err := h.service.Set(r.Context(), key, req.Value)
	if err != nil {
		writeError(w, r, "Ошибка изменения настройки", err)
		return
	}
	logger.WithCtx(r.Context()).Info("Настройка изменена", zap.String("key", key), zap.String("value", s.Value))
	helpers.JSON(w, http.StatusOK, s)
}

// Export godoc
// @Summary Экспорт настроек в YAML
// @Tags admin-settings
// @Security ApiKeyAuth
// @Produce application/x-yaml
// @Success 200 {file} file "settings.yaml"
// @Router /api/admin/settings/export [get]
func (h *SettingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context())
	if err != nil {
		writeError(w, r, "Ошибка экспорта настроек", err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="settings.yaml"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import godoc
// @Summary Импорт настроек из YAML
// @Description Все значения проверяются до записи: при любой ошибке ничего не меняется.
// @Tags admin-settings
// @Security ApiKeyAuth
// @Accept application/x-yaml
// @Produce json
// @Success 200 {object} map[string]int "imported"
// @Failure 400 {object} helpers.Response
// @Router /api/admin/settings/import [post]
func (h *SettingsHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}
	n, err := h.service.Import(r.Context(), data)
	if err != nil {
		writeError(w, r, "Ошибка импорта настроек", err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]int{"imported": n})
}
