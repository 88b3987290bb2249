package handlers

import (
	"context"
	"net/http"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
	"vkmod/internal/vk"
)

type VKStatsSource interface {
	Stats() vk.ClientStats
}

type VKCache interface {
	CacheStats() vk.CacheStats
	Flush()
}

type AdminHandler struct {
	stats   *services.StatsService
	vk      VKStatsSource
	vkCache VKCache
}

func NewAdminHandler(stats *services.StatsService, client VKStatsSource, cache VKCache) *AdminHandler {
	return &AdminHandler{stats: stats, vk: client, vkCache: cache}
}

// Stats godoc
// @Summary Сводная статистика системы
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.SystemStats
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.GetSystemStats(r.Context())
	if err != nil {
		writeError(w, r, "Ошибка получения статистики", err)
		return
	}
	helpers.JSON(w, http.StatusOK, st)
}

type vkStatsResponse struct {
	Client vk.ClientStats `json:"client"`
	Cache  vk.CacheStats  `json:"cache"`
}

// VKStats godoc
// @Summary Статистика клиента VK API
// @Description Счётчики запросов, ошибок по кодам, повторов и состояние кэша ответов.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} vkStatsResponse
// @Router /api/admin/vk/stats [get]
func (h *AdminHandler) VKStats(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, vkStatsResponse{Client: h.vk.Stats(), Cache: h.vkCache.CacheStats()})
}

// FlushVKCache godoc
// @Summary Очистить кэш ответов VK API
// @Tags admin
// @Security ApiKeyAuth
// @Success 204
// @Router /api/admin/vk/cache [delete]
func (h *AdminHandler) FlushVKCache(w http.ResponseWriter, r *http.Request) {
	h.vkCache.Flush()
	logger.WithCtx(r.Context()).Info("Кэш VK API очищен")
	w.WriteHeader(http.StatusNoContent)
}

// Pinger — зависимость, которую проверяет healthz (pgxpool.Pool, redis-клиент через адаптер).
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Healthz возвращает обработчик, проверяющий зависимости. Если любая недоступна, отвечает 503.
//
// @Summary Проверка живости
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/healthz [get]
func Healthz(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := map[string]string{}
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				out[name] = "down: " + err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		helpers.JSON(w, status, out)
	}
}
