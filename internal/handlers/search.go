package handlers

import (
	"net/http"
	"strings"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"

	"go.uber.org/zap"
)

type SearchHandler struct {
	search     *services.SearchService
	moderation *services.ModerationService
}

func NewSearchHandler(search *services.SearchService, moderation *services.ModerationService) *SearchHandler {
	return &SearchHandler{search: search, moderation: moderation}
}

// GlobalSearch godoc
// @Summary Поиск по постам и комментариям
// @Tags search
// @Security ApiKeyAuth
// @Produce json
// @Param query query string true "Поисковый запрос (от 2 символов)"
// @Param limit query int false "Лимит на каждый тип (по умолч. 50)"
// @Success 200 {object} models.SearchResult
// @Failure 400 {object} helpers.Response "Пустой запрос"
// @Router /api/search [get]
func (h *SearchHandler) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("q"))
	}
	if query == "" {
		log.Warn("search: пустой запрос")
		helpers.Error(w, http.StatusBadRequest, "Пустой запрос")
		return
	}

	start := time.Now()
	res, err := h.search.Search(r.Context(), query, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, "search: ошибка поиска", err)
		return
	}
	log.Info("search: готово",
		zap.String("query", query),
		zap.Int("posts_count", len(res.Posts)),
		zap.Int("comments_count", len(res.Comments)),
		zap.Duration("elapsed", time.Since(start)),
	)
	helpers.JSON(w, http.StatusOK, res)
}

// AnalyzeText godoc
// @Summary Анализ произвольного текста
// @Description Язык, счётчики слов и предложений, частые слова, части речи и совпавшие ключевые слова.
// @Tags analysis
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.AnalyzeTextRequest true "Текст"
// @Success 200 {object} analysis.Result
// @Failure 400 {object} helpers.Response
// @Router /api/analysis/text [post]
func (h *SearchHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.moderation.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, "Ошибка анализа текста", err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}
