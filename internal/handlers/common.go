// Package handlers — HTTP-слой: разбор запроса, вызов сервиса, ответ в конверте {data, error}.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"vkmod/internal/logger"
	"vkmod/internal/reqctx"
	"vkmod/internal/repository"
	"vkmod/internal/services"
	"vkmod/internal/utils/helpers"
	"vkmod/internal/vk"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// errorStatus сопоставляет ошибку сервиса со статусом HTTP.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrUnknownSetting),
		errors.Is(err, repository.ErrInvalidReference),
		errors.Is(err, vk.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUserInactive),
		errors.Is(err, vk.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, vk.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, services.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrLoginLocked),
		errors.Is(err, vk.ErrTooManyRequests),
		errors.Is(err, vk.ErrRateLimit),
		errors.Is(err, vk.ErrFloodControl):
		return http.StatusTooManyRequests
	case vk.IsVKError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError отвечает ошибкой. Текст внутренних ошибок наружу не отдаётся.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errorStatus(err)
	log := logger.WithCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(op, zap.Error(err), zap.Int("status", status))
		msg := "внутренняя ошибка сервера"
		if status == http.StatusBadGateway {
			msg = "ошибка VK API"
		}
		helpers.Error(w, status, msg)
		return
	}
	log.Warn(op, zap.Error(err), zap.Int("status", status))
	helpers.Error(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON", zap.Error(err), zap.String("path", r.URL.Path))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return false
	}
	return true
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return 0, false
	}
	return id, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, ok := pathInt64(w, r, name)
	return int(id), ok
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func queryInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func queryOptBool(r *http.Request, name string) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// currentUserID берёт id из JWT. Для маршрутов без JWTAuth возвращает 0.
func currentUserID(r *http.Request) int {
	id, _ := reqctx.GetUserID(r.Context())
	return id
}

func currentRole(r *http.Request) string {
	role, _ := reqctx.GetRole(r.Context())
	return role
}
