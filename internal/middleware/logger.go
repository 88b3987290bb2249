package middleware

import (
	"net/http"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/reqctx"

	"go.uber.org/zap"
)

// Logging пишет по строке на запрос; уровень зависит от статуса ответа.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.Int("bytes", lrw.bytes),
			zap.Duration("duration", time.Since(start)),
		}
		if rid, ok := reqctx.GetRequestID(r.Context()); ok {
			fields = append(fields, zap.String("request_id", rid))
		}

		switch {
		case lrw.statusCode >= http.StatusInternalServerError:
			logger.Log.Error("HTTP-запрос", fields...)
		case lrw.statusCode >= http.StatusBadRequest:
			logger.Log.Warn("HTTP-запрос", fields...)
		default:
			logger.Log.Info("HTTP-запрос", fields...)
		}
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if !lrw.wroteHeader {
		lrw.statusCode = code
		lrw.wroteHeader = true
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	lrw.wroteHeader = true
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytes += n
	return n, err
}
