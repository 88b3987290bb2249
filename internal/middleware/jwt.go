package middleware

import (
	"context"
	"net/http"
	"strings"

	"vkmod/internal/logger"
	"vkmod/internal/reqctx"
	"vkmod/internal/utils"
	"vkmod/internal/utils/helpers"

	"go.uber.org/zap"
)

// RevocationChecker — проверка блоклиста access-токенов (AuthService.IsRevoked).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}

// BearerToken достаёт токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

func JWTAuth(secret string, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			log := logger.WithCtx(r.Context())

			tokenString, ok := BearerToken(r)
			if !ok {
				log.Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "Отсутствует access token")
				return
			}

			claims, err := utils.ParseToken(secret, tokenString)
			if err != nil || claims.TokenType != utils.TokenAccess {
				log.Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "Неверный или просроченный токен")
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), tokenString)
				if err != nil {
					// Redis недоступен: пропускаем, токен всё равно короткоживущий
					log.Warn("JWTAuth: не удалось проверить блоклист", zap.Error(err))
				}
				if isRevoked {
					log.Warn("JWTAuth: токен найден в блоклисте")
					helpers.Error(w, http.StatusUnauthorized, "Неверный или просроченный токен")
					return
				}
			}

			ctx := reqctx.WithUserID(r.Context(), claims.UserID)
			ctx = reqctx.WithRole(ctx, claims.Role)
			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден", zap.String("role", claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
