package middleware

import (
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/reqctx"
	"vkmod/internal/utils/helpers"
)

func OnlyRole(role string) func(http.Handler) http.Handler {
	return AnyRole(role)
}

func AnyRole(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SkipGuards(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			userRole, ok := reqctx.GetRole(r.Context())
			if !ok {
				helpers.Error(w, http.StatusForbidden, "Не удалось определить роль")
				return
			}
			if _, found := roleSet[userRole]; !found {
				helpers.Error(w, http.StatusForbidden, "Доступ запрещён")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Готовые наборы ролей для маршрутов.
var (
	Viewers    = AnyRole(models.RoleViewer, models.RoleModerator, models.RoleAdmin)
	Moderators = AnyRole(models.RoleModerator, models.RoleAdmin)
	Admins     = OnlyRole(models.RoleAdmin)
)
