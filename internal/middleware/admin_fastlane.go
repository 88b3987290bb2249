package middleware

import (
	"context"
	"net/http"

	"vkmod/internal/models"
	"vkmod/internal/reqctx"
)

type ctxKey string

// contextSkipGuards ставится админам, чтобы role-проверки их пропускали.
const contextSkipGuards ctxKey = "skip_guards"

func WithSkipGuards(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextSkipGuards, true)
}

func SkipGuards(ctx context.Context) bool {
	b, _ := ctx.Value(contextSkipGuards).(bool)
	return b
}

// AdminFastLane ставится после JWTAuth, чтобы роль уже была в контексте.
func AdminFastLane(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := reqctx.GetRole(r.Context()); role == models.RoleAdmin {
			r = r.WithContext(WithSkipGuards(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}
