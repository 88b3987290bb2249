package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vkmod/internal/models"
	"vkmod/internal/reqctx"
	"vkmod/internal/utils"
	"vkmod/internal/utils/helpers"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeRevoked struct {
	tokens map[string]bool
	err    error
}

func (f *fakeRevoked) IsRevoked(_ context.Context, tok string) (bool, error) {
	return f.tokens[tok], f.err
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := reqctx.GetUserID(r.Context())
		role, _ := reqctx.GetRole(r.Context())
		helpers.JSON(w, http.StatusOK, map[string]any{"user_id": uid, "role": role})
	})
}

func bearer(t *testing.T, userID int, role, tokenType string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, userID, role, time.Minute, tokenType)
	require.NoError(t, err)
	return tok
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	revoked := &fakeRevoked{tokens: map[string]bool{}}
	h := JWTAuth(testSecret, revoked)(echoIdentity())

	valid := bearer(t, 7, models.RoleModerator, utils.TokenAccess)
	rec := doRequest(h, valid)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			UserID int    `json:"user_id"`
			Role   string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 7, body.Data.UserID)
	require.Equal(t, models.RoleModerator, body.Data.Role)

	require.Equal(t, http.StatusUnauthorized, doRequest(h, "").Code)
	require.Equal(t, http.StatusUnauthorized, doRequest(h, "garbage").Code)
	require.Equal(t, http.StatusUnauthorized, doRequest(h, bearer(t, 7, models.RoleAdmin, utils.TokenRefresh)).Code,
		"refresh-токен не годится для доступа к API")

	revoked.tokens[valid] = true
	require.Equal(t, http.StatusUnauthorized, doRequest(h, valid).Code)
}

func TestJWTAuth_BlacklistUnavailable(t *testing.T) {
	h := JWTAuth(testSecret, &fakeRevoked{err: errors.New("redis down")})(echoIdentity())
	require.Equal(t, http.StatusOK, doRequest(h, bearer(t, 1, models.RoleViewer, utils.TokenAccess)).Code)
}

func TestRoles(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	chain := func(guard func(http.Handler) http.Handler) http.Handler {
		return JWTAuth(testSecret, nil)(AdminFastLane(guard(ok)))
	}

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		role  string
		want  int
	}{
		{"viewer reads", Viewers, models.RoleViewer, http.StatusNoContent},
		{"viewer cannot moderate", Moderators, models.RoleViewer, http.StatusForbidden},
		{"moderator moderates", Moderators, models.RoleModerator, http.StatusNoContent},
		{"moderator is not admin", Admins, models.RoleModerator, http.StatusForbidden},
		{"admin fast lane", OnlyRole("nobody"), models.RoleAdmin, http.StatusNoContent},
		{"unknown role", Viewers, "guest", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(chain(tc.guard), bearer(t, 1, tc.role, utils.TokenAccess))
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAnyRole_NoRoleInContext(t *testing.T) {
	rec := httptest.NewRecorder()
	Viewers(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 36)
	require.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "client-42", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id\nwith newline")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, "bad id\nwith newline", seen)
}

func TestRecovererAndLogging(t *testing.T) {
	h := RequestID(Logging(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
}

func TestLoggingResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	_, _ = lrw.Write([]byte("hello"))
	lrw.WriteHeader(http.StatusTeapot)
	require.Equal(t, http.StatusOK, lrw.statusCode, "после записи тела статус уже отправлен")
	require.Equal(t, 5, lrw.bytes)
}
