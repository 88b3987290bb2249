package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"id":7}}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "не найдено")

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "не найдено", resp.Error)
	require.Nil(t, resp.Data)
}

func TestBuildErrorAlertHTML_Escapes(t *testing.T) {
	out := BuildErrorAlertHTML("scraper", "vk_15", "<script>x</script>",
		map[string]any{"task_id": "abc", "author_id": 5}, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	require.Contains(t, out, "&lt;script&gt;")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "01.05.2024 10:00:00")
	require.Less(t, strings.Index(out, "author_id"), strings.Index(out, "task_id"))
}
