package handlers

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/utils/helpers"
)

// AdminLogsHandler читает JSON-логи, которые пишет lumberjack:
// текущий app.log и ротированные app-<timestamp>.log[.gz].
// День записи определяется по её собственному полю time: app.log может содержать
// несколько суток, а имя ротированного файла несёт время ротации, а не записей.
type AdminLogsHandler struct {
	LogDir    string
	Retention int
	loc       *time.Location
	now       func() time.Time
}

func NewAdminLogsHandler() *AdminLogsHandler {
	return &AdminLogsHandler{LogDir: logger.LogDir, Retention: 14, loc: time.Local, now: time.Now}
}

// ListDays godoc
// @Summary      Доступные дни логов
// @Tags         admin-logs
// @Security     ApiKeyAuth
// @Produce      json
// @Success      200 {object} map[string][]string "days"
// @Router       /api/admin/logs/days [get]
func (h *AdminLogsHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	oldest := h.now().In(h.loc).AddDate(0, 0, -(h.Retention - 1)).Format(time.DateOnly)
	seen := map[string]bool{}
	_ = h.forEachLine(func(raw []byte) bool {
		var entry logEntry
		if json.Unmarshal(raw, &entry) != nil {
			return true
		}
		if t, ok := entry.parseTime(); ok {
			if d := t.In(h.loc).Format(time.DateOnly); d >= oldest {
				seen[d] = true
			}
		}
		return true
	})
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	helpers.JSON(w, http.StatusOK, map[string]any{"days": days})
}

// GetLogs godoc
// @Summary      Логи за день
// @Description  Строки логов за день с фильтрами по уровню, часу и подстроке. Пагинация курсором (номер строки).
// @Tags         admin-logs
// @Security     ApiKeyAuth
// @Produce      json
// @Param        day     query  string true  "Дата (YYYY-MM-DD)"
// @Param        level   query  string false "CSV уровней: debug,info,warn,error"
// @Param        hour    query  int    false "Час (0-23)"
// @Param        q       query  string false "Поиск по подстроке"
// @Param        limit   query  int    false "Лимит (по умолч. 200, макс. 1000)"
// @Param        cursor  query  int    false "Курсор из nextCursor"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} helpers.Response "bad day"
// @Failure      404 {object} helpers.Response "day not found"
// @Router       /api/admin/logs [get]
func (h *AdminLogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := q.Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Некорректная дата, нужен формат YYYY-MM-DD")
		return
	}

	levels := upperSet(q.Get("level"))
	needle := strings.ToLower(strings.TrimSpace(q.Get("q")))
	hour := -1
	if hv, err := strconv.Atoi(q.Get("hour")); err == nil && hv >= 0 && hv <= 23 {
		hour = hv
	}
	limit := clampAtoi(q.Get("limit"), 200, 1, 1000)
	cursor := clampAtoi(q.Get("cursor"), 0, 0, 10_000_000)

	lineNo := 0
	found := false
	items := []json.RawMessage{}
	err := h.forEachLine(func(raw []byte) bool {
		lineNo++
		var entry logEntry
		if json.Unmarshal(raw, &entry) != nil {
			return true
		}
		t, ok := entry.parseTime()
		if !ok {
			return true
		}
		t = t.In(h.loc)
		if t.Format(time.DateOnly) != day {
			return true
		}
		found = true
		if lineNo <= cursor {
			return true
		}
		if needle != "" && !strings.Contains(strings.ToLower(string(raw)), needle) {
			return true
		}
		if len(levels) > 0 && !levels[strings.ToUpper(entry.Level)] {
			return true
		}
		if hour >= 0 && t.Hour() != hour {
			return true
		}
		items = append(items, append(json.RawMessage{}, raw...))
		return len(items) < limit
	})
	if err != nil || !found {
		helpers.Error(w, http.StatusNotFound, "Логи за этот день не найдены")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]any{
		"day":        day,
		"items":      items,
		"nextCursor": lineNo,
	})
}

// Stats godoc
// @Summary      Статистика логов по часам
// @Tags         admin-logs
// @Security     ApiKeyAuth
// @Produce      json
// @Param        day query string true "Дата (YYYY-MM-DD)"
// @Success      200 {object} map[string]interface{}
// @Router       /api/admin/logs/stats [get]
func (h *AdminLogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if !reDay.MatchString(day) {
		helpers.Error(w, http.StatusBadRequest, "Некорректная дата, нужен формат YYYY-MM-DD")
		return
	}
	stats := make(map[int]map[string]int, 24)
	for hr := 0; hr < 24; hr++ {
		stats[hr] = map[string]int{}
	}
	_ = h.forEachLine(func(raw []byte) bool {
		var entry logEntry
		if json.Unmarshal(raw, &entry) != nil || entry.Level == "" {
			return true
		}
		if t, ok := entry.parseTime(); ok {
			if t = t.In(h.loc); t.Format(time.DateOnly) == day {
				stats[t.Hour()][strings.ToUpper(entry.Level)]++
			}
		}
		return true
	})
	helpers.JSON(w, http.StatusOK, map[string]any{"day": day, "stats": stats})
}

var reDay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type logEntry struct {
	Time  string `json:"time"`
	Level string `json:"level"`
}

// zap пишет время в ISO8601 с миллисекундами и смещением без двоеточия.
var logTimeLayouts = []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano}

func (e logEntry) parseTime() (time.Time, bool) {
	for _, layout := range logTimeLayouts {
		if t, err := time.Parse(layout, e.Time); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// logFiles: ротированные app-<ts>.log[.gz] по возрастанию времени ротации, затем текущий app.log.
func (h *AdminLogsHandler) logFiles() ([]string, error) {
	entries, err := os.ReadDir(h.LogDir)
	if err != nil {
		return nil, err
	}
	var rotated []string
	current := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == "app.log":
			current = filepath.Join(h.LogDir, name)
		case strings.HasPrefix(name, "app-") &&
			(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz")):
			rotated = append(rotated, filepath.Join(h.LogDir, name))
		}
	}
	sort.Strings(rotated)
	if current != "" {
		rotated = append(rotated, current)
	}
	return rotated, nil
}

func (h *AdminLogsHandler) forEachLine(handle func([]byte) bool) error {
	files, err := h.logFiles()
	if err != nil || len(files) == 0 {
		return os.ErrNotExist
	}
	for _, path := range files {
		if !scanFile(path, handle) {
			return nil
		}
	}
	return nil
}

// scanFile возвращает false, если handle попросил остановиться.
func scanFile(path string, handle func([]byte) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return true
		}
		defer gz.Close()
		reader = gz
	}

	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if !handle(sc.Bytes()) {
			return false
		}
	}
	return true
}

func upperSet(csv string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			m[strings.ToUpper(p)] = true
		}
	}
	return m
}

func clampAtoi(s string, def, min, max int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
