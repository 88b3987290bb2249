package routes

import (
	"net/http"

	"vkmod/internal/handlers"
	"vkmod/internal/middleware"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Authors  *handlers.AuthorHandler
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	Keywords *handlers.KeywordHandler
	Search   *handlers.SearchHandler
	Tasks    *handlers.TaskHandler
	Settings *handlers.SettingsHandler
	Errors   *handlers.ErrorReportHandler
	Admin    *handlers.AdminHandler
	Logs     *handlers.AdminLogsHandler
	Healthz  http.Handler
}

func InitRoutes(router *mux.Router, h Handlers, jwtSecret string, revoked middleware.RevocationChecker) {
	router.Use(middleware.RequestID, middleware.Logging, middleware.Recoverer)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.Handle("/healthz", h.Healthz).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(jwtSecret, revoked), middleware.AdminFastLane)

	viewer := protected.PathPrefix("").Subrouter()
	viewer.Use(middleware.Viewers)
	viewer.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	viewer.HandleFunc("/authors", h.Authors.List).Methods(http.MethodGet)
	viewer.HandleFunc("/authors/{id:[0-9]+}", h.Authors.Get).Methods(http.MethodGet)
	viewer.HandleFunc("/posts", h.Posts.List).Methods(http.MethodGet)
	viewer.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Get).Methods(http.MethodGet)
	viewer.HandleFunc("/comments", h.Comments.List).Methods(http.MethodGet)
	viewer.HandleFunc("/comments/{id:[0-9]+}", h.Comments.Get).Methods(http.MethodGet)
	viewer.HandleFunc("/keywords", h.Keywords.List).Methods(http.MethodGet)
	viewer.HandleFunc("/keywords/{id:[0-9]+}", h.Keywords.Get).Methods(http.MethodGet)
	viewer.HandleFunc("/search", h.Search.GlobalSearch).Methods(http.MethodGet)
	viewer.HandleFunc("/analysis/text", h.Search.AnalyzeText).Methods(http.MethodPost)
	viewer.HandleFunc("/tasks", h.Tasks.List).Methods(http.MethodGet)
	viewer.HandleFunc("/tasks/{id}", h.Tasks.Get).Methods(http.MethodGet)
	viewer.HandleFunc("/errors", h.Errors.Report).Methods(http.MethodPost)

	mod := protected.PathPrefix("").Subrouter()
	mod.Use(middleware.Moderators)
	mod.HandleFunc("/authors", h.Authors.Create).Methods(http.MethodPost)
	mod.HandleFunc("/authors/resolve", h.Authors.Resolve).Methods(http.MethodPost)
	mod.HandleFunc("/authors/{id:[0-9]+}", h.Authors.Update).Methods(http.MethodPut)
	mod.HandleFunc("/authors/{id:[0-9]+}", h.Authors.Delete).Methods(http.MethodDelete)
	mod.HandleFunc("/posts/{id:[0-9]+}/status", h.Posts.SetStatus).Methods(http.MethodPatch)
	mod.HandleFunc("/posts/{id:[0-9]+}/analyze", h.Posts.Analyze).Methods(http.MethodPost)
	mod.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Delete).Methods(http.MethodDelete)
	mod.HandleFunc("/comments/{id:[0-9]+}/status", h.Comments.SetStatus).Methods(http.MethodPatch)
	mod.HandleFunc("/comments/{id:[0-9]+}/analyze", h.Comments.Analyze).Methods(http.MethodPost)
	mod.HandleFunc("/comments/{id:[0-9]+}", h.Comments.Delete).Methods(http.MethodDelete)
	mod.HandleFunc("/keywords", h.Keywords.Create).Methods(http.MethodPost)
	mod.HandleFunc("/keywords/{id:[0-9]+}", h.Keywords.Update).Methods(http.MethodPut)
	mod.HandleFunc("/keywords/{id:[0-9]+}", h.Keywords.Delete).Methods(http.MethodDelete)
	mod.HandleFunc("/tasks/scrape", h.Tasks.Scrape).Methods(http.MethodPost)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Admins)
	admin.HandleFunc("/users", h.Auth.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}", h.Auth.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}", h.Auth.UpdateUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id:[0-9]+}", h.Auth.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/settings", h.Settings.List).Methods(http.MethodGet)
	admin.HandleFunc("/settings/export", h.Settings.Export).Methods(http.MethodGet)
	admin.HandleFunc("/settings/import", h.Settings.Import).Methods(http.MethodPost)
	admin.HandleFunc("/settings/{key}", h.Settings.Get).Methods(http.MethodGet)
	admin.HandleFunc("/settings/{key}", h.Settings.Set).Methods(http.MethodPut)
	admin.HandleFunc("/errors", h.Errors.List).Methods(http.MethodGet)
	admin.HandleFunc("/errors/{id:[0-9]+}/resolve", h.Errors.Resolve).Methods(http.MethodPost)
	admin.HandleFunc("/stats", h.Admin.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/vk/stats", h.Admin.VKStats).Methods(http.MethodGet)
	admin.HandleFunc("/vk/cache", h.Admin.FlushVKCache).Methods(http.MethodDelete)
	admin.HandleFunc("/logs/days", h.Logs.ListDays).Methods(http.MethodGet)
	admin.HandleFunc("/logs/stats", h.Logs.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/logs", h.Logs.GetLogs).Methods(http.MethodGet)
}
