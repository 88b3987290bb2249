package models

import "time"

const (
	ErrorSourceScraper = "scraper"
	ErrorSourceVK      = "vk"
	ErrorSourceAPI     = "api"
	ErrorSourceClient  = "client"

	ErrorStatusOpen     = "open"
	ErrorStatusResolved = "resolved"
)

type ErrorReport struct {
	ID         int64          `json:"id"`
	Source     string         `json:"source"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
}

type ErrorReportRequest struct {
	Code    string         `json:"code"    example:"ui_crash"`
	Message string         `json:"message" example:"не удалось отрисовать ленту"`
	Context map[string]any `json:"context"`
}
