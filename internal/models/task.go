package models

import (
	"encoding/json"
	"time"
)

const (
	TaskScrapeAuthor   = "scrape_author"
	TaskScrapeComments = "scrape_comments"
	TaskAnalyzePost    = "analyze_post"

	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
)

type Task struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	DedupKey    string          `json:"dedup_key,omitempty"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	RunAt       time.Time       `json:"run_at"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

type TaskFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

// Полезные нагрузки задач.
type AuthorPayload struct {
	AuthorID int64 `json:"author_id"`
}

type PostPayload struct {
	PostID int64 `json:"post_id"`
}

type ScrapeRequest struct {
	AuthorID *int64 `json:"author_id,omitempty"`
}
