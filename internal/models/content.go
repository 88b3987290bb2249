package models

import "time"

const (
	StatusNew      = "new"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged"
)

func IsValidModerationStatus(s string) bool {
	switch s {
	case StatusNew, StatusApproved, StatusRejected, StatusFlagged:
		return true
	}
	return false
}

type Post struct {
	ID              int64     `json:"id"`
	AuthorID        int64     `json:"author_id"`
	VKPostID        int64     `json:"vk_post_id"`
	Text            string    `json:"text"`
	Likes           int       `json:"likes"`
	Reposts         int       `json:"reposts"`
	Views           int       `json:"views"`
	CommentsCount   int       `json:"comments_count"`
	PublishedAt     time.Time `json:"published_at"`
	Status          string    `json:"status"`
	MatchedKeywords []string  `json:"matched_keywords"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Comment struct {
	ID              int64     `json:"id"`
	PostID          int64     `json:"post_id"`
	VKCommentID     int64     `json:"vk_comment_id"`
	FromID          int64     `json:"from_id"`
	Text            string    `json:"text"`
	Likes           int       `json:"likes"`
	PublishedAt     time.Time `json:"published_at"`
	Status          string    `json:"status"`
	MatchedKeywords []string  `json:"matched_keywords"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ContentFilter используется и для постов, и для комментариев.
type ContentFilter struct {
	AuthorID       int64
	PostID         int64
	Status         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

type StatusRequest struct {
	Status string `json:"status" example:"approved"`
}

type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type AnalyzeTextRequest struct {
	Text string `json:"text" example:"Жители жалуются на плохие дороги"`
}
