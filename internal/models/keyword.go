package models

import "time"

type Keyword struct {
	ID        int       `json:"id"`
	Word      string    `json:"word"`
	Stem      string    `json:"stem"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type KeywordRequest struct {
	Word     string `json:"word"     example:"спам"`
	Category string `json:"category" example:"spam"`
	IsActive *bool  `json:"is_active,omitempty"`
}
