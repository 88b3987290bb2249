package models

import "time"

const (
	AuthorTypeUser  = "user"
	AuthorTypeGroup = "group"
)

// Author — источник контента во ВКонтакте: пользователь или сообщество.
// VKID совпадает с owner_id в VK API: у сообществ он отрицательный.
type Author struct {
	ID            int64      `json:"id"`
	VKID          int64      `json:"vk_id"`
	ScreenName    string     `json:"screen_name"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	IsActive      bool       `json:"is_active"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type AuthorRequest struct {
	VKID       int64  `json:"vk_id"       example:"-1"`
	ScreenName string `json:"screen_name" example:"apiclub"`
	Name       string `json:"name"        example:"VK API"`
	Type       string `json:"type"        example:"group"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type ResolveAuthorRequest struct {
	ScreenName string `json:"screen_name" example:"apiclub"`
}

type AuthorFilter struct {
	Type     string
	IsActive *bool
	Query    string
	Limit    int
	Offset   int
}
