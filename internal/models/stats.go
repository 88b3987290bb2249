package models

type SystemStats struct {
	TotalUsers int `json:"total_users"`
	Admins     int `json:"admins"`
	Moderators int `json:"moderators"`
	Viewers    int `json:"viewers"`

	Authors       int `json:"authors"`
	ActiveAuthors int `json:"active_authors"`

	Posts           int `json:"posts"`
	FlaggedPosts    int `json:"flagged_posts"`
	Comments        int `json:"comments"`
	FlaggedComments int `json:"flagged_comments"`

	Keywords     int `json:"keywords"`
	OpenErrors   int `json:"open_errors"`
	PendingTasks int `json:"pending_tasks"`
	FailedTasks  int `json:"failed_tasks"`
}

// SearchResult — глобальный поиск по постам и комментариям.
type SearchResult struct {
	Posts    []*Post    `json:"posts"`
	Comments []*Comment `json:"comments"`
}
