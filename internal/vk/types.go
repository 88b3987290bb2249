package vk

import (
	"encoding/json"
	"time"
)

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *errorBody      `json:"error"`
}

type errorBody struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type Count struct {
	Count int `json:"count"`
}

type WallPost struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	FromID   int64  `json:"from_id"`
	Date     int64  `json:"date"`
	Text     string `json:"text"`
	IsPinned int    `json:"is_pinned"`
	Comments Count  `json:"comments"`
	Likes    Count  `json:"likes"`
	Reposts  Count  `json:"reposts"`
	Views    Count  `json:"views"`
}

func (p WallPost) PublishedAt() time.Time { return time.Unix(p.Date, 0).UTC() }

type WallPage struct {
	Count int        `json:"count"`
	Items []WallPost `json:"items"`
}

type Comment struct {
	ID      int64  `json:"id"`
	FromID  int64  `json:"from_id"`
	PostID  int64  `json:"post_id"`
	OwnerID int64  `json:"owner_id"`
	Date    int64  `json:"date"`
	Text    string `json:"text"`
	Deleted bool   `json:"deleted"`
	Likes   Count  `json:"likes"`
}

func (c Comment) PublishedAt() time.Time { return time.Unix(c.Date, 0).UTC() }

type CommentsPage struct {
	Count int       `json:"count"`
	Items []Comment `json:"items"`
}

type Group struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	IsClosed   int    `json:"is_closed"`
	Type       string `json:"type"`
}

type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ScreenName  string `json:"screen_name"`
	Deactivated string `json:"deactivated"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

const (
	ObjectUser  = "user"
	ObjectGroup = "group"
	ObjectPage  = "page"
)

type ResolvedObject struct {
	Type     string `json:"type"`
	ObjectID int64  `json:"object_id"`
}

// OwnerID переводит объект в owner_id для wall.* методов: у сообществ он отрицательный.
func (o ResolvedObject) OwnerID() int64 {
	if o.Type == ObjectUser {
		return o.ObjectID
	}
	return -o.ObjectID
}
