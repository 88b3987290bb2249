package models

import "time"

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleViewer    = "viewer"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// TokenPair — ответ на логин/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" example:"moderator_1"`
	Email    string `json:"email"    example:"mod@example.com"`
	Password string `json:"password" example:"s3cretpass"`
}

type LoginRequest struct {
	Username string `json:"username" example:"moderator_1"`
	Password string `json:"password" example:"s3cretpass"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
