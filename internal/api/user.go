// File: internal/api/user.go
package api

import (
	"time"

	"quiz-api/internal/model"
)

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"Secret123!"`
}

// swagger:model api.LoginRequest
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"Secret123!"`
}

// UpdateUserRequest 只更新有出現的欄位
// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" example:"alice"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email" example:"alice@example.com"`
	Password *string `json:"password,omitempty" example:"NewSecret456!"`
}

// AuthUserResponse register/login 回傳的公開資料
// swagger:model api.AuthUserResponse
type AuthUserResponse struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Admin    bool   `json:"admin" example:"false"`
}

// swagger:model api.UserResponse
type UserResponse struct {
	ID          int        `json:"id" example:"1"`
	Username    string     `json:"username" example:"alice"`
	Email       string     `json:"email" example:"alice@example.com"`
	Admin       bool       `json:"admin" example:"false"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-05-01T15:04:05Z"`
	UpdatedAt   time.Time  `json:"updated_at" example:"2025-05-01T15:04:05Z"`
}

func NewAuthUserResponse(u *model.User) AuthUserResponse {
	return AuthUserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Admin: u.IsAdmin}
}

// NewUserResponse 不含 password_hash
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Admin:       u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
