package users

import (
	"context"
	"time"

	"quiz-api/internal/service"
	"quiz-api/internal/store"
)

// LoginLimiter 限制同一使用者名稱連續登入失敗的次數
type LoginLimiter interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// 以下變數供測試覆寫
var (
	hashPassword      = service.HashPassword
	authenticateUser  = service.AuthenticateUser
	createUser        = store.CreateUser
	getUserByID       = store.GetUserByID
	getUserByUsername = store.GetUserByUsername
	emailTaken        = store.EmailTaken
	listUsers         = store.ListUsers
	updateUser        = store.UpdateUser
	touchLastLogin    = store.TouchLastLogin
	deleteUser        = store.DeleteUser
	timeNow           = time.Now
)
