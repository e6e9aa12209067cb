// File: internal/service/password.go
package service

import (
	"errors"

	"quiz-api/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost 密碼雜湊的工作因子
const DefaultBcryptCost = 10

var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword

	bcryptCost = DefaultBcryptCost
)

// ErrPasswordMismatch 密碼與雜湊不符
var ErrPasswordMismatch = errors.New("invalid password")

// SetBcryptCost 於啟動時依設定調整工作因子
func SetBcryptCost(cost int) {
	bcryptCost = cost
}

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
}

// AuthenticateUser 以明文密碼驗證使用者
func AuthenticateUser(user model.User, password string) error {
	if user.PasswordHash == "" {
		return ErrPasswordMismatch
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
