// File: internal/service/token.go
package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken token 格式錯誤、簽章不符或已過期
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims 定義 JWT 負載內容，只帶使用者 ID
type CustomClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenVerifier 驗證 bearer token 並取回使用者 ID
type TokenVerifier interface {
	Verify(token string) (int, error)
}

// TokenIssuer 為使用者簽發 bearer token
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// 以下變數供測試覆寫
var (
	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims
	newTokenID      = uuid.NewString
)

// TokenService 以 HS256 簽發與驗證存取令牌；無狀態，不維護撤銷清單
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL token 有效時間
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue 依據使用者 ID 產生 JWT
func (s *TokenService) Issue(userID int) (string, error) {
	now := timeNow()
	claims := CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newTokenID(),
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify 驗證並解析 JWT，回傳內含的使用者 ID
func (s *TokenService) Verify(tokenString string) (int, error) {
	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(timeNow), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims.UserID, nil
}
