package middleware

import (
	"errors"
	"strconv"
	"strings"

	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/model"
	"quiz-api/internal/service"
	"quiz-api/internal/store"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserKey     = "user"
	ContextQuestionKey = "question"
)

// Check 授權檢查種類，依 Chain 傳入的順序執行
type Check int

const (
	Authenticate Check = iota
	RequireAdmin
	RequireAuthor
)

// 以下變數供測試覆寫
var (
	getUserByID     = store.GetUserByID
	getQuestionByID = store.GetQuestionByID
)

// Guard 持有授權檢查需要的連線與 token 驗證器
type Guard struct {
	db     database.DB
	tokens service.TokenVerifier
}

func NewGuard(db database.DB, tokens service.TokenVerifier) *Guard {
	return &Guard{db: db, tokens: tokens}
}

// Chain 依序組出路由要套用的中介層
func (g *Guard) Chain(checks ...Check) []echo.MiddlewareFunc {
	mws := make([]echo.MiddlewareFunc, 0, len(checks))
	for _, check := range checks {
		switch check {
		case Authenticate:
			mws = append(mws, g.Authenticate)
		case RequireAdmin:
			mws = append(mws, g.RequireAdmin)
		case RequireAuthor:
			mws = append(mws, g.RequireAuthor)
		default:
			panic("middleware: unknown check " + strconv.Itoa(int(check)))
		}
	}
	return mws
}

func bearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate 驗證 bearer token 並綁定目前使用者
func (g *Guard) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return apperr.Unauthenticated("No token provided")
		}

		userID, err := g.tokens.Verify(token)
		if err != nil {
			return apperr.Wrap(apperr.KindInvalidCredentials, "Invalid or expired token", err)
		}

		user, err := getUserByID(c.Request().Context(), g.db, userID)
		if errors.Is(err, store.ErrNotFound) {
			// token 簽發後使用者已被刪除
			return apperr.Wrap(apperr.KindPrincipalNotFound, "User not found", err)
		}
		if err != nil {
			return apperr.Internal("Internal Server Error", err)
		}

		c.Set(ContextUserKey, user)
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := Principal(c)
		if !ok {
			return apperr.Unauthenticated("User not authenticated")
		}
		if !user.IsAdmin {
			return apperr.Forbidden("You are not authorized to perform this operation!")
		}
		return next(c)
	}
}

// RequireAuthor 只允許題目作者通過，並把題目綁到 context 供 handler 使用
func (g *Guard) RequireAuthor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := Principal(c)
		if !ok {
			return apperr.Unauthenticated("User not authenticated")
		}

		id, err := model.ParseID(c.Param("id"))
		if err != nil {
			return apperr.Validation("invalid question ID")
		}

		q, err := getQuestionByID(c.Request().Context(), g.db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Question not found")
		}
		if err != nil {
			return apperr.Internal("Internal Server Error", err)
		}
		if q.AuthorID != user.ID {
			return apperr.Forbidden("You are not the author of this question")
		}

		c.Set(ContextQuestionKey, q)
		return next(c)
	}
}

// Principal 取出 Authenticate 綁定的使用者
func Principal(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	return user, ok && user != nil
}

// BoundQuestion 取出 RequireAuthor 綁定的題目
func BoundQuestion(c echo.Context) (*model.Question, bool) {
	q, ok := c.Get(ContextQuestionKey).(*model.Question)
	return q, ok && q != nil
}
