// File: internal/router/router.go
package router

import (
	"quiz-api/internal/cache"
	"quiz-api/internal/database"
	"quiz-api/internal/handler/health"
	"quiz-api/internal/handler/questions"
	"quiz-api/internal/handler/quizzes"
	"quiz-api/internal/handler/users"
	"quiz-api/internal/middleware"
	"quiz-api/internal/service"
	"quiz-api/internal/worker"

	"github.com/labstack/echo/v4"
)

// Tokens 簽發與驗證 bearer token
type Tokens interface {
	service.TokenIssuer
	service.TokenVerifier
}

// Deps 路由需要的所有外部資源，由 main 建立後傳入
type Deps struct {
	DB      database.DB
	Cache   cache.Cache
	Tokens  Tokens
	Limiter users.LoginLimiter
	Pool    worker.Pool
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	guard := middleware.NewGuard(d.DB, d.Tokens)
	authed := guard.Chain(middleware.Authenticate)
	adminOnly := guard.Chain(middleware.Authenticate, middleware.RequireAdmin)
	authorOnly := guard.Chain(middleware.Authenticate, middleware.RequireAuthor)

	api := e.Group("/api")

	// 健康檢查（需登入）
	api.GET("/ping", health.PingHandler(d.DB, d.Cache), authed...)

	apiUsers := api.Group("/users")
	apiUsers.POST("/register", users.RegisterHandler(d.DB, d.Tokens))
	apiUsers.POST("/login", users.LoginHandler(d.DB, d.Tokens, d.Limiter, d.Pool))
	apiUsers.GET("", users.ListUsersHandler(d.DB), adminOnly...)
	apiUsers.GET("/:id", users.GetUserHandler(d.DB))
	apiUsers.PUT("/:id", users.UpdateUserHandler(d.DB), authed...)
	apiUsers.DELETE("/:id", users.DeleteUserHandler(d.DB), adminOnly...)

	apiQuestions := api.Group("/questions")
	apiQuestions.GET("", questions.ListQuestionsHandler(d.DB))
	apiQuestions.GET("/:id", questions.GetQuestionHandler(d.DB))
	apiQuestions.POST("", questions.CreateQuestionHandler(d.DB), authed...)
	apiQuestions.PUT("/:id", questions.UpdateQuestionHandler(d.DB), authorOnly...)
	apiQuestions.DELETE("/:id", questions.DeleteQuestionHandler(d.DB), authorOnly...)

	apiQuizzes := api.Group("/quizzes")
	apiQuizzes.GET("", quizzes.ListQuizzesHandler(d.DB))
	apiQuizzes.GET("/:id", quizzes.GetQuizHandler(d.DB))
	apiQuizzes.POST("", quizzes.CreateQuizHandler(d.DB), adminOnly...)
	apiQuizzes.PUT("/:id", quizzes.UpdateQuizHandler(d.DB), adminOnly...)
	apiQuizzes.DELETE("/:id", quizzes.DeleteQuizHandler(d.DB), adminOnly...)
}
