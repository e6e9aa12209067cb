// @title        Quiz API
// @version      1.0
// @description  題庫與測驗管理的後端 API 文件
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description 格式為 "Bearer <token>"
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-api/internal/apperr"
	"quiz-api/internal/cache"
	"quiz-api/internal/config"
	"quiz-api/internal/database"
	"quiz-api/internal/router"
	"quiz-api/internal/service"
	"quiz-api/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"golang.org/x/time/rate"

	_ "quiz-api/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

const shutdownTimeout = 10 * time.Second

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = serveUntilSignal
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
)

// serveUntilSignal 啟動 HTTP server，收到 SIGINT/SIGTERM 時優雅關閉
func serveUntilSignal(e *echo.Echo, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		e.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func logLevel(level string) glog.Lvl {
	switch level {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	default:
		return glog.INFO
	}
}

// newEcho 建立 echo 實例並掛上全域中介層
func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	glog.SetLevel(logLevel(cfg.LogLevel))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit)),
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return apperr.TooManyRequests("Too many requests, please try again later")
			},
		}))
	}
	return e
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	service.SetBcryptCost(cfg.BcryptCost)

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("Token 設定錯誤: %v", err)
	}

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer rdb.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	// 最後 defer，最先執行：先等背景工作寫完再關閉 DB
	wp := newWorkerPool(cfg.WorkerCount)
	defer wp.Stop()

	e := newEcho(cfg)
	router.Setup(e, router.Deps{
		DB:      db,
		Cache:   rdb,
		Tokens:  tokens,
		Limiter: service.NewLoginThrottle(rdb, cfg.LoginMaxFailures, cfg.LoginLockout),
		Pool:    wp,
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return startServer(e, cfg.HTTPAddr)
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
