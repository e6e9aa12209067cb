// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服務啟動所需的全部設定
type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	LoginMaxFailures int
	LoginLockout     time.Duration

	HTTPAddr    string
	RateLimit   float64
	WorkerCount int
	LogLevel    string
}

// fileConfig 對應 CONFIG_FILE 指向的 YAML；所有值以字串讀入，之後與環境變數一起解析
type fileConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       string `yaml:"db"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		TokenTTL         string `yaml:"token_ttl"`
		BcryptCost       string `yaml:"bcrypt_cost"`
		LoginMaxFailures string `yaml:"login_max_failures"`
		LoginLockout     string `yaml:"login_lockout"`
	} `yaml:"auth"`
	Server struct {
		HTTPAddr    string `yaml:"http_addr"`
		RateLimit   string `yaml:"rate_limit"`
		WorkerCount string `yaml:"worker_count"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func (f *fileConfig) values() map[string]string {
	return map[string]string{
		"DATABASE_URL":       f.Database.URL,
		"REDIS_ADDR":         f.Redis.Addr,
		"REDIS_PASSWORD":     f.Redis.Password,
		"REDIS_DB":           f.Redis.DB,
		"JWT_SECRET":         f.Auth.JWTSecret,
		"TOKEN_TTL":          f.Auth.TokenTTL,
		"BCRYPT_COST":        f.Auth.BcryptCost,
		"LOGIN_MAX_FAILURES": f.Auth.LoginMaxFailures,
		"LOGIN_LOCKOUT":      f.Auth.LoginLockout,
		"HTTP_ADDR":          f.Server.HTTPAddr,
		"RATE_LIMIT":         f.Server.RateLimit,
		"WORKER_COUNT":       f.Server.WorkerCount,
		"LOG_LEVEL":          f.Logging.Level,
	}
}

var defaults = map[string]string{
	"TOKEN_TTL":          "24h",
	"BCRYPT_COST":        "10",
	"LOGIN_MAX_FAILURES": "5",
	"LOGIN_LOCKOUT":      "15m",
	"HTTP_ADDR":          ":8080",
	"RATE_LIMIT":         "20",
	"WORKER_COUNT":       "1",
	"LOG_LEVEL":          "info",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load 依序套用預設值、CONFIG_FILE (若有) 與環境變數，環境變數優先
func Load() (*Config, error) {
	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fc.values() {
			if v != "" {
				values[k] = v
			}
		}
	}

	for k := range fileKeys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			values[k] = v
		}
	}

	return parse(values)
}

var fileKeys = (&fileConfig{}).values()

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("讀取設定檔失敗: %w", err)
	}
	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("解析設定檔失敗: %w", err)
	}
	return &fc, nil
}

func parse(values map[string]string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:   values["DATABASE_URL"],
		RedisAddr:     values["REDIS_ADDR"],
		RedisPassword: values["REDIS_PASSWORD"],
		JWTSecret:     values["JWT_SECRET"],
		HTTPAddr:      values["HTTP_ADDR"],
		LogLevel:      strings.ToLower(values["LOG_LEVEL"]),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if values["REDIS_DB"] == "" {
		return nil, fmt.Errorf("環境變數 REDIS_DB 未設定")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(values["REDIS_DB"]); err != nil || cfg.RedisDB < 0 {
		return nil, fmt.Errorf("無效的 REDIS_DB: %q", values["REDIS_DB"])
	}
	if cfg.TokenTTL, err = positiveDuration("TOKEN_TTL", values); err != nil {
		return nil, err
	}
	if cfg.LoginLockout, err = positiveDuration("LOGIN_LOCKOUT", values); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = positiveInt("WORKER_COUNT", values); err != nil {
		return nil, err
	}
	if cfg.LoginMaxFailures, err = positiveInt("LOGIN_MAX_FAILURES", values); err != nil {
		return nil, err
	}
	// bcrypt 接受 4..31
	if cfg.BcryptCost, err = strconv.Atoi(values["BCRYPT_COST"]); err != nil || cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("無效的 BCRYPT_COST: %q", values["BCRYPT_COST"])
	}
	if cfg.RateLimit, err = strconv.ParseFloat(values["RATE_LIMIT"], 64); err != nil || cfg.RateLimit < 0 {
		return nil, fmt.Errorf("無效的 RATE_LIMIT: %q", values["RATE_LIMIT"])
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("無效的 LOG_LEVEL: %q", values["LOG_LEVEL"])
	}

	return cfg, nil
}

func positiveInt(key string, values map[string]string) (int, error) {
	n, err := strconv.Atoi(values[key])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("無效的 %s: %q", key, values[key])
	}
	return n, nil
}

func positiveDuration(key string, values map[string]string) (time.Duration, error) {
	d, err := time.ParseDuration(values[key])
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("無效的 %s: %q", key, values[key])
	}
	return d, nil
}
