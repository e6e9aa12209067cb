package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/model"
	"quiz-api/internal/service"
	"quiz-api/internal/store"
	"quiz-api/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testValidator struct{ v *validator.Validate }

func (t *testValidator) Validate(i interface{}) error { return t.v.Struct(i) }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	return e
}

func newJSONCtx(e *echo.Echo, method, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetPath("/users/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

// serve 執行 handler，錯誤交給全域錯誤處理器輸出
func serve(c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		c.Echo().HTTPErrorHandler(err, c)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(id int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d", id), nil
}

type fakeLimiter struct {
	blocked  bool
	err      error
	failures int
	resets   int
}

func (f *fakeLimiter) Allowed(context.Context, string) (bool, error) { return !f.blocked, f.err }
func (f *fakeLimiter) RecordFailure(context.Context, string) error {
	f.failures++
	return f.err
}
func (f *fakeLimiter) Reset(context.Context, string) error {
	f.resets++
	return f.err
}

// syncPool 直接在呼叫端執行工作
type syncPool struct{ mu sync.Mutex }

func (p *syncPool) Submit(t worker.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t()
}
func (p *syncPool) Stop() {}

func restore() {
	hashPassword = service.HashPassword
	authenticateUser = service.AuthenticateUser
	createUser = store.CreateUser
	getUserByID = store.GetUserByID
	getUserByUsername = store.GetUserByUsername
	emailTaken = store.EmailTaken
	listUsers = store.ListUsers
	updateUser = store.UpdateUser
	touchLastLogin = store.TouchLastLogin
	deleteUser = store.DeleteUser
	timeNow = time.Now
}

// memUsers 以 map 模擬使用者資料表
type memUsers struct {
	byID   map[int]*model.User
	nextID int
}

func installMemUsers(t *testing.T) *memUsers {
	t.Helper()
	t.Cleanup(restore)
	m := &memUsers{byID: map[int]*model.User{}, nextID: 1}
	emailTaken = func(_ context.Context, _ database.DB, email string, exclude int) (bool, error) {
		for id, u := range m.byID {
			if u.Email == email && id != exclude {
				return true, nil
			}
		}
		return false, nil
	}
	createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
		u.ID = m.nextID
		m.nextID++
		cp := *u
		m.byID[u.ID] = &cp
		return u, nil
	}
	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		u, ok := m.byID[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *u
		return &cp, nil
	}
	getUserByUsername = func(_ context.Context, _ database.DB, name string) (*model.User, error) {
		for id := 1; id < m.nextID; id++ {
			if u, ok := m.byID[id]; ok && u.Username == name {
				cp := *u
				return &cp, nil
			}
		}
		return nil, store.ErrNotFound
	}
	updateUser = func(_ context.Context, _ database.DB, u *model.User) error {
		if _, ok := m.byID[u.ID]; !ok {
			return store.ErrNotFound
		}
		cp := *u
		m.byID[u.ID] = &cp
		return nil
	}
	deleteUser = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		u, ok := m.byID[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		delete(m.byID, id)
		return u, nil
	}
	touchLastLogin = func(_ context.Context, _ database.DB, id int, at time.Time) error {
		if u, ok := m.byID[id]; ok {
			u.LastLoginAt = &at
			return nil
		}
		return store.ErrNotFound
	}
	return m
}
