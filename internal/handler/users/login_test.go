package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"quiz-api/internal/api"
	"quiz-api/internal/database"
	"quiz-api/internal/model"

	"github.com/stretchr/testify/require"
)

func TestLoginHandler(t *testing.T) {
	e := newEcho()

	register := func(t *testing.T) {
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","email":"a@x.com","password":"p1"}`)
		serve(ctx, RegisterHandler(nil, fakeIssuer{}))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("scenario register then login", func(t *testing.T) {
		m := installMemUsers(t)
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		timeNow = func() time.Time { return now }
		register(t)

		limiter := &fakeLimiter{}
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, limiter, &syncPool{}))
		require.Equal(t, http.StatusOK, rec.Code)

		env := decode(t, rec)
		require.Equal(t, "Login successful", env.Message)
		require.Equal(t, "token-1", env.Token)
		var data api.AuthUserResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Equal(t, 1, data.ID)
		require.Equal(t, 1, limiter.resets)
		require.Equal(t, now, *m.byID[1].LastLoginAt)

		ctx, rec = newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"wrong"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, limiter, &syncPool{}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid username or password", decode(t, rec).Message)
		require.Equal(t, 1, limiter.failures)
	})

	t.Run("unknown user uses same message", func(t *testing.T) {
		installMemUsers(t)
		limiter := &fakeLimiter{}
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"ghost","password":"p"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, limiter, &syncPool{}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid username or password", decode(t, rec).Message)
		require.Equal(t, 1, limiter.failures)
	})

	t.Run("missing fields", func(t *testing.T) {
		installMemUsers(t)
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"password":"p"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, &fakeLimiter{}, &syncPool{}))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Username is required", decode(t, rec).Message)

		ctx, rec = newJSONCtx(e, http.MethodPost, "", `{"username":"a"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, &fakeLimiter{}, &syncPool{}))
		require.Equal(t, "Password is required", decode(t, rec).Message)
	})

	t.Run("throttled even with correct password", func(t *testing.T) {
		installMemUsers(t)
		register(t)
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, &fakeLimiter{blocked: true}, &syncPool{}))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "Too many failed login attempts, try again later", decode(t, rec).Message)
	})

	t.Run("throttle outage fails open", func(t *testing.T) {
		installMemUsers(t)
		register(t)
		limiter := &fakeLimiter{err: errors.New("redis down")}
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, limiter, &syncPool{}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		installMemUsers(t)
		getUserByUsername = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, errors.New("db")
		}
		limiter := &fakeLimiter{}
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, limiter, &syncPool{}))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, 0, limiter.failures)
	})

	t.Run("touch failure does not fail login", func(t *testing.T) {
		installMemUsers(t)
		register(t)
		touchLastLogin = func(context.Context, database.DB, int, time.Time) error {
			return errors.New("db")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{}, &fakeLimiter{}, &syncPool{}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token failure", func(t *testing.T) {
		installMemUsers(t)
		register(t)
		ctx, rec := newJSONCtx(e, http.MethodPost, "", `{"username":"a","password":"p1"}`)
		serve(ctx, LoginHandler(nil, fakeIssuer{err: errors.New("sign")}, &fakeLimiter{}, &syncPool{}))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
