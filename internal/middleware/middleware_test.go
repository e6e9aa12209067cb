package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/model"
	"quiz-api/internal/service"
	"quiz-api/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	id  int
	err error
}

func (f fakeVerifier) Verify(string) (int, error) { return f.id, f.err }

func restoreGlobals() {
	getUserByID = store.GetUserByID
	getQuestionByID = store.GetQuestionByID
}

func newContext(auth string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind)
	require.Equal(t, msg, appErr.Message)
}

func TestAuthenticate(t *testing.T) {
	t.Cleanup(restoreGlobals)
	alice := &model.User{ID: 1, Username: "alice"}
	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		if id == 1 {
			return alice, nil
		}
		if id == 2 {
			return nil, errors.New("db down")
		}
		return nil, store.ErrNotFound
	}

	cases := []struct {
		name   string
		header string
		tokens fakeVerifier
		kind   apperr.Kind
		msg    string
	}{
		{"missing header", "", fakeVerifier{id: 1}, apperr.KindUnauthenticated, "No token provided"},
		{"not bearer", "Basic abc", fakeVerifier{id: 1}, apperr.KindUnauthenticated, "No token provided"},
		{"empty bearer", "Bearer ", fakeVerifier{id: 1}, apperr.KindUnauthenticated, "No token provided"},
		{"bad token", "Bearer x", fakeVerifier{err: service.ErrInvalidToken}, apperr.KindInvalidCredentials, "Invalid or expired token"},
		{"deleted principal", "Bearer x", fakeVerifier{id: 9}, apperr.KindPrincipalNotFound, "User not found"},
		{"store failure", "Bearer x", fakeVerifier{id: 2}, apperr.KindInternal, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGuard(&database.FakeDB{}, tc.tokens)
			ctx, _ := newContext(tc.header)
			called := false
			err := g.Authenticate(okHandler(&called))(ctx)
			requireKind(t, err, tc.kind, tc.msg)
			require.False(t, called)
		})
	}

	t.Run("success binds principal", func(t *testing.T) {
		g := NewGuard(&database.FakeDB{}, fakeVerifier{id: 1})
		ctx, rec := newContext("bearer tok")
		called := false
		require.NoError(t, g.Authenticate(okHandler(&called))(ctx))
		require.True(t, called)
		require.Equal(t, http.StatusOK, rec.Code)
		u, ok := Principal(ctx)
		require.True(t, ok)
		require.Same(t, alice, u)
	})

	t.Run("deleted principal with real token", func(t *testing.T) {
		tokens, err := service.NewTokenService("secret", time.Minute)
		require.NoError(t, err)
		tok, err := tokens.Issue(42)
		require.NoError(t, err)
		g := NewGuard(&database.FakeDB{}, tokens)
		ctx, _ := newContext("Bearer " + tok)
		called := false
		err = g.Authenticate(okHandler(&called))(ctx)
		require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
		require.False(t, called)
	})
}

func TestRequireAdmin(t *testing.T) {
	g := NewGuard(&database.FakeDB{}, fakeVerifier{})

	// 未經 Authenticate
	ctx, _ := newContext("")
	called := false
	err := g.RequireAdmin(okHandler(&called))(ctx)
	requireKind(t, err, apperr.KindUnauthenticated, "User not authenticated")
	require.False(t, called)

	ctx, _ = newContext("")
	ctx.Set(ContextUserKey, &model.User{ID: 2})
	err = g.RequireAdmin(okHandler(&called))(ctx)
	requireKind(t, err, apperr.KindForbidden, "You are not authorized to perform this operation!")
	require.Equal(t, http.StatusForbidden, apperr.StatusOf(err))
	require.False(t, called)

	ctx, rec := newContext("")
	ctx.Set(ContextUserKey, &model.User{ID: 3, IsAdmin: true})
	require.NoError(t, g.RequireAdmin(okHandler(&called))(ctx))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthor(t *testing.T) {
	t.Cleanup(restoreGlobals)
	owned := &model.Question{ID: 5, AuthorID: 1}
	lookups := 0
	getQuestionByID = func(_ context.Context, _ database.DB, id int) (*model.Question, error) {
		lookups++
		switch id {
		case 5:
			return owned, nil
		case 6:
			return nil, errors.New("db down")
		}
		return nil, store.ErrNotFound
	}
	g := NewGuard(&database.FakeDB{}, fakeVerifier{})

	run := func(user *model.User, id string) (echo.Context, bool, error) {
		ctx, _ := newContext("")
		ctx.SetParamNames("id")
		ctx.SetParamValues(id)
		if user != nil {
			ctx.Set(ContextUserKey, user)
		}
		called := false
		err := g.RequireAuthor(okHandler(&called))(ctx)
		return ctx, called, err
	}

	_, called, err := run(nil, "5")
	requireKind(t, err, apperr.KindUnauthenticated, "User not authenticated")
	require.False(t, called)

	_, _, err = run(&model.User{ID: 1}, "abc")
	requireKind(t, err, apperr.KindValidation, "invalid question ID")

	// 超出 int4 範圍不查資料庫
	_, _, err = run(&model.User{ID: 1}, "99999999999")
	requireKind(t, err, apperr.KindValidation, "invalid question ID")
	require.Zero(t, lookups)

	_, _, err = run(&model.User{ID: 1}, "99")
	requireKind(t, err, apperr.KindNotFound, "Question not found")

	_, _, err = run(&model.User{ID: 1}, "6")
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, called, err = run(&model.User{ID: 2}, "5")
	requireKind(t, err, apperr.KindForbidden, "You are not the author of this question")
	require.False(t, called)

	// 管理員也不能修改他人題目
	_, called, err = run(&model.User{ID: 3, IsAdmin: true}, "5")
	requireKind(t, err, apperr.KindForbidden, "You are not the author of this question")
	require.False(t, called)

	ctx, called, err := run(&model.User{ID: 1}, "5")
	require.NoError(t, err)
	require.True(t, called)
	q, ok := BoundQuestion(ctx)
	require.True(t, ok)
	require.Same(t, owned, q)
}

func TestChain(t *testing.T) {
	t.Cleanup(restoreGlobals)
	getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
		return &model.User{ID: 1, IsAdmin: false}, nil
	}
	g := NewGuard(&database.FakeDB{}, fakeVerifier{id: 1})

	require.Len(t, g.Chain(Authenticate, RequireAdmin), 2)
	require.Panics(t, func() { g.Chain(Check(99)) })

	// 依 echo 的方式由外而內套用
	wrap := func(h echo.HandlerFunc, mws []echo.MiddlewareFunc) echo.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}

	called := false
	ctx, _ := newContext("Bearer tok")
	err := wrap(okHandler(&called), g.Chain(Authenticate, RequireAdmin))(ctx)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	require.False(t, called)

	// 順序顛倒時 RequireAdmin 看不到使用者
	ctx, _ = newContext("Bearer tok")
	err = wrap(okHandler(&called), g.Chain(RequireAdmin, Authenticate))(ctx)
	require.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	require.False(t, called)
}
