package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"quiz-api/internal/api"
	"quiz-api/internal/database"
	"quiz-api/internal/middleware"
	"quiz-api/internal/model"
	"quiz-api/internal/service"

	"github.com/stretchr/testify/require"
)

func seed(m *memUsers, users ...model.User) {
	for i := range users {
		u := users[i]
		m.byID[u.ID] = &u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
}

func TestListUsersHandler(t *testing.T) {
	e := newEcho()
	t.Cleanup(restore)

	listUsers = func(context.Context, database.DB) ([]model.User, error) {
		return []model.User{{ID: 2, Username: "b", PasswordHash: "h2"}, {ID: 1, Username: "a", PasswordHash: "h1"}}, nil
	}
	ctx, rec := newJSONCtx(e, http.MethodGet, "", "")
	serve(ctx, ListUsersHandler(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.Equal(t, "Users retrieved successfully", env.Message)
	var data []api.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 2, data[0].ID)
	require.NotContains(t, rec.Body.String(), "h1")

	listUsers = func(context.Context, database.DB) ([]model.User, error) {
		return nil, errors.New("db")
	}
	ctx, rec = newJSONCtx(e, http.MethodGet, "", "")
	serve(ctx, ListUsersHandler(nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Error retrieving users", decode(t, rec).Message)
}

func TestGetUserHandler(t *testing.T) {
	e := newEcho()
	m := installMemUsers(t)
	seed(m, model.User{ID: 1, Username: "a", Email: "a@x.com", PasswordHash: "secret"})

	ctx, rec := newJSONCtx(e, http.MethodGet, "1", "")
	serve(ctx, GetUserHandler(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret")

	ctx, rec = newJSONCtx(e, http.MethodGet, "2", "")
	serve(ctx, GetUserHandler(nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", decode(t, rec).Message)

	ctx, rec = newJSONCtx(e, http.MethodGet, "abc", "")
	serve(ctx, GetUserHandler(nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid user ID", decode(t, rec).Message)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, errors.New("db") }
	ctx, rec = newJSONCtx(e, http.MethodGet, "1", "")
	serve(ctx, GetUserHandler(nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateUserHandler(t *testing.T) {
	e := newEcho()
	alice := model.User{ID: 1, Username: "a", Email: "a@x.com", PasswordHash: "old"}
	bob := model.User{ID: 2, Username: "b", Email: "b@x.com", PasswordHash: "old"}
	admin := model.User{ID: 3, Username: "root", Email: "r@x.com", IsAdmin: true}

	update := func(principal *model.User, id, body string) (int, envelope) {
		ctx, rec := newJSONCtx(e, http.MethodPut, id, body)
		if principal != nil {
			ctx.Set(middleware.ContextUserKey, principal)
		}
		serve(ctx, UpdateUserHandler(nil))
		return rec.Code, decode(t, rec)
	}

	t.Run("not authenticated", func(t *testing.T) {
		installMemUsers(t)
		code, _ := update(nil, "1", `{}`)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		m := installMemUsers(t)
		seed(m, alice, bob)
		code, env := update(&bob, "1", `{"username":"hacked"}`)
		require.Equal(t, http.StatusForbidden, code)
		require.Equal(t, "You can only update your own profile", env.Message)
		require.Equal(t, "a", m.byID[1].Username)
	})

	t.Run("self update partial", func(t *testing.T) {
		m := installMemUsers(t)
		seed(m, alice)
		code, env := update(&alice, "1", `{"username":"","email":"New@X.com"}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "User updated successfully", env.Message)
		require.Equal(t, "", m.byID[1].Username)
		require.Equal(t, "new@x.com", m.byID[1].Email)
		require.Equal(t, "old", m.byID[1].PasswordHash)
	})

	t.Run("admin updates password", func(t *testing.T) {
		m := installMemUsers(t)
		seed(m, alice, admin)
		code, _ := update(&admin, "1", `{"password":"new"}`)
		require.Equal(t, http.StatusOK, code)
		require.NoError(t, service.ComparePassword(m.byID[1].PasswordHash, "new"))
	})

	t.Run("validation", func(t *testing.T) {
		m := installMemUsers(t)
		seed(m, alice)
		code, env := update(&alice, "1", `{"password":""}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Password cannot be empty", env.Message)

		code, env = update(&alice, "1", `{"email":"nope"}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Invalid email format", env.Message)

		code, _ = update(&alice, "1", `{"email":""}`)
		require.Equal(t, http.StatusBadRequest, code)

		code, env = update(&alice, "x", `{}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "invalid user ID", env.Message)
		require.Equal(t, "a@x.com", m.byID[1].Email)
	})

	t.Run("email conflict excludes self", func(t *testing.T) {
		m := installMemUsers(t)
		seed(m, alice, bob)
		code, env := update(&alice, "1", `{"email":"b@x.com"}`)
		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "Email already registered", env.Message)

		code, _ = update(&alice, "1", `{"email":"a@x.com"}`)
		require.Equal(t, http.StatusOK, code)
	})

	t.Run("admin updates missing user", func(t *testing.T) {
		installMemUsers(t)
		code, env := update(&admin, "42", `{"username":"x"}`)
		require.Equal(t, http.StatusNotFound, code)
		require.Equal(t, "User not found", env.Message)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	e := newEcho()
	m := installMemUsers(t)
	seed(m, model.User{ID: 1, Username: "a", Email: "a@x.com", PasswordHash: "secret"})

	// 第一次成功，第二次 NotFound
	ctx, rec := newJSONCtx(e, http.MethodDelete, "1", "")
	serve(ctx, DeleteUserHandler(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.Equal(t, "User deleted successfully", env.Message)
	var data api.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "a@x.com", data.Email)
	require.NotContains(t, rec.Body.String(), "secret")

	ctx, rec = newJSONCtx(e, http.MethodDelete, "1", "")
	serve(ctx, DeleteUserHandler(nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	ctx, rec = newJSONCtx(e, http.MethodDelete, "z", "")
	serve(ctx, DeleteUserHandler(nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	deleteUser = func(context.Context, database.DB, int) (*model.User, error) { return nil, errors.New("db") }
	ctx, rec = newJSONCtx(e, http.MethodDelete, "1", "")
	serve(ctx, DeleteUserHandler(nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
