package store

import (
	"context"
	"time"

	"quiz-api/internal/database"
	"quiz-api/internal/model"
)

const userColumns = `id, username, email, password_hash, is_admin, last_login_at, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByID", err)
	}
	return u, nil
}

// GetUserByUsername username 不唯一，取 id 最小的一筆
func GetUserByUsername(ctx context.Context, db database.DB, username string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 ORDER BY id LIMIT 1`,
		username,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByUsername", err)
	}
	return u, nil
}

// EmailTaken 檢查 email 是否已被 excludeID 以外的使用者使用；excludeID 為 0 表示不排除
func EmailTaken(ctx context.Context, db database.DB, email string, excludeID int) (bool, error) {
	var taken bool
	row := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email,
		excludeID,
	)
	if err := row.Scan(&taken); err != nil {
		return false, wrap("EmailTaken", err)
	}
	return taken, nil
}

func ListUsers(ctx context.Context, db database.DB) ([]model.User, error) {
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, wrap("ListUsers", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("ListUsers", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListUsers", err)
	}
	return users, nil
}

func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrap("CreateUser", err)
	}
	return u, nil
}

// UpdateUser 覆寫 username、email、password_hash 並刷新 updated_at
func UpdateUser(ctx context.Context, db database.DB, u *model.User) error {
	row := db.QueryRow(ctx,
		`UPDATE users
		 SET username = $1, email = $2, password_hash = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.ID,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return wrap("UpdateUser", err)
	}
	return nil
}

func TouchLastLogin(ctx context.Context, db database.DB, userID int, at time.Time) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET last_login_at = $1 WHERE id = $2`,
		at,
		userID,
	)
	if err != nil {
		return wrap("TouchLastLogin", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("TouchLastLogin", ErrNotFound)
	}
	return nil
}

// DeleteUser 刪除並回傳被刪除的使用者
func DeleteUser(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("DeleteUser", err)
	}
	return u, nil
}
