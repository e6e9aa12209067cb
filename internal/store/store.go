package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound 查無資料
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail email 已被其他使用者註冊
	ErrDuplicateEmail = errors.New("email already registered")
)

const (
	uniqueViolation = "23505"
	emailConstraint = "users_email_key"
)

// scanner 同時涵蓋 pgx.Row 與 pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// wrap 將 driver 錯誤轉為套件 sentinel，並標上操作名稱
func wrap(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailConstraint {
		return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
