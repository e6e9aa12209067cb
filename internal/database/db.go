package database

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB 為 store 層使用的最小連線介面，*pgxpool.Pool 直接實作
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// FakeDB 測試用，未設定的方法被呼叫時 panic
type FakeDB struct {
	ExecFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	PingFn     func(ctx context.Context) error
	CloseFn    func()
}

func (f *FakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.ExecFn != nil {
		return f.ExecFn(ctx, sql, args...)
	}
	panic("unexpected Exec")
}

func (f *FakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.QueryFn != nil {
		return f.QueryFn(ctx, sql, args...)
	}
	panic("unexpected Query")
}

func (f *FakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.QueryRowFn != nil {
		return f.QueryRowFn(ctx, sql, args...)
	}
	panic("unexpected QueryRow")
}

func (f *FakeDB) Ping(ctx context.Context) error {
	if f.PingFn != nil {
		return f.PingFn(ctx)
	}
	panic("unexpected Ping")
}

func (f *FakeDB) Close() {
	if f.CloseFn != nil {
		f.CloseFn()
	}
}

/* ---------- 假資料列 ---------- */

// FakeRow 實作 pgx.Row；Values 依序寫入 Scan 的目的指標，Err 不為 nil 時直接回傳
type FakeRow struct {
	Values []any
	Err    error
}

func (r *FakeRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return assign(r.Values, dest)
}

// FakeRows 實作 pgx.Rows，每次 Scan 消耗 Data 的一列
type FakeRows struct {
	Data    [][]any
	ScanErr error
	IterErr error
	Closed  bool

	idx int
}

func (r *FakeRows) Close()                                       { r.Closed = true }
func (r *FakeRows) Err() error                                   { return r.IterErr }
func (r *FakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *FakeRows) Next() bool                                   { return r.idx < len(r.Data) }
func (r *FakeRows) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	v := r.Data[r.idx]
	r.idx++
	return assign(v, dest)
}
func (r *FakeRows) Values() ([]any, error) { return nil, nil }
func (r *FakeRows) RawValues() [][]byte    { return nil }
func (r *FakeRows) Conn() *pgx.Conn        { return nil }

// assign 欄位數不符或型別無法指派時回傳錯誤，讓測試直接失敗在 Scan
func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("fake scan: %d values for %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		val := reflect.ValueOf(v)
		if !val.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("fake scan: column %d: cannot assign %s to %s", i, val.Type(), target.Type())
		}
		target.Set(val)
	}
	return nil
}
