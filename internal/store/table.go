package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/internal/schema"
)

type scanner interface {
	Scan(dest ...any) error
}

// table implements schema.EntityStore for a flat, book-scoped table.
// columns lists the writable columns; values and scan must agree with it.
type table[T any] struct {
	db      *sql.DB
	name    string
	columns []string
	orderBy string

	values func(entity T) []any
	scan   func(row scanner) (T, error)
}

func (t *table[T]) selectSQL() string {
	return "SELECT id, " + strings.Join(t.columns, ", ") + " FROM " + t.name +
		" WHERE user_id = ? AND book_id = ?"
}

func (t *table[T]) List(ctx context.Context, scope schema.Scope) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, t.selectSQL()+" ORDER BY "+t.orderBy, scope.UserID, scope.BookID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		e, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *table[T]) Get(ctx context.Context, id int64, scope schema.Scope) (*T, error) {
	row := t.db.QueryRowContext(ctx, t.selectSQL()+" AND id = ?", scope.UserID, scope.BookID, id)
	e, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", t.name, id, err)
	}
	return &e, nil
}

func (t *table[T]) Create(ctx context.Context, scope schema.Scope, entity T) (int64, error) {
	cols := append([]string{"user_id", "book_id"}, t.columns...)
	args := append([]any{scope.UserID, scope.BookID}, t.values(entity)...)
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return res.LastInsertId()
}

// Update writes the fields whose keys name a known column. Other keys are
// ignored, so field names never reach the SQL text unchecked.
func (t *table[T]) Update(ctx context.Context, id int64, scope schema.Scope, fields schema.Fields) (bool, error) {
	var sets []string
	var args []any
	for _, col := range t.columns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("update %s: no known columns", t.name)
	}
	return t.exec(ctx, id, scope, sets, args)
}

// exec runs an UPDATE with the given SET clauses against one scoped row.
func (t *table[T]) exec(ctx context.Context, id int64, scope schema.Scope, sets []string, args []any) (bool, error) {
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	q := "UPDATE " + t.name + " SET " + strings.Join(sets, ", ") +
		" WHERE id = ? AND user_id = ? AND book_id = ?"
	args = append(args, id, scope.UserID, scope.BookID)

	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update %s %d: %w", t.name, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (t *table[T]) Delete(ctx context.Context, id int64, scope schema.Scope) (bool, error) {
	res, err := t.db.ExecContext(ctx,
		"DELETE FROM "+t.name+" WHERE id = ? AND user_id = ? AND book_id = ?",
		id, scope.UserID, scope.BookID)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", t.name, id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
