package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strings"

	"github.com/storyloom/storyloom/internal/schema"
)

// BinderStore persists the binder tree and its per-item metadata.
type BinderStore struct {
	db *sql.DB
}

var binderColumns = []string{"parent_id", "title", "item_type", "content", "synopsis", "sort_order", "word_count"}

func (s *BinderStore) table() *table[schema.BinderItem] {
	return &table[schema.BinderItem]{
		db:      s.db,
		name:    "binder_items",
		columns: binderColumns,
		orderBy: "COALESCE(parent_id, 0), sort_order, id",
		values: func(it schema.BinderItem) []any {
			return []any{nullID(it.ParentID), it.Title, it.ItemType, it.Content, it.Synopsis, it.SortOrder, countWords(it.Content)}
		},
		scan: func(row scanner) (schema.BinderItem, error) {
			var it schema.BinderItem
			var parent sql.NullInt64
			err := row.Scan(&it.ID, &parent, &it.Title, &it.ItemType, &it.Content, &it.Synopsis, &it.SortOrder, &it.WordCount)
			it.ParentID = parent.Int64
			return it, err
		},
	}
}

func (s *BinderStore) List(ctx context.Context, scope schema.Scope) ([]schema.BinderItem, error) {
	return s.table().List(ctx, scope)
}

func (s *BinderStore) Get(ctx context.Context, id int64, scope schema.Scope) (*schema.BinderItem, error) {
	return s.table().Get(ctx, id, scope)
}

func (s *BinderStore) Create(ctx context.Context, scope schema.Scope, item schema.BinderItem) (int64, error) {
	return s.table().Create(ctx, scope, item)
}

// Update keeps word_count in step with content and stores a zero parent_id
// as a top-level item.
func (s *BinderStore) Update(ctx context.Context, id int64, scope schema.Scope, fields schema.Fields) (bool, error) {
	fields = maps.Clone(fields)
	delete(fields, "word_count")
	if content, ok := fields["content"].(string); ok {
		fields["word_count"] = countWords(content)
	}
	if p, ok := fields["parent_id"].(int64); ok {
		fields["parent_id"] = nullID(p)
	}
	return s.table().Update(ctx, id, scope, fields)
}

// Delete removes the item, everything nested beneath it and their metadata.
func (s *BinderStore) Delete(ctx context.Context, id int64, scope schema.Scope) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	const subtree = `WITH RECURSIVE subtree(id) AS (
		SELECT id FROM binder_items WHERE id = ? AND user_id = ? AND book_id = ?
		UNION
		SELECT b.id FROM binder_items b JOIN subtree s ON b.parent_id = s.id
	)`

	if _, err := tx.ExecContext(ctx,
		subtree+` DELETE FROM binder_item_metadata WHERE item_id IN (SELECT id FROM subtree)`,
		id, scope.UserID, scope.BookID); err != nil {
		return false, fmt.Errorf("delete metadata for item %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx,
		subtree+` DELETE FROM binder_items WHERE id IN (SELECT id FROM subtree)`,
		id, scope.UserID, scope.BookID)
	if err != nil {
		return false, fmt.Errorf("delete item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return n > 0, nil
}

func (s *BinderStore) GetMetadata(ctx context.Context, itemID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM binder_item_metadata WHERE item_id = ? ORDER BY key`, itemID)
	if err != nil {
		return nil, fmt.Errorf("read metadata for item %d: %w", itemID, err)
	}
	defer rows.Close()

	meta := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *BinderStore) SetMetadata(ctx context.Context, itemID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO binder_item_metadata (item_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(item_id, key) DO UPDATE SET value = excluded.value`,
		itemID, key, value)
	if err != nil {
		return fmt.Errorf("write metadata %q for item %d: %w", key, itemID, err)
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func countWords(content string) int64 {
	return int64(len(strings.Fields(content)))
}
