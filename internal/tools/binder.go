package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
)

// binderTools implements the five binder item tools. Binder items differ from
// the flat kinds: they form a tree, carry a metadata side table, and the
// listing marks the item the writer currently has open.
type binderTools struct {
	items    schema.EntityStore[schema.BinderItem]
	metadata schema.MetadataStore
}

var binderEditable = []schema.Field{
	str("title", "Title shown in the binder"),
	enum("item_type", "Kind of binder item", schema.BinderItemTypes),
	id("parent_id", "ID of the parent folder or chapter; omit for a top-level item"),
	str("content", "Full text of the item"),
	str("synopsis", "One or two sentence summary"),
	id("sort_order", "Position among siblings"),
}

func binderItemTools(items schema.EntityStore[schema.BinderItem], metadata schema.MetadataStore) []Tool {
	b := binderTools{items: items, metadata: metadata}
	itemID := id("item_id", "ID of the binder item")

	return []Tool{
		{
			Definition: schema.ToolDefinition{
				Name:        string(ToolListBinderItems),
				Description: "List every binder item (folders, chapters, scenes, notes, research) in the current book as a flat list with parent IDs. The item the writer has open is marked is_current.",
			},
			Handler: b.list,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        string(ToolReadBinderItem),
				Description: "Read one binder item including its full content and metadata.",
				InputSchema: schema.InputSchema{Required: []schema.Field{itemID}},
			},
			Handler: b.read,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        string(ToolCreateBinderItem),
				Description: "Create a folder, chapter, scene, note or research item in the binder.",
				InputSchema: schema.InputSchema{
					Required: []schema.Field{binderEditable[0], binderEditable[1]},
					Optional: binderEditable[2:],
				},
			},
			Handler: b.create,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        string(ToolUpdateBinderItem),
				Description: "Update fields of a binder item. Only the fields provided are changed. Metadata entries are merged key by key.",
				InputSchema: schema.InputSchema{
					Required: []schema.Field{itemID},
					Optional: append(append([]schema.Field{}, binderEditable...), schema.Field{
						Name:        "metadata",
						Type:        schema.FieldObject,
						Description: "Key/value pairs to store on the item, e.g. {\"pov\": \"Ann\", \"status\": \"draft\"}",
					}),
				},
			},
			Handler: b.update,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        string(ToolDeleteBinderItem),
				Description: "Permanently delete a binder item and everything nested under it.",
				InputSchema: schema.InputSchema{Required: []schema.Field{itemID}},
			},
			Handler: b.delete,
		},
	}
}

// binderListing is one row of list_binder_items.
type binderListing struct {
	ID        int64  `json:"id"`
	ParentID  int64  `json:"parent_id,omitempty"`
	Title     string `json:"title"`
	ItemType  string `json:"item_type"`
	Synopsis  string `json:"synopsis,omitempty"`
	WordCount int64  `json:"word_count"`
	IsCurrent bool   `json:"is_current,omitempty"`
}

func (b binderTools) list(ctx context.Context, _ Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	items, err := b.items.List(ctx, scope)
	if err != nil {
		return schema.Failf("%s", err)
	}
	rows := make([]binderListing, 0, len(items))
	for _, it := range items {
		rows = append(rows, binderListing{
			ID:        it.ID,
			ParentID:  it.ParentID,
			Title:     it.Title,
			ItemType:  it.ItemType,
			Synopsis:  it.Synopsis,
			WordCount: it.WordCount,
			IsCurrent: scope.CurrentItemID != 0 && it.ID == scope.CurrentItemID,
		})
	}
	return schema.Succeed(map[string]any{"items": rows, "count": len(rows)}, "")
}

func (b binderTools) read(ctx context.Context, args Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	item, res, ok := b.lookup(ctx, args, scope)
	if !ok {
		return res
	}
	meta, err := b.metadata.GetMetadata(ctx, item.ID)
	if err != nil {
		return schema.Failf("%s", err)
	}
	if meta == nil {
		meta = map[string]string{}
	}
	return schema.Succeed(map[string]any{"item": *item, "metadata": meta}, "")
}

func (b binderTools) create(ctx context.Context, args Args, scope schema.Scope, led *ledger.Ledger) schema.ToolResult {
	item := schema.BinderItem{
		Title:    args.StringOr("title", ""),
		ItemType: args.StringOr("item_type", ""),
		Content:  args.StringOr("content", ""),
		Synopsis: args.StringOr("synopsis", ""),
	}
	if parentID, ok := args.ID("parent_id"); ok && parentID != 0 {
		parent, err := b.items.Get(ctx, parentID, scope)
		if err != nil {
			return schema.Failf("%s", err)
		}
		if parent == nil {
			return schema.Failf("Parent item not found")
		}
		item.ParentID = parentID
	}
	if order, ok := args.Int("sort_order"); ok {
		item.SortOrder = order
	}

	newID, err := b.items.Create(ctx, scope, item)
	if err != nil {
		return schema.Failf("%s", err)
	}
	led.RecordCreated(ledger.KindBinderItem, ledger.Entry{ID: newID, Title: item.Title, Type: item.ItemType})
	return schema.Succeed(
		map[string]any{"id": newID, "item_type": item.ItemType, "title": item.Title},
		fmt.Sprintf("Created %s %q", item.ItemType, item.Title),
	)
}

func (b binderTools) update(ctx context.Context, args Args, scope schema.Scope, led *ledger.Ledger) schema.ToolResult {
	item, res, ok := b.lookup(ctx, args, scope)
	if !ok {
		return res
	}

	fields, names := collectFields(args, binderEditable)
	if parentID, ok := fields["parent_id"].(int64); ok && parentID != 0 {
		if res, ok := b.checkParent(ctx, item.ID, parentID, scope); !ok {
			return res
		}
	}
	meta, _ := args.Object("metadata")

	if len(fields) == 0 && len(meta) == 0 {
		return schema.Failf("No fields to update")
	}

	title := item.Title
	if t, ok := fields["title"].(string); ok {
		title = t
	}
	itemType := item.ItemType
	if t, ok := fields["item_type"].(string); ok {
		itemType = t
	}
	// Whatever reached the store is recorded, even when a later write fails.
	var applied []string
	record := func() {
		if len(applied) > 0 {
			led.RecordUpdated(ledger.KindBinderItem, ledger.Entry{ID: item.ID, Title: title, Type: itemType, Fields: applied})
		}
	}

	if len(fields) > 0 {
		changed, err := b.items.Update(ctx, item.ID, scope, fields)
		if err != nil {
			return schema.Failf("%s", err)
		}
		if !changed {
			return schema.Failf("Item not found")
		}
		applied = append(applied, names...)
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := b.metadata.SetMetadata(ctx, item.ID, k, stringify(meta[k])); err != nil {
			record()
			if len(applied) > 0 {
				return schema.Failf("%s (already saved: %s)", err, strings.Join(applied, ", "))
			}
			return schema.Failf("%s", err)
		}
		applied = append(applied, "metadata."+k)
	}

	record()
	return schema.Succeed(
		map[string]any{"id": item.ID, "updated_fields": applied},
		fmt.Sprintf("Updated %s %q: %s", itemType, title, strings.Join(applied, ", ")),
	)
}

// checkParent verifies that parentID is in the book and is neither itemID nor
// one of its descendants.
func (b binderTools) checkParent(ctx context.Context, itemID, parentID int64, scope schema.Scope) (schema.ToolResult, bool) {
	if parentID == itemID {
		return schema.Failf("An item cannot be its own parent"), false
	}
	seen := map[int64]bool{}
	for cur := parentID; cur != 0 && !seen[cur]; {
		if cur == itemID {
			return schema.Failf("An item cannot be moved under its own descendant"), false
		}
		seen[cur] = true
		node, err := b.items.Get(ctx, cur, scope)
		if err != nil {
			return schema.Failf("%s", err), false
		}
		if node == nil {
			if cur == parentID {
				return schema.Failf("Parent item not found"), false
			}
			break
		}
		cur = node.ParentID
	}
	return schema.ToolResult{}, true
}

func (b binderTools) delete(ctx context.Context, args Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	item, res, ok := b.lookup(ctx, args, scope)
	if !ok {
		return res
	}
	deleted, err := b.items.Delete(ctx, item.ID, scope)
	if err != nil {
		return schema.Failf("%s", err)
	}
	if !deleted {
		return schema.Failf("Item not found")
	}
	return schema.Succeed(
		map[string]any{"id": item.ID},
		fmt.Sprintf("Deleted %s %q and anything nested under it", item.ItemType, item.Title),
	)
}

func (b binderTools) lookup(ctx context.Context, args Args, scope schema.Scope) (*schema.BinderItem, schema.ToolResult, bool) {
	itemID, ok := args.ID("item_id")
	if !ok {
		return nil, schema.Failf("Item ID must be an integer"), false
	}
	item, err := b.items.Get(ctx, itemID, scope)
	if err != nil {
		return nil, schema.Failf("%s", err), false
	}
	if item == nil {
		return nil, schema.Failf("Item not found"), false
	}
	return item, schema.ToolResult{}, true
}
