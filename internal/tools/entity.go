package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
)

// entityKind describes one flat entity type (character, location, plot
// thread) well enough to derive its five CRUD tools.
type entityKind[T any] struct {
	kind    ledger.Kind
	noun    string // "plot_thread", used in tool names
	plural  string // "plot_threads"
	display string // "plot thread", used in messages
	idField string // "character_id"
	store   schema.EntityStore[T]

	// required are the fields create needs; editable are all other writable fields.
	required []schema.Field
	editable []schema.Field

	build func(args Args) T
	label func(entity T) string
	entry func(id int64, entity T) ledger.Entry
}

func (k entityKind[T]) title() string {
	return strings.ToUpper(k.display[:1]) + k.display[1:]
}

func (k entityKind[T]) tools() []Tool {
	idf := id(k.idField, fmt.Sprintf("ID of the %s", k.display))
	all := append(append([]schema.Field{}, k.required...), k.editable...)

	return []Tool{
		{
			Definition: schema.ToolDefinition{
				Name:        "list_" + k.plural,
				Description: fmt.Sprintf("List all %ss in the current book.", k.display),
			},
			Handler: k.list,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        "read_" + k.noun,
				Description: fmt.Sprintf("Read the full details of one %s.", k.display),
				InputSchema: schema.InputSchema{Required: []schema.Field{idf}},
			},
			Handler: k.read,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        "create_" + k.noun,
				Description: fmt.Sprintf("Create a new %s in the current book.", k.display),
				InputSchema: schema.InputSchema{Required: k.required, Optional: k.editable},
			},
			Handler: k.create,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        "update_" + k.noun,
				Description: fmt.Sprintf("Update fields of an existing %s. Only the fields provided are changed.", k.display),
				InputSchema: schema.InputSchema{Required: []schema.Field{idf}, Optional: all},
			},
			Handler: k.update,
		},
		{
			Definition: schema.ToolDefinition{
				Name:        "delete_" + k.noun,
				Description: fmt.Sprintf("Permanently delete a %s.", k.display),
				InputSchema: schema.InputSchema{Required: []schema.Field{idf}},
			},
			Handler: k.delete,
		},
	}
}

func (k entityKind[T]) list(ctx context.Context, _ Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	all, err := k.store.List(ctx, scope)
	if err != nil {
		return schema.Failf("%s", err)
	}
	if all == nil {
		all = []T{}
	}
	return schema.Succeed(map[string]any{k.plural: all, "count": len(all)}, "")
}

func (k entityKind[T]) read(ctx context.Context, args Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	entity, res, ok := k.lookup(ctx, args, scope)
	if !ok {
		return res
	}
	return schema.Succeed(map[string]any{k.noun: *entity}, "")
}

func (k entityKind[T]) create(ctx context.Context, args Args, scope schema.Scope, led *ledger.Ledger) schema.ToolResult {
	entity := k.build(args)
	newID, err := k.store.Create(ctx, scope, entity)
	if err != nil {
		return schema.Failf("%s", err)
	}
	led.RecordCreated(k.kind, k.entry(newID, entity))
	return schema.Succeed(
		map[string]any{"id": newID},
		fmt.Sprintf("Created %s %q", k.display, k.label(entity)),
	)
}

func (k entityKind[T]) update(ctx context.Context, args Args, scope schema.Scope, led *ledger.Ledger) schema.ToolResult {
	entity, res, ok := k.lookup(ctx, args, scope)
	if !ok {
		return res
	}
	itemID, _ := args.ID(k.idField)

	fields, names := collectFields(args, append(append([]schema.Field{}, k.required...), k.editable...))
	if len(fields) == 0 {
		return schema.Failf("No fields to update")
	}
	changed, err := k.store.Update(ctx, itemID, scope, fields)
	if err != nil {
		return schema.Failf("%s", err)
	}
	if !changed {
		return schema.Failf("%s not found", k.title())
	}

	e := k.entry(itemID, *entity)
	if l, ok := fields["name"].(string); ok {
		e.Name = l
	}
	if l, ok := fields["title"].(string); ok {
		e.Title = l
	}
	e.Fields = names
	led.RecordUpdated(k.kind, e)
	return schema.Succeed(
		map[string]any{"id": itemID, "updated_fields": names},
		fmt.Sprintf("Updated %s %q: %s", k.display, e.Label(), strings.Join(names, ", ")),
	)
}

func (k entityKind[T]) delete(ctx context.Context, args Args, scope schema.Scope, _ *ledger.Ledger) schema.ToolResult {
	entity, res, ok := k.lookup(ctx, args, scope)
	if !ok {
		return res
	}
	itemID, _ := args.ID(k.idField)

	deleted, err := k.store.Delete(ctx, itemID, scope)
	if err != nil {
		return schema.Failf("%s", err)
	}
	if !deleted {
		return schema.Failf("%s not found", k.title())
	}
	return schema.Succeed(
		map[string]any{"id": itemID},
		fmt.Sprintf("Deleted %s %q", k.display, k.label(*entity)),
	)
}

// lookup resolves the entity named by the id argument. On failure it returns
// the result to hand back to the model.
func (k entityKind[T]) lookup(ctx context.Context, args Args, scope schema.Scope) (*T, schema.ToolResult, bool) {
	entityID, ok := args.ID(k.idField)
	if !ok {
		return nil, schema.Failf("%s must be an integer", schema.Field{Name: k.idField}.DisplayName()), false
	}
	entity, err := k.store.Get(ctx, entityID, scope)
	if err != nil {
		return nil, schema.Failf("%s", err), false
	}
	if entity == nil {
		return nil, schema.Failf("%s not found", k.title()), false
	}
	return entity, schema.ToolResult{}, true
}

// collectFields picks the allowed fields present in args, in declaration
// order. Unknown keys are ignored.
func collectFields(args Args, allowed []schema.Field) (schema.Fields, []string) {
	fields := schema.Fields{}
	var names []string
	for _, f := range allowed {
		v, ok := args[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.Type {
		case schema.FieldInteger:
			n, ok := toInt64(v)
			if !ok {
				continue
			}
			fields[f.Name] = n
		default:
			s, _ := args.String(f.Name)
			fields[f.Name] = s
		}
		names = append(names, f.Name)
	}
	return fields, names
}
