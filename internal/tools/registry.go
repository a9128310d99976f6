package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/panics"
	"github.com/xeipuuv/gojsonschema"

	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/shared/llmutils"
)

// Handler executes one tool after its arguments passed validation.
// Successful create/update handlers record their effect in led before returning.
type Handler func(ctx context.Context, args Args, scope schema.Scope, led *ledger.Ledger) schema.ToolResult

// Tool binds a catalogue entry to its handler.
type Tool struct {
	Definition schema.ToolDefinition
	Handler    Handler

	validator *gojsonschema.Schema
}

// Registry is both the tool catalogue and the dispatcher: each name maps to
// its definition and validated handler, so the two can never drift apart.
// It is immutable once built and safe for concurrent use.
type Registry struct {
	tools map[string]*Tool
	defs  []schema.ToolDefinition // registration order, computed once
}

// ListTools returns the catalogue in registration order.
func (r *Registry) ListTools() []schema.ToolDefinition {
	out := make([]schema.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Describe returns the definition for name, or false for unknown tools.
func (r *Registry) Describe(name string) (schema.ToolDefinition, bool) {
	t, ok := r.tools[name]
	if !ok {
		return schema.ToolDefinition{}, false
	}
	return t.Definition, true
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.defs) }

// Dispatch validates args against the tool's input schema and runs its
// handler. It never panics and never returns a Go error: every failure,
// including a panicking collaborator, becomes a failed ToolResult.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any, scope schema.Scope, led *ledger.Ledger) schema.ToolResult {
	t, ok := r.tools[name]
	if !ok {
		return schema.Failf("Unknown tool: %s", name)
	}
	args = dropNulls(args)

	for _, f := range t.Definition.InputSchema.Required {
		if !Args(args).present(f.Name) {
			return schema.Failf("%s is required", f.DisplayName())
		}
	}
	if msg := t.validate(args); msg != "" {
		return schema.Failf("Invalid arguments: %s", msg)
	}

	var result schema.ToolResult
	var pc panics.Catcher
	pc.Try(func() { result = t.Handler(ctx, Args(args), scope, led) })
	if rec := pc.Recovered(); rec != nil {
		slog.Error("Tool panicked", "name", name, "panic", rec.Value)
		return schema.Failf("%s failed: %v", name, rec.Value)
	}

	argsJSON, _ := json.Marshal(args)
	slog.Info("Tool call", "name", name, "args", llmutils.Truncate(string(argsJSON), 200), "success", result.Success)
	return result
}

// validate checks argument types and enums. It returns "" when args conform.
func (t *Tool) validate(args map[string]any) string {
	if t.validator == nil {
		return ""
	}
	res, err := t.validator.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err.Error()
	}
	if res.Valid() {
		return ""
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}

// dropNulls copies args without null values. Models often send explicit
// nulls for optional fields they mean to leave unset.
func dropNulls(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func compileSchema(def schema.ToolDefinition) (*gojsonschema.Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema.JSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("tool %q: invalid input schema: %w", def.Name, err)
	}
	return s, nil
}
