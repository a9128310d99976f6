package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/tools"
)

// ContextBuilder assembles the system prompt for a turn from the book's
// current state and the workspace style guide.
type ContextBuilder struct {
	workspace string
	stores    tools.Stores
	now       func() time.Time
}

// NewContextBuilder creates a ContextBuilder reading STYLE.md from workspace
// and entity summaries from stores.
func NewContextBuilder(workspace string, stores tools.Stores) *ContextBuilder {
	return &ContextBuilder{
		workspace: expandHome(workspace),
		stores:    stores,
		now:       time.Now,
	}
}

// bookState is everything the prompt summarises about one book.
type bookState struct {
	items       []schema.BinderItem
	characters  []schema.Character
	locations   []schema.Location
	plotThreads []schema.PlotThread
}

// Build implements SystemContext.
func (cb *ContextBuilder) Build(ctx context.Context, scope schema.Scope) (string, error) {
	state, err := cb.load(ctx, scope)
	if err != nil {
		return "", err
	}

	parts := []string{cb.buildIdentity(scope)}
	parts = append(parts, "## Book Outline\n\n"+renderOutline(state.items, scope.CurrentItemID))

	if len(state.characters) > 0 {
		parts = append(parts, "## Characters\n\n"+renderList(state.characters, func(c schema.Character) (int64, string, string) {
			return c.ID, c.Name, c.Role
		}))
	}
	if len(state.locations) > 0 {
		parts = append(parts, "## Locations\n\n"+renderList(state.locations, func(l schema.Location) (int64, string, string) {
			return l.ID, l.Name, l.LocationType
		}))
	}
	if len(state.plotThreads) > 0 {
		parts = append(parts, "## Plot Threads\n\n"+renderList(state.plotThreads, func(p schema.PlotThread) (int64, string, string) {
			return p.ID, p.Title, p.Importance + ", " + p.Status
		}))
	}

	style, err := LoadStyleGuide(cb.workspace)
	if err != nil {
		slog.Warn("Style guide ignored", "err", err)
	} else if !style.Empty() {
		parts = append(parts, "## Style Guide\n\n"+style.Render())
	}

	return strings.Join(parts, "\n\n"), nil
}

// load fetches the four entity lists concurrently.
func (cb *ContextBuilder) load(ctx context.Context, scope schema.Scope) (bookState, error) {
	var st bookState
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.items, err = list(gctx, cb.stores.BinderItems, scope, "binder items")
		return err
	})
	g.Go(func() (err error) {
		st.characters, err = list(gctx, cb.stores.Characters, scope, "characters")
		return err
	})
	g.Go(func() (err error) {
		st.locations, err = list(gctx, cb.stores.Locations, scope, "locations")
		return err
	})
	g.Go(func() (err error) {
		st.plotThreads, err = list(gctx, cb.stores.PlotThreads, scope, "plot threads")
		return err
	})

	if err := g.Wait(); err != nil {
		return bookState{}, err
	}
	return st, nil
}

func list[T any](ctx context.Context, store schema.EntityStore[T], scope schema.Scope, what string) ([]T, error) {
	if store == nil {
		return nil, nil
	}
	rows, err := store.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", what, err)
	}
	return rows, nil
}

// buildIdentity returns the fixed opening section of the prompt.
func (cb *ContextBuilder) buildIdentity(scope schema.Scope) string {
	now := cb.now()
	tz, _ := now.Zone()
	if tz == "" {
		tz = "UTC"
	}

	current := "none"
	if scope.CurrentItemID > 0 {
		current = fmt.Sprintf("%d", scope.CurrentItemID)
	}

	return fmt.Sprintf(`# Storyloom

You are Storyloom, a writing assistant working inside the author's book.

## Current Time
%s (%s)

## Current Item
Binder item open in the editor: %s

Use the tools to read or change the book's binder, characters, locations and plot threads.
Refer to entities by the IDs shown below. Read an item before rewriting its content.
When the author only asks a question, answer directly without calling tools.
After making changes, summarise what you changed in one or two sentences.`,
		now.Format("2006-01-02 15:04 (Monday)"), tz, current)
}

// renderOutline draws the binder as an indented tree in sort order.
// Items whose parent is missing, or that sit in a parent cycle, are shown at
// the top level.
func renderOutline(items []schema.BinderItem, currentID int64) string {
	if len(items) == 0 {
		return "(empty: the book has no binder items yet)"
	}

	known := make(map[int64]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	children := map[int64][]schema.BinderItem{}
	for _, it := range items {
		parent := it.ParentID
		if !known[parent] {
			parent = 0
		}
		children[parent] = append(children[parent], it)
	}

	var b strings.Builder
	seen := map[int64]bool{}
	var walk func(it schema.BinderItem, depth int)
	walk = func(it schema.BinderItem, depth int) {
		if seen[it.ID] {
			return
		}
		seen[it.ID] = true

		fmt.Fprintf(&b, "%s- [%d] %s (%s", strings.Repeat("  ", depth), it.ID, it.Title, it.ItemType)
		if it.WordCount > 0 {
			fmt.Fprintf(&b, ", %s words", humanize.Comma(it.WordCount))
		}
		b.WriteString(")")
		if it.ID == currentID {
			b.WriteString(" <- currently open")
		}
		if it.Synopsis != "" {
			fmt.Fprintf(&b, ": %s", it.Synopsis)
		}
		b.WriteString("\n")
		for _, child := range children[it.ID] {
			walk(child, depth+1)
		}
	}
	for _, it := range children[0] {
		walk(it, 0)
	}
	// Items caught in a parent cycle are unreachable from the root.
	for _, it := range items {
		walk(it, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderList[T any](rows []T, describe func(T) (id int64, name, detail string)) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		id, name, detail := describe(r)
		line := fmt.Sprintf("- [%d] %s", id, name)
		if detail != "" {
			line += " (" + detail + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
