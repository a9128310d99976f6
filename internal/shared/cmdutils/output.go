package cmdutils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
)

const logo = "📖"

func PrintResponse(text string) {
	if text == "" {
		return
	}

	fmt.Printf("\n%s storyloom\n%s\n\n", logo, text)
}

// PrintEffects lists the entities a turn created or updated. Nothing is
// printed for an empty ledger.
func PrintEffects(l ledger.Ledger) {
	writeEffects(os.Stdout, l)
}

func writeEffects(w io.Writer, l ledger.Ledger) {
	if l.Empty() {
		return
	}
	fmt.Fprintln(w)
	for _, k := range ledger.Kinds {
		noun := strings.ReplaceAll(string(k), "_", " ")
		for _, e := range l.Created(k) {
			fmt.Fprintf(w, "  + created %s #%d %q\n", noun, e.ID, e.Label())
		}
		for _, e := range l.Updated(k) {
			fmt.Fprintf(w, "  ~ updated %s #%d %q (%s)\n", noun, e.ID, e.Label(), strings.Join(e.Fields, ", "))
		}
	}
}

// PrintToolSummary lists each tool with its required and optional arguments.
func PrintToolSummary(defs []schema.ToolDefinition) {
	writeToolSummary(os.Stdout, defs)
}

func writeToolSummary(w io.Writer, defs []schema.ToolDefinition) {
	for _, d := range defs {
		fmt.Fprintln(w, d.Name)
		types := d.InputSchema.FieldTypes()
		describe := func(names []string) string {
			parts := make([]string, 0, len(names))
			for _, n := range names {
				parts = append(parts, fmt.Sprintf("%s (%s)", n, types[n]))
			}
			return strings.Join(parts, ", ")
		}
		if req := d.InputSchema.RequiredFields(); len(req) > 0 {
			fmt.Fprintf(w, "  required: %s\n", describe(req))
		}
		if opt := d.InputSchema.OptionalFields(); len(opt) > 0 {
			fmt.Fprintf(w, "  optional: %s\n", describe(opt))
		}
	}
}

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
