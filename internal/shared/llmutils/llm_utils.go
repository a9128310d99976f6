package llmutils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/storyloom/storyloom/internal/schema"
)

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// ToolHint generates a short hint string for a list of tool calls,
// e.g. `create_binder_item("Intro"), list_characters`.
func ToolHint(calls []schema.ToolInvocation) string {
	parts := make([]string, 0, len(calls))
	for _, tc := range calls {
		firstVal := firstStringArg(tc.Arguments)
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}

// firstStringArg picks the first string argument by key order so hints are stable.
func firstStringArg(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := args[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
