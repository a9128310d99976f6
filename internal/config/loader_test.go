package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.Model != def.Agents.Defaults.Model {
		t.Errorf("expected default model %q, got %q", def.Agents.Defaults.Model, cfg.Agents.Defaults.Model)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agents": map[string]any{
			"defaults": map[string]any{
				"model":     "openai/gpt-4o-mini",
				"maxTokens": 4096,
			},
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agents.Defaults.Model != "openai/gpt-4o-mini" {
		t.Errorf("expected model %q, got %q", "openai/gpt-4o-mini", cfg.Agents.Defaults.Model)
	}
	if cfg.Agents.Defaults.MaxTokens != 4096 {
		t.Errorf("expected maxTokens 4096, got %d", cfg.Agents.Defaults.MaxTokens)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid JSON (falls back to default), got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.Model != def.Agents.Defaults.Model {
		t.Errorf("expected default model %q, got %q", def.Agents.Defaults.Model, cfg.Agents.Defaults.Model)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults for a fresh home, got: %v", err)
	}
	if cfg.HTTP.MaxRetries != 1 {
		t.Errorf("expected default maxRetries 1, got %d", cfg.HTTP.MaxRetries)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := DefaultConfig()
	original.Agents.Defaults.Model = "anthropic/claude-haiku-4-5"
	original.Agents.Defaults.MaxTokens = 1234

	if err := Save(&original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Agents.Defaults.Model != original.Agents.Defaults.Model {
		t.Errorf("model mismatch: got %q, want %q", loaded.Agents.Defaults.Model, original.Agents.Defaults.Model)
	}
	if loaded.Agents.Defaults.MaxTokens != original.Agents.Defaults.MaxTokens {
		t.Errorf("maxTokens mismatch: got %d, want %d", loaded.Agents.Defaults.MaxTokens, original.Agents.Defaults.MaxTokens)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %04o", perm)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestLoad_PartialConfig_UsesDefaults(t *testing.T) {
	dir := t.TempDir()
	// Only set one field; the rest should come from DefaultConfig.
	path := writeConfig(t, dir, map[string]any{
		"agents": map[string]any{
			"defaults": map[string]any{
				"model": "custom/model",
			},
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.Model != "custom/model" {
		t.Errorf("expected model %q, got %q", "custom/model", cfg.Agents.Defaults.Model)
	}
	// Unset fields should retain their defaults.
	if cfg.Agents.Defaults.Temperature != def.Agents.Defaults.Temperature {
		t.Errorf("expected default temperature %v, got %v", def.Agents.Defaults.Temperature, cfg.Agents.Defaults.Temperature)
	}
	if cfg.Agents.Defaults.MaxToolRounds != def.Agents.Defaults.MaxToolRounds {
		t.Errorf("expected default maxToolRounds %d, got %d", def.Agents.Defaults.MaxToolRounds, cfg.Agents.Defaults.MaxToolRounds)
	}
	if cfg.Database.Path != def.Database.Path {
		t.Errorf("expected default database path %q, got %q", def.Database.Path, cfg.Database.Path)
	}
}

func TestLoad_BookSelection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"book": map[string]any{"bookId": 42},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Book.BookID != 42 || cfg.Book.UserID != 1 {
		t.Errorf("expected book 42 for user 1, got %+v", cfg.Book)
	}
}

func TestPaths_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	if got, want := cfg.DatabasePath(), filepath.Join(home, ".storyloom", "storyloom.db"); got != want {
		t.Errorf("database path: got %q, want %q", got, want)
	}
	if got, want := cfg.WorkspacePath(), filepath.Join(home, ".storyloom", "workspace"); got != want {
		t.Errorf("workspace path: got %q, want %q", got, want)
	}
}

func TestLoad_InvalidLimitsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agents": map[string]any{
			"defaults": map[string]any{"maxToolRounds": 0, "maxTokens": -1},
		},
		"http": map[string]any{"timeoutSeconds": 0, "maxRetries": -3, "requestsPerMinute": 30},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agents.Defaults.MaxToolRounds != def.Agents.Defaults.MaxToolRounds {
		t.Errorf("expected maxToolRounds %d, got %d", def.Agents.Defaults.MaxToolRounds, cfg.Agents.Defaults.MaxToolRounds)
	}
	if cfg.Agents.Defaults.MaxTokens != def.Agents.Defaults.MaxTokens {
		t.Errorf("expected maxTokens %d, got %d", def.Agents.Defaults.MaxTokens, cfg.Agents.Defaults.MaxTokens)
	}
	if cfg.HTTP.TimeoutSeconds != def.HTTP.TimeoutSeconds {
		t.Errorf("expected timeoutSeconds %d, got %d", def.HTTP.TimeoutSeconds, cfg.HTTP.TimeoutSeconds)
	}
	if cfg.HTTP.MaxRetries != 0 {
		t.Errorf("expected maxRetries 0, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.HTTP.RequestsPerMinute != 30 {
		t.Errorf("expected requestsPerMinute 30 to be kept, got %d", cfg.HTTP.RequestsPerMinute)
	}
}

func TestSave_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	cfg.Book.BookID = 9
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("expected only config.json in %s, got %d entries", dir, len(entries))
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Book.BookID != 9 {
		t.Errorf("expected bookId 9 after overwrite, got %d", loaded.Book.BookID)
	}
}

