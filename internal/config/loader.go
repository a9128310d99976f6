package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Load reads the config file at path, or ConfigPath() when path is empty.
// A missing file yields DefaultConfig(). A file that does not parse is
// reported and replaced by the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("Failed to parse config, using defaults", "path", path, "err", err)
		def := DefaultConfig()
		return &def, nil
	}
	cfg.normalize(path)
	return &cfg, nil
}

// normalize resets limits that would stall or disable a turn.
func (c *Config) normalize(path string) {
	def := DefaultConfig()
	fix := func(key string, got, want int) {
		slog.Warn("Ignoring invalid config value", "path", path, "key", key, "value", got, "using", want)
	}

	if d := &c.Agents.Defaults; d.MaxToolRounds <= 0 {
		fix("agents.defaults.maxToolRounds", d.MaxToolRounds, def.Agents.Defaults.MaxToolRounds)
		d.MaxToolRounds = def.Agents.Defaults.MaxToolRounds
	}
	if d := &c.Agents.Defaults; d.MaxTokens <= 0 {
		fix("agents.defaults.maxTokens", d.MaxTokens, def.Agents.Defaults.MaxTokens)
		d.MaxTokens = def.Agents.Defaults.MaxTokens
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		fix("http.timeoutSeconds", c.HTTP.TimeoutSeconds, def.HTTP.TimeoutSeconds)
		c.HTTP.TimeoutSeconds = def.HTTP.TimeoutSeconds
	}
	if c.HTTP.MaxRetries < 0 {
		fix("http.maxRetries", c.HTTP.MaxRetries, 0)
		c.HTTP.MaxRetries = 0
	}
	if c.HTTP.RequestsPerMinute < 0 {
		fix("http.requestsPerMinute", c.HTTP.RequestsPerMinute, 0)
		c.HTTP.RequestsPerMinute = 0
	}
}

// Save writes cfg to path (ConfigPath() when empty) as indented JSON with
// 0600 permissions. The file is replaced atomically.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
