// Package config defines the configuration schema for storyloom.
//
// The file lives at ~/.storyloom/config.json and uses camelCase JSON keys.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/storyloom/storyloom/internal/config/agent"
	"github.com/storyloom/storyloom/internal/config/provider"
)

// HTTPConfig tunes the provider transport.
type HTTPConfig struct {
	TimeoutSeconds    int `json:"timeoutSeconds"`
	MaxRetries        int `json:"maxRetries"`
	RequestsPerMinute int `json:"requestsPerMinute"` // 0 = unlimited
}

func defaultHTTPConfig() HTTPConfig {
	return HTTPConfig{TimeoutSeconds: 120, MaxRetries: 1}
}

// DatabaseConfig locates the sqlite file holding the books.
type DatabaseConfig struct {
	Path string `json:"path"`
}

func defaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{Path: "~/.storyloom/storyloom.db"}
}

// BookConfig selects the book the CLI works on.
type BookConfig struct {
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
}

func defaultBookConfig() BookConfig {
	return BookConfig{UserID: 1, BookID: 1}
}

// ---- Root config -----------------------------------------------------------

// Config is the root configuration object, loaded from ~/.storyloom/config.json.
type Config struct {
	Agents    agent.AgentsConfig       `json:"agents"`
	Providers provider.ProvidersConfig `json:"providers"`
	HTTP      HTTPConfig               `json:"http"`
	Database  DatabaseConfig           `json:"database"`
	Book      BookConfig               `json:"book"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agents:    agent.DefaultAgentsConfig(),
		Providers: provider.DefaultProvidersConfig(),
		HTTP:      defaultHTTPConfig(),
		Database:  defaultDatabaseConfig(),
		Book:      defaultBookConfig(),
	}
}

// WorkspacePath returns the expanded absolute path to the agent workspace.
func (c *Config) WorkspacePath() string {
	ws := c.Agents.Defaults.Workspace
	if ws == "" {
		ws = filepath.Join(DataDir(), "workspace")
	}
	return expandHome(ws)
}

// DatabasePath returns the expanded path of the sqlite file.
func (c *Config) DatabasePath() string {
	p := c.Database.Path
	if p == "" {
		p = filepath.Join(DataDir(), "storyloom.db")
	}
	return expandHome(p)
}

// ProviderByName returns the ProviderConfig for a registry name
// (e.g. "openrouter", "anthropic"). Returns nil if unknown.
func (c *Config) ProviderByName(name string) *provider.ProviderConfig {
	return c.Providers.ByName(name)
}

// ---- Paths -----------------------------------------------------------------

const dataDirName = ".storyloom"

// DataDir returns the storyloom data directory, ~/.storyloom. It holds the
// config file, the default workspace and the default database.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dataDirName
	}
	return filepath.Join(home, dataDirName)
}

// ConfigPath returns the default config file, ~/.storyloom/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
}
