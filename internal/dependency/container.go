// Package dependency wires core storyloom services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"

	"github.com/storyloom/storyloom/internal/agent"
	"github.com/storyloom/storyloom/internal/config"
	"github.com/storyloom/storyloom/internal/providers"
	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/store"
	"github.com/storyloom/storyloom/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	db           *store.SQLite
	adapter      schema.ProviderAdapter
	registry     *tools.Registry
	orchestrator *agent.Orchestrator
}

func (c *Container) Store() *store.SQLite { return c.db }
func (c *Container) Adapter() schema.ProviderAdapter { return c.adapter }
func (c *Container) Registry() *tools.Registry { return c.registry }
func (c *Container) Orchestrator() *agent.Orchestrator { return c.orchestrator }

// Close releases the database.
func (c *Container) Close() error { return c.db.Close() }

// ProgressFunc receives interim model text and tool hints during a turn.
// A named type so dig can tell it apart from other func(string) values.
type ProgressFunc func(string)

// New builds and wires all core services from cfg. The provider adapter is
// selected here, once, from the matched provider spec.
func New(ctx context.Context, cfg *config.Config, progress ProgressFunc) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() context.Context { return ctx }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() ProgressFunc { return progress }); err != nil {
		return nil, err
	}
	if err := d.Provide(newStore); err != nil {
		return nil, err
	}
	if err := d.Provide(newStores); err != nil {
		return nil, err
	}
	if err := d.Provide(tools.NewRegistry); err != nil {
		return nil, err
	}
	if err := d.Provide(newAdapter); err != nil {
		return nil, err
	}
	if err := d.Provide(newTransport); err != nil {
		return nil, err
	}
	if err := d.Provide(newContextBuilder); err != nil {
		return nil, err
	}
	if err := d.Provide(newOrchestrator); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		db *store.SQLite,
		adapter schema.ProviderAdapter,
		registry *tools.Registry,
		orch *agent.Orchestrator,
	) {
		result = &Container{
			db:           db,
			adapter:      adapter,
			registry:     registry,
			orchestrator: orch,
		}
	})
	if err != nil {
		// release the database if it was opened before a later constructor failed
		_ = d.Invoke(func(db *store.SQLite) { db.Close() })
		return nil, dig.RootCause(err)
	}
	return result, nil
}

// OpenStore opens the configured database without wiring a provider.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.SQLite, error) {
	return newStore(ctx, cfg)
}

func newStore(ctx context.Context, cfg *config.Config) (*store.SQLite, error) {
	return store.Open(ctx, cfg.DatabasePath())
}

func newStores(db *store.SQLite) tools.Stores {
	return db.ToolStores()
}

func newAdapter(cfg *config.Config) (schema.ProviderAdapter, error) {
	params := cfg.ProviderParams("")
	if params.ProviderName == "" {
		return nil, fmt.Errorf("no API key configured for model %q: edit %s or set the provider's API key variable", params.Model, config.ConfigPath())
	}
	return providers.New(params)
}

func newTransport(cfg *config.Config) schema.Transport {
	return providers.NewHTTPTransport(providers.TransportOptions{
		Timeout:           time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.HTTP.MaxRetries,
		RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
	})
}

func newContextBuilder(cfg *config.Config, stores tools.Stores) *agent.ContextBuilder {
	return agent.NewContextBuilder(cfg.WorkspacePath(), stores)
}

func newOrchestrator(
	cfg *config.Config,
	adapter schema.ProviderAdapter,
	transport schema.Transport,
	registry *tools.Registry,
	cb *agent.ContextBuilder,
	progress ProgressFunc,
) *agent.Orchestrator {
	opts := []agent.Option{
		agent.WithMaxRounds(cfg.Agents.Defaults.MaxToolRounds),
		agent.WithSystemContext(cb),
	}
	if progress != nil {
		opts = append(opts, agent.WithProgress(progress))
	}
	return agent.NewOrchestrator(adapter, transport, registry, opts...)
}
