package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
	"github.com/storyloom/storyloom/internal/shared/llmutils"
	"github.com/storyloom/storyloom/internal/tools"
)

// DefaultMaxRounds is the number of tool rounds one turn may run.
const DefaultMaxRounds = 5

// SystemContext produces the instruction text handed to the model at the
// start of a turn.
type SystemContext interface {
	Build(ctx context.Context, scope schema.Scope) (string, error)
}

// TurnResult is what one user turn produced. Effects is populated even when
// the turn fails, so effects applied before the failure are still reported.
type TurnResult struct {
	TurnID  string
	Reply   string
	Effects ledger.Ledger
	Rounds  int // tool rounds executed
	Calls   int // provider requests issued
}

// Orchestrator drives the round-bounded conversation between the provider
// and the tool registry. The adapter is chosen once at construction.
type Orchestrator struct {
	adapter    schema.ProviderAdapter
	transport  schema.Transport
	registry   *tools.Registry
	system     SystemContext
	maxRounds  int
	onProgress func(string)
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithMaxRounds overrides DefaultMaxRounds. Values below 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRounds = n
		}
	}
}

// WithSystemContext sets the builder consulted by ProcessTurn.
func WithSystemContext(sc SystemContext) Option {
	return func(o *Orchestrator) { o.system = sc }
}

// WithProgress registers a callback receiving interim text and tool hints
// while a turn runs.
func WithProgress(fn func(string)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(adapter schema.ProviderAdapter, transport schema.Transport, registry *tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		adapter:   adapter,
		transport: transport,
		registry:  registry,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// MaxRounds returns the configured round budget.
func (o *Orchestrator) MaxRounds() int { return o.maxRounds }

// ProcessTurn builds the system context for scope and runs one turn.
// A failing context builder degrades to an empty context rather than
// aborting the turn.
func (o *Orchestrator) ProcessTurn(ctx context.Context, scope schema.Scope, message string) (TurnResult, error) {
	var system string
	if o.system != nil {
		s, err := o.system.Build(ctx, scope)
		if err != nil {
			slog.Warn("System context unavailable", "book", scope.BookID, "err", err)
		} else {
			system = s
		}
	}
	return o.Run(ctx, scope, system, message)
}

// Run executes one user turn with a ready-made system context.
//
// The provider is asked once; while its reply requests tools and fewer than
// MaxRounds rounds have run, every requested tool is dispatched in order and
// the provider is asked again. When the budget is spent and the model still
// wants tools, the last reply's text is returned if it has any, otherwise
// the turn fails with schema.ErrRoundsExhausted.
func (o *Orchestrator) Run(ctx context.Context, scope schema.Scope, system, message string) (TurnResult, error) {
	res := TurnResult{TurnID: uuid.NewString()}
	log := slog.With("turn", res.TurnID, "adapter", o.adapter.Name())
	led := ledger.New()

	finish := func(reply string, err error) (TurnResult, error) {
		res.Effects = led.Snapshot()
		if err != nil {
			log.Error("Turn failed", "rounds", res.Rounds, "calls", res.Calls, "err", err)
			return res, err
		}
		res.Reply = reply
		log.Info("Turn finished", "rounds", res.Rounds, "calls", res.Calls, "effects", led.Len())
		return res, nil
	}

	transcript := schema.NewMessages()
	if system != "" {
		transcript.AddSystem(system)
	}
	transcript.AddUser(message)
	catalogue := o.registry.ListTools()

	reply, err := o.ask(ctx, log, &res, transcript, catalogue)
	if err != nil {
		return finish("", err)
	}

	for reply.WantsTools() {
		if res.Rounds >= o.maxRounds {
			log.Warn("Tool round limit reached", "rounds", res.Rounds, "pending_calls", len(reply.ToolCalls))
			if text := llmutils.StripThink(reply.Text); text != "" {
				return finish(text, nil)
			}
			return finish("", fmt.Errorf("%w (%d rounds)", schema.ErrRoundsExhausted, res.Rounds))
		}
		res.Rounds++
		o.progress(reply)

		transcript.AddAssistant(reply)
		outcomes := make([]schema.ToolOutcome, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			result := o.registry.Dispatch(ctx, call.Name, call.Arguments, scope, led)
			outcomes = append(outcomes, schema.ToolOutcome{CallID: call.ID, Name: call.Name, Result: result})
		}
		transcript.AddToolResults(outcomes)

		reply, err = o.ask(ctx, log, &res, transcript, catalogue)
		if err != nil {
			return finish("", err)
		}
	}

	text, err := o.adapter.FinalText(reply)
	if err != nil {
		return finish("", fmt.Errorf("%s: %w", o.adapter.Name(), err))
	}
	return finish(llmutils.StripThink(text), nil)
}

// ask renders the transcript, sends it and parses the answer.
func (o *Orchestrator) ask(ctx context.Context, log *slog.Logger, res *TurnResult, transcript schema.Messages, catalogue []schema.ToolDefinition) (schema.ProviderReply, error) {
	payload, err := o.adapter.BuildRequest(transcript, catalogue)
	if err != nil {
		return schema.ProviderReply{}, fmt.Errorf("build %s request: %w", o.adapter.Name(), err)
	}

	start := time.Now()
	res.Calls++
	raw, err := o.transport.Send(ctx, o.adapter.Endpoint(), o.adapter.Headers(), payload)
	if err != nil {
		return schema.ProviderReply{}, fmt.Errorf("%s request: %w", o.adapter.Name(), err)
	}

	reply, err := o.adapter.ParseResponse(raw)
	if err != nil {
		return schema.ProviderReply{}, fmt.Errorf("%s response: %w", o.adapter.Name(), err)
	}
	log.Info("Provider call",
		"call", res.Calls,
		"stop_reason", reply.StopReason,
		"tool_calls", len(reply.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

func (o *Orchestrator) progress(reply schema.ProviderReply) {
	if o.onProgress == nil {
		return
	}
	if clean := strings.TrimSpace(llmutils.StripThink(reply.Text)); clean != "" {
		o.onProgress(clean)
	}
	o.onProgress(llmutils.ToolHint(reply.ToolCalls))
}
