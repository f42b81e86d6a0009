package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// DefaultMaxToolSteps caps tool invocations within a single turn.
const DefaultMaxToolSteps = 5

// Spoken fallbacks for failed turns. The session returns these alongside the
// error so the voice pipeline always has something to say.
const (
	replyToolLimit          = "I'm sorry, I wasn't able to finish that request. Could you rephrase or break it into smaller steps?"
	replyCollaboratorFailed = "I'm sorry, something went wrong on my end. Could you say that again?"
)

// SessionConfig wires one live conversation.
type SessionConfig struct {
	// UserData is the shared fact record every agent's tools mutate. The
	// session only needs its summary; tools hold the concrete pointer.
	UserData types.Summarizer

	// Provider performs the inference calls.
	Provider llm.Provider

	// Tools is the session-wide registry; each agent's allowed list selects
	// a subset per request.
	Tools *ToolSet

	// Model and sampling parameters for every request this session makes.
	Model       string
	Temperature float32

	// MaxToolSteps caps tool invocations per turn. Zero means
	// DefaultMaxToolSteps.
	MaxToolSteps int

	// TokenBudget, when positive and paired with a counter, trims the
	// oldest non-system items from outgoing requests. Stored contexts are
	// never modified by budgeting.
	TokenBudget  int
	TokenCounter types.TokenCounter

	// Metrics receives turn/handoff/lifecycle observations. Nil means no
	// recording.
	Metrics MetricsHook

	Logger *zap.Logger
}

// Validate checks required collaborators.
func (c SessionConfig) Validate() error {
	if c.UserData == nil {
		return fmt.Errorf("%w: user data is required", ErrConfigInvalid)
	}
	if c.Provider == nil {
		return ErrProviderNotSet
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrConfigInvalid)
	}
	return nil
}

// TurnResult is what one processed turn hands to the voice pipeline.
type TurnResult struct {
	// Reply is the user-facing text to synthesize.
	Reply string

	// Agent and Voice identify who is speaking the reply, which after a
	// transfer is the new current agent.
	Agent string
	Voice string

	// Transferred reports that this turn committed a handoff.
	// TransferMessage carries the transfer tool's confirmation text.
	Transferred     bool
	TransferMessage string

	// ToolSteps counts tool invocations dispatched during the turn.
	ToolSteps int

	Usage types.TokenUsage
}

// Session binds one shared fact record, one agent registry, and the currently
// active agent, and drives the handoff controller.
//
// A session is logically single-threaded: turns run strictly one at a time
// under an internal mutex. Distinct sessions share nothing and may run
// concurrently.
type Session struct {
	id       string
	userData types.Summarizer
	provider llm.Provider
	tools    *ToolSet
	handoff  *Handoff

	agents   map[string]*Agent
	current  *Agent
	previous *Agent

	model        string
	temperature  float32
	maxToolSteps int
	tokenBudget  int
	counter      types.TokenCounter

	metrics   MetricsHook
	startedAt time.Time

	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewSession creates an empty session; register agents, then Start it.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tools == nil {
		cfg.Tools = NewToolSet()
	}
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = DefaultMaxToolSteps
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	id := uuid.NewString()
	return &Session{
		id:           id,
		userData:     cfg.UserData,
		provider:     cfg.Provider,
		tools:        cfg.Tools,
		handoff:      NewHandoff(logger),
		agents:       make(map[string]*Agent),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxToolSteps: cfg.MaxToolSteps,
		tokenBudget:  cfg.TokenBudget,
		counter:      cfg.TokenCounter,
		metrics:      cfg.Metrics,
		logger: logger.With(
			zap.String("component", "session"),
			zap.String("session_id", id),
		),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserData returns the shared fact record.
func (s *Session) UserData() types.Summarizer { return s.userData }

// RegisterAgent adds an agent to the registry. Names must be unique.
func (s *Session) RegisterAgent(a *Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[a.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.name)
	}
	s.agents[a.name] = a
	return nil
}

// RegisterAgents adds several agents, stopping at the first failure.
func (s *Session) RegisterAgents(agents ...*Agent) error {
	for _, a := range agents {
		if err := s.RegisterAgent(a); err != nil {
			return err
		}
	}
	return nil
}

// Agent returns a registered agent by name.
func (s *Session) Agent(name string) (*Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[name]
	return a, ok
}

// CurrentAgent returns the agent in control, nil before Start.
func (s *Session) CurrentAgent() *Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PreviousAgent returns the agent that was current before the most recent
// committed transfer, nil if none happened.
func (s *Session) PreviousAgent() *Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous
}

// Start activates the initial agent and returns its greeting.
func (s *Session) Start(ctx context.Context, initialAgent string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.current != nil {
		return nil, fmt.Errorf("session already started with agent %q", s.current.name)
	}

	next, reply, err := s.handoff.Transfer(types.WithSessionID(ctx, s.id), s, initialAgent)
	if err != nil {
		return nil, err
	}
	s.startedAt = time.Now()
	s.metrics.SessionStarted()
	s.logger.Info("session started", zap.String("agent", next.name))
	return &TurnResult{Reply: reply, Agent: next.name, Voice: next.voice}, nil
}

// ProcessTurn handles one finalized user utterance and produces the reply.
//
// The turn's dialogue items accumulate on a working copy and commit to the
// agent's stored context only when the turn succeeds, so a failed or
// cancelled external call never leaves partial history behind. Tool writes
// to the shared record may survive a failed turn; every defined action is an
// idempotent single-field overwrite, so that is harmless.
//
// On failure the TurnResult still carries a speakable fallback reply along
// with the error.
func (s *Session) ProcessTurn(ctx context.Context, utterance string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.current == nil {
		return nil, ErrSessionNotStarted
	}

	cur := s.current
	turnID := uuid.NewString()
	ctx = types.WithSessionID(ctx, s.id)
	ctx = types.WithTurnID(ctx, turnID)
	log := s.logger.With(zap.String("turn_id", turnID), zap.String("agent", cur.name))
	log.Debug("turn started", zap.Int("utterance_len", len(utterance)))

	// Noop unless telemetry is configured.
	ctx, span := otel.Tracer("pharmacy-agent/session").Start(ctx, "session.turn",
		oteltrace.WithAttributes(
			attribute.String("session.id", s.id),
			attribute.String("turn.id", turnID),
			attribute.String("agent.name", cur.name),
		),
	)
	defer span.End()
	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	started := time.Now()

	work := cur.chatCtx.Copy(false)
	work.Append(types.NewUserItem(utterance))

	var usage types.TokenUsage
	steps := 0

	for {
		schemas := s.tools.Schemas(cur.tools)
		req, err := s.buildRequest(work.Items(), schemas, llm.ToolChoiceAuto)
		if err != nil {
			return s.failedTurn(cur, started, steps, usage), fail(err)
		}
		resp, err := s.provider.Completion(types.WithAgentName(ctx, cur.name), req)
		if err != nil {
			log.Warn("inference failed", zap.Error(err))
			return s.failedTurn(cur, started, steps, usage), fail(wrapCollaboratorErr("inference", err))
		}
		usage.Add(resp.Usage)

		msg := resp.First()
		if len(msg.ToolCalls) == 0 {
			work.Append(msg.ToItem())
			cur.replaceContext(work)
			span.SetAttributes(attribute.Int("turn.tool_steps", steps))
			s.metrics.RecordTurn(cur.name, "success", time.Since(started), steps)
			log.Debug("turn completed", zap.Int("tool_steps", steps))
			return &TurnResult{
				Reply:     msg.Content,
				Agent:     cur.name,
				Voice:     cur.voice,
				ToolSteps: steps,
				Usage:     usage,
			}, nil
		}

		work.Append(msg.ToItem())

		for _, call := range msg.ToolCalls {
			steps++
			if steps > s.maxToolSteps {
				log.Warn("tool step limit exceeded", zap.Int("limit", s.maxToolSteps))
				return s.failedTurnReply(cur, replyToolLimit, started, steps-1, usage),
					fail(types.NewError(types.ErrToolStepLimit,
						fmt.Sprintf("turn requested more than %d tool invocations", s.maxToolSteps)))
			}

			if !cur.AllowsTool(call.Name) {
				log.Warn("tool not in persona allow list", zap.String("tool", call.Name))
				work.Append(types.NewToolItem(call.ID, call.Name,
					fmt.Sprintf("Error: %v: %s", ErrToolNotAllowed, call.Name)))
				continue
			}

			out, result := s.tools.Execute(ctx, types.ToolCall(call))
			log.Debug("tool executed",
				zap.String("tool", call.Name),
				zap.Bool("error", result.IsError()),
				zap.Duration("duration", result.Duration),
			)

			if out.TransferTo == "" || result.IsError() {
				work.Append(result.ToItem())
				continue
			}

			// Transfer requested. Validate the target before recording the
			// confirmation, so an unknown target reads as a failed tool
			// action and the turn continues with the current agent.
			if _, ok := s.agents[out.TransferTo]; !ok {
				transferErr := types.NewError(types.ErrUnknownAgent,
					fmt.Sprintf("transfer target %q is not registered", out.TransferTo)).
					WithCause(ErrUnknownAgent)
				log.Warn("transfer to unknown agent refused", zap.String("target", out.TransferTo))
				work.Append(types.NewToolItem(call.ID, call.Name, "Error: "+transferErr.Error()))
				continue
			}

			// The outgoing agent's history must include this exchange before
			// the entry protocol snapshots it.
			work.Append(result.ToItem())
			cur.replaceContext(work)

			next, entryReply, err := s.handoff.Transfer(ctx, s, out.TransferTo)
			if err != nil {
				// Entry inference failed; pointers and contexts beyond the
				// already-committed working copy are unchanged.
				return s.failedTurn(cur, started, steps, usage), fail(err)
			}
			span.SetAttributes(
				attribute.Int("turn.tool_steps", steps),
				attribute.String("turn.transferred_to", next.name),
			)
			s.metrics.RecordHandoff(cur.name, next.name)
			s.metrics.RecordTurn(cur.name, "success", time.Since(started), steps)
			return &TurnResult{
				Reply:           entryReply,
				Agent:           next.name,
				Voice:           next.voice,
				Transferred:     true,
				TransferMessage: result.Content,
				ToolSteps:       steps,
				Usage:           usage,
			}, nil
		}
	}
}

// Close marks the session finished. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.startedAt.IsZero() {
		s.metrics.SessionEnded("completed", time.Since(s.startedAt))
	}
	s.logger.Info("session closed")
	return nil
}

func (s *Session) failedTurn(cur *Agent, started time.Time, steps int, usage types.TokenUsage) *TurnResult {
	return s.failedTurnReply(cur, replyCollaboratorFailed, started, steps, usage)
}

func (s *Session) failedTurnReply(cur *Agent, reply string, started time.Time, steps int, usage types.TokenUsage) *TurnResult {
	s.metrics.RecordTurn(cur.name, "error", time.Since(started), steps)
	return &TurnResult{
		Reply:     reply,
		Agent:     cur.name,
		Voice:     cur.voice,
		ToolSteps: steps,
		Usage:     usage,
	}
}

// buildRequest shapes one provider request from context items and allowed
// tool schemas.
func (s *Session) buildRequest(items []types.Item, schemas []types.ToolSchema, toolChoice string) (*llm.ChatRequest, error) {
	items = s.fitBudget(items)
	var tools []llm.ToolSchema
	if len(schemas) > 0 {
		converted, err := llm.FromSchemas(schemas)
		if err != nil {
			return nil, fmt.Errorf("convert tool schemas: %w", err)
		}
		tools = converted
	}
	return &llm.ChatRequest{
		Model:       s.model,
		Messages:    llm.FromItems(items),
		Temperature: s.temperature,
		Tools:       tools,
		ToolChoice:  toolChoice,
	}, nil
}

// fitBudget drops the oldest non-system items until the estimated token count
// fits the configured budget. System items always survive and every kept item
// stays in its original position, so the outgoing transcript remains
// chronological. This shapes only the outgoing request; stored contexts keep
// full history.
func (s *Session) fitBudget(items []types.Item) []types.Item {
	if s.tokenBudget <= 0 || s.counter == nil {
		return items
	}

	out := make([]types.Item, len(items))
	copy(out, items)

	for s.estimateTokens(out) > s.tokenBudget {
		idx := -1
		for i, it := range out {
			if it.Role != types.RoleSystem {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		out = append(out[:idx], out[idx+1:]...)
	}
	return out
}

func (s *Session) estimateTokens(items []types.Item) int {
	total := 3
	for _, it := range items {
		n, err := s.counter.CountTokens(it.Content)
		if err != nil {
			n = len(it.Content) / 4
		}
		total += n + 4
	}
	return total
}
