package agent

import (
	"fmt"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// Config describes a persona to register with a session.
type Config struct {
	// Name is the unique registry key ("triage", "prescription", "info").
	Name string

	// Instructions is the persona's system prompt. It is injected into the
	// agent's context as a marked instruction item so handoff copies can
	// exclude it.
	Instructions string

	// Tools lists the names of the tool actions this persona may invoke.
	Tools []string

	// Voice is the opaque output-style binding handed to the TTS
	// collaborator whenever this agent speaks.
	Voice string
}

// Validate checks the config for required fields.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrConfigInvalid)
	}
	if c.Instructions == "" {
		return fmt.Errorf("%w: instructions are required", ErrConfigInvalid)
	}
	return nil
}

// Agent is one named persona in a session: fixed instructions, an allowed
// tool subset, a voice binding, and the conversation history it owns.
//
// Agents are constructed once at session start and live for the session's
// duration; a handoff only changes which agent is current. Variants differ
// only in configuration; the entry protocol and transfer mechanics live in
// Session and Handoff and are shared by all of them.
type Agent struct {
	name         string
	instructions string
	tools        []string
	voice        string

	chatCtx *ChatContext
	state   State
}

// New creates an agent from the config. The context is seeded with the
// persona-instruction item.
func New(cfg Config) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Agent{
		name:         cfg.Name,
		instructions: cfg.Instructions,
		tools:        append([]string(nil), cfg.Tools...),
		voice:        cfg.Voice,
		chatCtx:      NewChatContext(types.NewInstructionItem(cfg.Instructions)),
		state:        StateInactive,
	}
	return a, nil
}

// Name returns the registry key.
func (a *Agent) Name() string { return a.name }

// Instructions returns the persona prompt.
func (a *Agent) Instructions() string { return a.instructions }

// Voice returns the voice binding.
func (a *Agent) Voice() string { return a.voice }

// Tools returns the allowed tool names.
func (a *Agent) Tools() []string {
	return append([]string(nil), a.tools...)
}

// AllowsTool reports whether the persona may invoke the named tool.
func (a *Agent) AllowsTool(name string) bool {
	for _, t := range a.tools {
		if t == name {
			return true
		}
	}
	return false
}

// ChatContext returns the agent's live context.
func (a *Agent) ChatContext() *ChatContext { return a.chatCtx }

// State returns the lifecycle state.
func (a *Agent) State() State { return a.state }

// transition moves the agent to the next lifecycle state.
func (a *Agent) transition(to State) error {
	if !CanTransition(a.state, to) {
		return ErrInvalidTransition{From: a.state, To: to}
	}
	a.state = to
	return nil
}

// replaceContext swaps the stored context. Used by the entry protocol commit.
func (a *Agent) replaceContext(c *ChatContext) {
	a.chatCtx = c
}
