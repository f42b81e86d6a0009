package pharmacy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/agent"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/store"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// Agent names. These are the registry keys and the transfer targets.
const (
	AgentTriage       = "triage"
	AgentPrescription = "prescription"
	AgentInfo         = "info"
)

// Voices binds each persona to its synthesis voice.
var Voices = map[string]string{
	AgentTriage:       "Xb7hH8MSUJpSbSDYk0k2",
	AgentPrescription: "nPczCjzI2devNBz1zQrb",
	AgentInfo:         "XB0fDUnXU5powFXDhCwa",
}

// Model defaults for the inference collaborator.
const (
	DefaultModel       = "llama3.1-8b"
	DefaultTemperature = 0.7
)

const (
	triageInstructions = "You are the triage agent for a pharmacy. Greet the caller and find out " +
		"if they need prescription status, medicine availability, or general info. " +
		"Use tools to route or answer directly."

	prescriptionInstructions = "You handle prescription-related questions like status, refills, " +
		"and pickup details. Record the customer's name when they give it."

	infoInstructions = "You provide general pharmacy information like hours, address, or services."
)

// NewTriageAgent builds the routing persona callers meet first.
func NewTriageAgent() (*agent.Agent, error) {
	return agent.New(agent.Config{
		Name:         AgentTriage,
		Instructions: triageInstructions,
		Tools: []string{
			ToolCheckPrescription,
			ToolCheckMedicine,
			ToolGetPharmacyInfo,
			ToolTransferToPrescription,
			ToolTransferToInfo,
		},
		Voice: Voices[AgentTriage],
	})
}

// NewPrescriptionAgent builds the prescription-questions persona.
func NewPrescriptionAgent() (*agent.Agent, error) {
	return agent.New(agent.Config{
		Name:         AgentPrescription,
		Instructions: prescriptionInstructions,
		Tools: []string{
			ToolUpdateName,
			ToolCheckPrescription,
			ToolTransferToTriage,
		},
		Voice: Voices[AgentPrescription],
	})
}

// NewInfoAgent builds the general-information persona.
func NewInfoAgent() (*agent.Agent, error) {
	return agent.New(agent.Config{
		Name:         AgentInfo,
		Instructions: infoInstructions,
		Tools: []string{
			ToolCheckMedicine,
			ToolGetPharmacyInfo,
			ToolTransferToTriage,
		},
		Voice: Voices[AgentInfo],
	})
}

// Config wires one pharmacy call.
type Config struct {
	// Provider performs inference. Required.
	Provider llm.Provider

	// Store answers prescription and stock lookups. Defaults to the
	// in-memory backend.
	Store store.Store

	// Model and Temperature default to the cerebras llama3.1-8b settings.
	Model       string
	Temperature float32

	// MaxToolSteps caps tool invocations per turn; zero keeps the session
	// default.
	MaxToolSteps int

	// TokenBudget and TokenCounter, when set, trim outgoing requests.
	TokenBudget  int
	TokenCounter types.TokenCounter

	// Metrics receives session/turn/handoff observations; nil disables
	// recording.
	Metrics agent.MetricsHook

	Logger *zap.Logger
}

// NewSession builds the full pharmacy session: the shared record, the tool
// registry, and the three personas. Start it with AgentTriage.
func NewSession(cfg Config) (*agent.Session, *UserData, error) {
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	record := NewUserData()
	tools := agent.NewToolSet()
	if err := RegisterTools(tools, record, cfg.Store); err != nil {
		return nil, nil, fmt.Errorf("register tools: %w", err)
	}

	session, err := agent.NewSession(agent.SessionConfig{
		UserData:     record,
		Provider:     cfg.Provider,
		Tools:        tools,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxToolSteps: cfg.MaxToolSteps,
		TokenBudget:  cfg.TokenBudget,
		TokenCounter: cfg.TokenCounter,
		Metrics:      cfg.Metrics,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	triage, err := NewTriageAgent()
	if err != nil {
		return nil, nil, err
	}
	prescription, err := NewPrescriptionAgent()
	if err != nil {
		return nil, nil, err
	}
	info, err := NewInfoAgent()
	if err != nil {
		return nil, nil, err
	}
	if err := session.RegisterAgents(triage, prescription, info); err != nil {
		return nil, nil, err
	}
	return session, record, nil
}
