// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package agent implements the multi-agent dialogue core: persona-scoped
agents, per-agent conversation contexts, the handoff controller, and the
session that dispatches turns.

# Overview

A Session owns a registry of Agents and exactly one current agent at a time.
Each Agent keeps its own ChatContext seeded with an instruction item that
carries the persona. Tools are plain functions registered in a ToolSet; each
agent names the subset it may call. A tool never switches agents itself; it
returns a ToolOutput whose TransferTo field asks the session to run the
handoff, keeping control flow in one place.

# Architecture

	┌──────────────────────────────────────────────────────────┐
	│                        Session                           │
	│   (registry, current/previous, turn loop, tool dispatch) │
	├──────────────────────────────────────────────────────────┤
	│                        Handoff                           │
	│   (entry protocol: carry, dedup, state summary, greet)   │
	├──────────────────────────────────────────────────────────┤
	│  ┌─────────────┐  ┌──────────────┐  ┌────────────────┐   │
	│  │    Agent    │  │ ChatContext  │  │    ToolSet     │   │
	│  │ (persona +  │  │ (per-agent   │  │ (shared        │   │
	│  │  lifecycle) │  │  history)    │  │  registry)     │   │
	│  └─────────────┘  └──────────────┘  └────────────────┘   │
	├──────────────────────────────────────────────────────────┤
	│                     llm.Provider                         │
	└──────────────────────────────────────────────────────────┘

# Usage

	session, err := agent.NewSession(agent.SessionConfig{
	    UserData: record,
	    Provider: provider,
	    Tools:    tools,
	    Model:    "llama3.1-8b",
	})
	if err != nil {
	    log.Fatal(err)
	}
	if err := session.RegisterAgents(triage, prescription, info); err != nil {
	    log.Fatal(err)
	}

	greeting, err := session.Start(ctx, "triage")

	result, err := session.ProcessTurn(ctx, "Is my prescription ready?")
	if result.Transferred {
	    // result.Agent and result.Voice now describe the new speaker.
	}

# Lifecycle

Agents move through a small state machine:

	Inactive → Entering → Active
	               ↓         ↓
	           Inactive   Entering (self-transfer)

Entering covers the entry protocol: copy own context, carry the most recent
items from the previous agent's context minus its instructions, drop
anything already present by item ID, append a state summary, and generate a
greeting with tools disabled. The switch of current and previous commits
only after that greeting succeeds; a failed or cancelled entry leaves the
session exactly as it was.

# Turn processing

ProcessTurn builds the turn on a copy of the current agent's context and
commits it back only at success points, so a failed provider call never
leaves partial history. Tool invocations within one turn are capped; past
the cap the turn ends with a fallback reply and a ToolStepLimit error.

# Error Handling

Collaborator failures surface as *types.Error with stable codes:

	types.ErrUnknownAgent         transfer target not registered
	types.ErrToolStepLimit        too many tool invocations in one turn
	types.ErrExternalCollaborator inference or synthesis failed

Sentinel errors (ErrSessionClosed, ErrToolNotAllowed, ...) cover local
misuse and compose with errors.Is.

# Thread Safety

A Session serializes its turns internally; distinct sessions share nothing
and may run concurrently. ChatContext methods that return items always
return deep copies, so snapshots never alias live history.
*/
package agent
