// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package pharmacy assembles the pharmacy call experience on top of the agent
core: the shared per-call record, the tool actions, and the three personas.

# Personas

	triage        greets callers and routes them; first agent on every call
	prescription  prescription status, refills, pickup details
	info          address, hours, and general questions

Each persona lists the subset of tools it may call. Transfers between them
are tool actions (transfer_to_triage, transfer_to_prescription,
transfer_to_info) that the session's dispatch loop applies.

# Shared record

UserData accumulates what the call has established so far: the customer's
name, the prescription ID, and the medicine under discussion. Its YAML
summary is injected into every agent's context when that agent takes over,
so facts never have to be repeated after a handoff.

# Usage

	session, record, err := pharmacy.NewSession(pharmacy.Config{
	    Provider: provider,
	    Store:    st,
	})
	if err != nil {
	    log.Fatal(err)
	}
	greeting, err := session.Start(ctx, pharmacy.AgentTriage)
*/
package pharmacy
