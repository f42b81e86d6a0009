// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

// Package room is the transport boundary of a voice call and the pipeline
// that runs one: audio frames in, VAD-segmented utterances through speech
// recognition into the conversational session, synthesized replies back out.
//
// The Room interface hides the actual media transport. Loopback is the
// in-memory implementation used by tests and local development; a media
// server adapter satisfies the same interface in production.
//
// Pipeline.Run owns the call lifecycle: connect, wait for the ready signal,
// speak the initial agent's greeting, then loop on utterances until the
// participant leaves or the context is cancelled.
package room
