// SPDX-License-Identifier: BSD-3-Clause

package wsclient

import (
	"context"
	"time"

	"github.com/Anexgohan/pankha/pkg/state"
)

// Connection states.
const (
	StateIdle       = "idle"
	StateConnecting = "connecting"
	StateOnline     = "online"
	StateBackoff    = "backoff"
	StateTerminal   = "terminal"
)

// Triggers drive the connection-state transitions. Side effects
// (reset retry counter, invalidate cache, enter/exit failsafe, send
// registration) are performed by Client.Run around each Fire call, not
// inside the FSM itself — this package only needs to track which state
// is legal to be in, not perform I/O from within a state hook.
const (
	triggerRun            = "run"
	triggerHandshakeOK    = "handshake_ok"
	triggerHandshakeFail  = "handshake_fail"
	triggerActivity       = "activity"
	triggerIdleTimeout    = "idle_timeout"
	triggerServerClose    = "server_close"
	triggerBackoffElapsed = "backoff_elapsed"
	triggerStop           = "stop"
)

func newConnectionFSM() (*state.FSM, error) {
	cfg := state.Config{
		Name:         "wsclient",
		InitialState: StateIdle,
		States:       []string{StateIdle, StateConnecting, StateOnline, StateBackoff, StateTerminal},
		StateTimeout: 5 * time.Second,
		Transitions: []state.Transition{
			{From: StateIdle, To: StateConnecting, Trigger: triggerRun},
			{From: StateConnecting, To: StateOnline, Trigger: triggerHandshakeOK},
			{From: StateConnecting, To: StateBackoff, Trigger: triggerHandshakeFail},
			{From: StateOnline, To: StateOnline, Trigger: triggerActivity},
			{From: StateOnline, To: StateBackoff, Trigger: triggerIdleTimeout},
			{From: StateOnline, To: StateBackoff, Trigger: triggerServerClose},
			{From: StateBackoff, To: StateConnecting, Trigger: triggerBackoffElapsed},
			{From: StateIdle, To: StateTerminal, Trigger: triggerStop},
			{From: StateConnecting, To: StateTerminal, Trigger: triggerStop},
			{From: StateOnline, To: StateTerminal, Trigger: triggerStop},
			{From: StateBackoff, To: StateTerminal, Trigger: triggerStop},
		},
	}

	sm, err := state.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := sm.Start(context.Background()); err != nil {
		return nil, err
	}
	return sm, nil
}
