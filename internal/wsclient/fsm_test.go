// SPDX-License-Identifier: BSD-3-Clause

package wsclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionFSM_HappyPathTransitions(t *testing.T) {
	sm, err := newConnectionFSM()
	require.NoError(t, err)
	ctx := context.Background()

	require.Equal(t, StateIdle, sm.CurrentState())

	require.NoError(t, sm.Fire(ctx, triggerRun))
	require.Equal(t, StateConnecting, sm.CurrentState())

	require.NoError(t, sm.Fire(ctx, triggerHandshakeOK))
	require.Equal(t, StateOnline, sm.CurrentState())

	require.NoError(t, sm.Fire(ctx, triggerIdleTimeout))
	require.Equal(t, StateBackoff, sm.CurrentState())

	require.NoError(t, sm.Fire(ctx, triggerBackoffElapsed))
	require.Equal(t, StateConnecting, sm.CurrentState())
}

func TestConnectionFSM_HandshakeFailureEntersBackoff(t *testing.T) {
	sm, err := newConnectionFSM()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sm.Fire(ctx, triggerRun))
	require.NoError(t, sm.Fire(ctx, triggerHandshakeFail))
	require.Equal(t, StateBackoff, sm.CurrentState())
}

func TestConnectionFSM_StopFromIdle(t *testing.T) {
	sm, err := newConnectionFSM()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sm.Fire(ctx, triggerStop))
	require.Equal(t, StateTerminal, sm.CurrentState())
}
