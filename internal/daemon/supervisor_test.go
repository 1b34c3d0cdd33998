// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package daemon

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	name    string
	started atomic.Bool
}

func (s *stubRunner) Name() string { return s.name }
func (s *stubRunner) Run(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	return nil
}

func TestSupervisor_ContextCancelStopsAllRunners(t *testing.T) {
	r1 := &stubRunner{name: "r1"}
	r2 := &stubRunner{name: "r2"}
	s := New(nil, nil, r1, r2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return r1.started.Load() && r2.started.Load() }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop after context cancellation")
	}
}

func TestSupervisor_SIGHUPTriggersReloadWithoutStopping(t *testing.T) {
	var reloadCalls atomic.Int32
	reload := func() error {
		reloadCalls.Add(1)
		return nil
	}

	r := &stubRunner{name: "r1"}
	s := New(nil, reload, r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return r.started.Load() }, time.Second, 5*time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))

	require.Eventually(t, func() bool { return reloadCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	select {
	case <-done:
		t.Fatal("supervisor stopped on SIGHUP, should have kept running")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestSupervisor_SIGTERMStopsAllRunners(t *testing.T) {
	r := &stubRunner{name: "r1"}
	s := New(nil, nil, r)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return r.started.Load() }, time.Second, 5*time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop on SIGTERM")
	}
}
