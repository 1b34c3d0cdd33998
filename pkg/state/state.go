// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
)

// FSM is a thread-safe finite state machine wrapper around
// github.com/qmuntal/stateless, giving every transition a bounded
// deadline and every state optional entry/exit hooks.
type FSM struct {
	config  Config
	machine *stateless.StateMachine

	mu           sync.RWMutex
	currentState string
	started      bool
	stopped      bool
}

// New creates a new state machine from the provided configuration.
func New(config Config, states ...StateDefinition) (*FSM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sm := &FSM{
		config:       config,
		currentState: config.InitialState,
	}
	sm.machine = stateless.NewStateMachine(config.InitialState)

	defs := make(map[string]StateDefinition, len(states))
	for _, d := range states {
		defs[d.Name] = d
	}
	for _, name := range config.States {
		cfg := sm.machine.Configure(name)
		def := defs[name]
		if def.OnEntry != nil {
			entry := def.OnEntry
			cfg.OnEntry(func(ctx context.Context, _ ...any) error { return entry(ctx) })
		}
		if def.OnExit != nil {
			exit := def.OnExit
			cfg.OnExit(func(ctx context.Context, _ ...any) error { return exit(ctx) })
		}
	}

	for _, t := range config.Transitions {
		from := sm.machine.Configure(t.From)
		if t.Guard != nil {
			guard := t.Guard
			to := t.To
			from.PermitDynamic(t.Trigger, func(ctx context.Context, _ ...any) (any, error) {
				if guard(ctx) {
					return to, nil
				}
				return nil, fmt.Errorf("%w: guard rejected trigger %s", ErrInvalidTransition, t.Trigger)
			})
		} else if t.From == t.To {
			from.PermitReentry(t.Trigger)
		} else {
			from.Permit(t.Trigger, t.To)
		}
		if t.Action != nil {
			action := t.Action
			fromState, toState := t.From, t.To
			sm.machine.Configure(t.To).OnEntryFrom(t.Trigger, func(ctx context.Context, _ ...any) error {
				return action(ctx, fromState, toState)
			})
		}
	}

	return sm, nil
}

// Start marks the machine as runnable. Fire returns ErrStateMachineNotStarted
// until Start has been called.
func (sm *FSM) Start(context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.stopped {
		return ErrStateMachineStopped
	}
	sm.started = true
	return nil
}

// Stop marks the machine as terminal; subsequent Fire calls fail.
func (sm *FSM) Stop(context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.stopped = true
	return nil
}

// Fire triggers a transition, bounded by the configured state timeout.
func (sm *FSM) Fire(ctx context.Context, trigger string) error {
	sm.mu.Lock()
	if !sm.started {
		sm.mu.Unlock()
		return ErrStateMachineNotStarted
	}
	if sm.stopped {
		sm.mu.Unlock()
		return ErrStateMachineStopped
	}
	sm.mu.Unlock()

	timeout := sm.config.StateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sm.machine.FireCtx(fireCtx, trigger)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
	case <-fireCtx.Done():
		if fireCtx.Err() == context.DeadlineExceeded {
			return ErrTransitionTimeout
		}
		return fireCtx.Err()
	}

	st, err := sm.machine.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current state: %w", err)
	}

	sm.mu.Lock()
	sm.currentState = fmt.Sprintf("%v", st)
	sm.mu.Unlock()

	return nil
}

// CurrentState returns the machine's current state.
func (sm *FSM) CurrentState() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// IsInState reports whether the machine is currently in the given state.
func (sm *FSM) IsInState(state string) bool {
	return sm.CurrentState() == state
}

// CanFire reports whether trigger is valid from the current state.
func (sm *FSM) CanFire(trigger string) bool {
	ok, err := sm.machine.CanFire(trigger)
	return err == nil && ok
}

// Name returns the state machine's configured name.
func (sm *FSM) Name() string {
	return sm.config.Name
}
