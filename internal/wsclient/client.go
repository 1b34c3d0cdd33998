// SPDX-License-Identifier: BSD-3-Clause

// Package wsclient implements the hub connection lifecycle: dial with a
// bounded timeout, register, treat any inbound frame as activity,
// reconnect with bounded exponential backoff, and hand off to
// internal/failsafe and internal/dispatcher at the right moments. The
// state machine itself is pkg/state; the concurrent
// receiver-loop/telemetry-task pair inside the online state runs under
// github.com/arunsworld/nursery.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/arunsworld/nursery"
	"github.com/gorilla/websocket"

	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/internal/protocol"
	"github.com/Anexgohan/pankha/pkg/state"
)

const idleTimeout = 30 * time.Second
const readPollInterval = 1 * time.Second
const writeWait = 5 * time.Second

// RegistrationProvider builds the register frame's body from current
// config and discovered capabilities.
type RegistrationProvider interface {
	Register(ctx context.Context) (protocol.Register, error)
}

// TelemetryProvider builds one telemetry "data" frame.
type TelemetryProvider interface {
	Snapshot(ctx context.Context) (protocol.Data, error)
	UpdateInterval() time.Duration
}

// MessageHandler decodes and acts on one inbound text frame, returning
// an encoded response to send back (if any). It owns all message
// semantics; wsclient only owns the transport.
type MessageHandler interface {
	HandleMessage(ctx context.Context, raw []byte) (response []byte, hasResponse bool)
}

// FailsafeController is notified of every online/offline transition.
type FailsafeController interface {
	SetOnline(online bool)
}

// Config parametrizes one Client.
type Config struct {
	URL               string
	ConnectTimeout    time.Duration
	ReconnectInterval time.Duration
	MaxReconnects     int // -1 = infinite
}

// Client drives one hub connection for the lifetime of the process.
type Client struct {
	cfg       Config
	hw        hardware.Backend
	failsafe  FailsafeController
	handler   MessageHandler
	registrar RegistrationProvider
	telemetry TelemetryProvider
	logger    *slog.Logger

	fsm *state.FSM

	writeMu sync.Mutex
	conn    *websocket.Conn

	activityMu sync.Mutex
	lastActive time.Time
}

// New builds a Client. The FSM starts in state idle; call Run to drive it.
func New(cfg Config, hw hardware.Backend, failsafe FailsafeController, handler MessageHandler, registrar RegistrationProvider, telemetry TelemetryProvider, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sm, err := newConnectionFSM()
	if err != nil {
		return nil, fmt.Errorf("building connection fsm: %w", err)
	}
	return &Client{
		cfg:       cfg,
		hw:        hw,
		failsafe:  failsafe,
		handler:   handler,
		registrar: registrar,
		telemetry: telemetry,
		logger:    logger,
		fsm:       sm,
	}, nil
}

// CurrentState reports the connection state for diagnostics/telemetry.
func (c *Client) CurrentState() string { return c.fsm.CurrentState() }

func (c *Client) Name() string { return "wsclient" }

// Run drives the connection lifecycle until ctx is cancelled, then returns
// ctx.Err(); it returns early only with ErrMaxReconnectsExceeded (or an FSM
// error on the first transition). Reconnect attempts loop internally.
func (c *Client) Run(ctx context.Context) error {
	if err := c.fsm.Fire(ctx, triggerRun); err != nil {
		return err
	}

	attempt := 0
	for {
		if ctx.Err() != nil {
			_ = c.fsm.Fire(context.Background(), triggerStop)
			return ctx.Err()
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Warn("hub handshake failed", "error", err)
			_ = c.fsm.Fire(ctx, triggerHandshakeFail)
			c.failsafe.SetOnline(false)

			attempt++
			if c.cfg.MaxReconnects >= 0 && attempt > c.cfg.MaxReconnects {
				return fmt.Errorf("%w: after %d attempts", ErrMaxReconnectsExceeded, attempt)
			}
			if !c.waitBackoff(ctx, attempt-1) {
				_ = c.fsm.Fire(context.Background(), triggerStop)
				return ctx.Err()
			}
			_ = c.fsm.Fire(ctx, triggerBackoffElapsed)
			continue
		}

		_ = c.fsm.Fire(ctx, triggerHandshakeOK)
		attempt = 0
		c.hw.InvalidateCache(ctx)
		c.failsafe.SetOnline(true)
		c.touchActivity()

		c.conn = conn
		c.installControlHandlers(conn)

		var runErr error
		if err := c.sendRegistration(ctx); err != nil {
			c.logger.Warn("sending registration frame failed", "error", err)
		} else {
			runErr = c.runOnline(ctx)
			if runErr != nil {
				c.logger.Info("hub connection lost", "error", runErr)
			}
		}

		_ = conn.Close()
		c.failsafe.SetOnline(false)

		if ctx.Err() != nil {
			_ = c.fsm.Fire(context.Background(), triggerStop)
			return ctx.Err()
		}

		if errors.Is(runErr, ErrActivityTimeout) {
			_ = c.fsm.Fire(ctx, triggerIdleTimeout)
		} else {
			_ = c.fsm.Fire(ctx, triggerServerClose)
		}
		attempt++
		if !c.waitBackoff(ctx, attempt-1) {
			_ = c.fsm.Fire(context.Background(), triggerStop)
			return ctx.Err()
		}
		_ = c.fsm.Fire(ctx, triggerBackoffElapsed)
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDialFailed, err)
	}
	return conn, nil
}

func (c *Client) installControlHandlers(conn *websocket.Conn) {
	conn.SetPingHandler(func(appData string) error {
		c.touchActivity()
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		if _, ok := err.(net.Error); ok {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(string) error {
		c.touchActivity()
		return nil
	})
}

func (c *Client) touchActivity() {
	c.activityMu.Lock()
	c.lastActive = time.Now()
	c.activityMu.Unlock()
}

func (c *Client) idleFor() time.Duration {
	c.activityMu.Lock()
	defer c.activityMu.Unlock()
	return time.Since(c.lastActive)
}

func (c *Client) sendRegistration(ctx context.Context) error {
	reg, err := c.registrar.Register(ctx)
	if err != nil {
		return fmt.Errorf("building registration: %w", err)
	}
	reg.Type = "register"
	return c.writeJSON(reg)
}

// writeJSON marshals v and writes it under the write mutex: the send
// path for registration and telemetry frames. Command responses are
// written under the same mutex in receiveLoop; pongs go out through
// WriteControl in the ping handler.
func (c *Client) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeFrame, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFrame, err)
	}
	return nil
}

// runOnline runs the receiver loop and telemetry task concurrently
// until either exits.
func (c *Client) runOnline(ctx context.Context) error {
	onlineCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	return nursery.RunConcurrentlyWithContext(onlineCtx,
		func(ctx context.Context, errCh chan error) {
			if err := c.receiveLoop(ctx); err != nil {
				errCh <- err
			}
		},
		func(ctx context.Context, errCh chan error) {
			if err := c.telemetryLoop(ctx); err != nil {
				errCh <- err
			}
		},
	)
}

// receiveLoop polls with a 1-second read timeout so it can also service
// the stop signal and the 30-second activity-timeout check.
func (c *Client) receiveLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.idleFor() >= idleTimeout {
			return ErrActivityTimeout
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(readPollInterval))
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrServerClosed
			}
			return fmt.Errorf("%w: %w", ErrReadFrame, err)
		}

		c.touchActivity()
		_ = c.fsm.Fire(ctx, triggerActivity)

		resp, hasResp := c.handler.HandleMessage(ctx, raw)
		if hasResp {
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			writeErr := c.conn.WriteMessage(websocket.TextMessage, resp)
			c.writeMu.Unlock()
			if writeErr != nil {
				return fmt.Errorf("%w: %w", ErrWriteFrame, writeErr)
			}
		}
	}
}

// telemetryLoop sends one data frame every update interval; any write
// failure exits the task, and the receiver loop observes the closed
// stream.
func (c *Client) telemetryLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.telemetry.UpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ticker.Reset(c.telemetry.UpdateInterval())
			snap, err := c.telemetry.Snapshot(ctx)
			if err != nil {
				c.logger.Warn("telemetry snapshot failed", "error", err)
				continue
			}
			snap.Type = "data"
			if err := c.writeJSON(snap); err != nil {
				return err
			}
		}
	}
}

// waitBackoff sleeps the backoff duration for the given (0-indexed)
// attempt. The failsafe controller runs its own continuous poll loop
// (internal/failsafe) independent of this wait — it is not driven from
// here — so disconnection-time emergency checks keep happening on
// schedule regardless of where in the backoff sequence the client
// sits. It returns false if ctx is cancelled before the wait elapses.
func (c *Client) waitBackoff(ctx context.Context, attempt int) bool {
	d := backoffDuration(attempt, c.cfg.ReconnectInterval)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
