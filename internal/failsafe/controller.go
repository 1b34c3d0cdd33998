// SPDX-License-Identifier: BSD-3-Clause

// Package failsafe implements the agent-local fan policy activated when
// the hub is unreachable.
// It is deliberately not a curve: one static configured speed plus
// binary over-temperature escalation, because a curve would need
// sensor-to-fan mapping the hub owns.
package failsafe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Anexgohan/pankha/internal/hardware"
)

// ConfigProvider supplies the tunables the controller reads on every
// transition/poll, so config mutations take effect without restarting
// the controller.
type ConfigProvider interface {
	FailsafeSpeed() int
	EmergencyTemp() float64
	UpdateInterval() time.Duration
	// FanControlEnabled gates every hardware write the controller
	// makes: with fan control disabled, losing the hub must not drive
	// fans the operator told the agent to leave alone.
	FanControlEnabled() bool
}

// Controller tracks two boolean observables: hub-online (owned by
// wsclient, reported via SetOnline) and failsafe-active (owned by
// Controller itself).
type Controller struct {
	hw     hardware.Backend
	cfg    ConfigProvider
	logger *slog.Logger

	mu             sync.Mutex
	initialized    bool
	online         bool
	failsafeActive bool
}

// New builds a Controller. It starts uninitialized: the first SetOnline
// call, whatever its value, establishes the baseline.
func New(hw hardware.Backend, cfg ConfigProvider, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{hw: hw, cfg: cfg, logger: logger}
}

func (c *Controller) Name() string { return "failsafe" }

// IsFailsafeActive reports the controller's current mode, for telemetry
// and diagnostics.
func (c *Controller) IsFailsafeActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failsafeActive
}

// SetOnline is called by wsclient on every connection state change. A
// call that repeats the previous value is a no-op: exactly one
// broadcast happens per actual transition.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	prev := c.online
	wasInit := c.initialized
	transitionedOffline := !online && (!wasInit || prev)
	transitionedOnline := online && wasInit && !prev
	c.online = online
	c.initialized = true
	c.mu.Unlock()

	switch {
	case transitionedOffline:
		c.enterFailsafe()
	case transitionedOnline:
		c.exitFailsafe()
	}
}

// enterFailsafe drives every known fan to the configured failsafe
// speed. With fan control disabled, failsafe-active is still tracked
// (for the emergency poll and diagnostics) but no fan is written.
func (c *Controller) enterFailsafe() {
	c.mu.Lock()
	c.failsafeActive = true
	c.mu.Unlock()

	if !c.cfg.FanControlEnabled() {
		c.logger.Warn("hub offline but fan control is disabled, leaving fans alone")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fans, err := c.hw.DiscoverFans(ctx)
	if err != nil {
		c.logger.Error("failsafe: discovering fans failed", "error", err)
		return
	}

	speed := c.cfg.FailsafeSpeed()
	for _, fan := range fans {
		if err := c.hw.SetFanSpeed(ctx, fan.ID, speed); err != nil {
			c.logger.Error("failsafe: setting fan speed failed", "fan", fan.ID, "error", err)
		}
	}
	c.logger.Warn("entered failsafe mode", "speed_percent", speed, "fan_count", len(fans))
}

// exitFailsafe clears failsafe-active; the hub resumes driving fan
// speeds explicitly.
func (c *Controller) exitFailsafe() {
	c.mu.Lock()
	c.failsafeActive = false
	c.mu.Unlock()
	c.logger.Info("exited failsafe mode, hub online")
}

// Run polls for emergency escalation every update interval while
// failsafe-active: read all sensors, and if any temperature has reached
// the configured emergency threshold, invoke EmergencyStop.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ticker.Reset(c.pollInterval())
			if c.IsFailsafeActive() {
				c.checkEmergency(ctx)
			}
		}
	}
}

func (c *Controller) pollInterval() time.Duration {
	d := c.cfg.UpdateInterval()
	if d <= 0 {
		d = 3 * time.Second
	}
	return d
}

func (c *Controller) checkEmergency(ctx context.Context) {
	sensors, err := c.hw.DiscoverSensors(ctx)
	if err != nil {
		c.logger.Error("failsafe: discovering sensors failed", "error", err)
		return
	}

	threshold := c.cfg.EmergencyTemp()
	maxTemp := -1.0
	for _, s := range sensors {
		if s.Temperature > maxTemp {
			maxTemp = s.Temperature
		}
	}

	if maxTemp >= threshold {
		c.logger.Error("emergency temperature threshold crossed", "max_temp", maxTemp, "threshold", threshold)
		if !c.cfg.FanControlEnabled() {
			c.logger.Error("fan control is disabled, not issuing emergency stop")
			return
		}
		if err := c.hw.EmergencyStop(ctx); err != nil {
			c.logger.Error("emergency stop failed", "error", err)
		}
	}
}
