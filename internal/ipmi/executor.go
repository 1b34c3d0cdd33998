// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Executor spawns the ipmitool binary with transport flags selected once
// at construction from PANKHA_IPMI_HOST/PORT/USER/PASS:
// a host present routes via LAN+ to a remote BMC (or an emulator, for
// testing); absent, it talks to the local /dev/ipmi0 interface.
type Executor struct {
	transportArgs []string
	dryRun        bool
}

// NewExecutor builds an Executor from the environment. dryRun mirrors a
// `--dry-run` CLI flag: writes (raw commands) are logged by the caller
// instead of executed, but reads always run.
func NewExecutor(dryRun bool) *Executor {
	return &Executor{
		transportArgs: transportArgsFromEnv(),
		dryRun:        dryRun,
	}
}

func transportArgsFromEnv() []string {
	host := os.Getenv("PANKHA_IPMI_HOST")
	if host == "" {
		return []string{"-I", "open"}
	}

	port := os.Getenv("PANKHA_IPMI_PORT")
	if port == "" {
		port = "623"
	}
	user := os.Getenv("PANKHA_IPMI_USER")
	if user == "" {
		user = "admin"
	}
	pass := os.Getenv("PANKHA_IPMI_PASS")
	if pass == "" {
		pass = "password"
	}

	return []string{"-I", "lanplus", "-H", host, "-p", port, "-U", user, "-P", pass}
}

// DryRun reports whether writes should be logged instead of executed.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

func (e *Executor) run(ctx context.Context, args ...string) (string, error) {
	full := append(append([]string{}, e.transportArgs...), args...)
	cmd := exec.CommandContext(ctx, "ipmitool", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: ipmitool %s: %w: %s", ErrIpmitoolFailed, strings.Join(args, " "), err, stderr.String())
	}

	return stdout.String(), nil
}

// SDRCsv executes `ipmitool -c sdr list full`, returning raw CSV output.
func (e *Executor) SDRCsv(ctx context.Context) (string, error) {
	return e.run(ctx, "-c", "sdr", "list", "full")
}

// Raw executes `ipmitool raw <bytes>` for OEM fan/init/reset commands.
// bytes is whitespace-separated hex tokens (e.g. "0x30 0x30 0x01 0x00").
func (e *Executor) Raw(ctx context.Context, bytesArg string) (string, error) {
	args := append([]string{"raw"}, strings.Fields(bytesArg)...)
	return e.run(ctx, args...)
}

// MCInfo executes `ipmitool mc info` as a connectivity check.
func (e *Executor) MCInfo(ctx context.Context) (string, error) {
	return e.run(ctx, "mc", "info")
}

// FRU executes `ipmitool fru print` for hardware inventory.
func (e *Executor) FRU(ctx context.Context) (string, error) {
	return e.run(ctx, "fru", "print")
}
