// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package selfupdate

import (
	"context"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// SystemRestarter is the production Restarter: systemctl for
// service-managed restarts, unix.Exec for in-place process
// replacement.
type SystemRestarter struct{}

func (SystemRestarter) RestartViaServiceManager(ctx context.Context, serviceName string) error {
	cmd := exec.CommandContext(ctx, "systemctl", "restart", serviceName)
	return cmd.Start()
}

func (SystemRestarter) Spawn(path string, args []string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func (SystemRestarter) Reexec(path string, args []string, env []string) error {
	return unix.Exec(path, args, env)
}

func (SystemRestarter) Exit(code int) {
	os.Exit(code)
}
