// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

// Command pankha is the hardware-monitoring and fan-control agent.
// Its central subcommand is daemon-child, spawned internally by
// "start": it wires every internal/ package into one running process.
// The operator-facing surface around it (setup, service install,
// status, logs) lives in separate tooling; the stubs here only name
// the contract.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Anexgohan/pankha/internal/buildinfo"
	"github.com/Anexgohan/pankha/internal/config"
	"github.com/Anexgohan/pankha/internal/daemon"
	"github.com/Anexgohan/pankha/internal/dispatcher"
	"github.com/Anexgohan/pankha/internal/failsafe"
	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/internal/hardware/sysfs"
	"github.com/Anexgohan/pankha/internal/ipmi"
	"github.com/Anexgohan/pankha/internal/selfupdate"
	"github.com/Anexgohan/pankha/internal/telemetry"
	"github.com/Anexgohan/pankha/internal/wsclient"
	"github.com/Anexgohan/pankha/pkg/id"
	pkglog "github.com/Anexgohan/pankha/pkg/log"
	"github.com/Anexgohan/pankha/pkg/process"
)

const agentName = "pankha"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var profilePath string
	var logLevelFlag string

	root := &cobra.Command{
		Use:     agentName,
		Short:   "Hardware monitoring and fan-control agent",
		Version: buildinfo.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logLevelFlag != "" {
				return routeLogLevel(workingDir(), logLevelFlag)
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&profilePath, "profile", "", "IPMI profile path (default profile.json beside the binary)")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "update the running daemon's log level without a subcommand")

	root.AddCommand(
		newDaemonChildCmd(&profilePath),
		newSetupCmd(),
		newInstallCmd(),
		newUninstallCmd(),
		newStartCmd(&profilePath),
		newStopCmd(),
		newRestartCmd(&profilePath),
		newStatusCmd(),
		newHealthCheckCmd(),
		newShowConfigCmd(),
		newShowLogsCmd(),
		newTestModeCmd(&profilePath),
	)
	return root
}

// workingDir is the directory every relative, per-install artifact
// (config.json, hardware-info.json, agent-id, the update marker and its
// .old/.new siblings) lives beside: the running binary's own directory.
func workingDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// routeLogLevel handles --log-level given without a subcommand: update
// the on-disk config, then signal the running daemon to reload it.
func routeLogLevel(dir, level string) error {
	store, err := config.Load(filepath.Join(dir, "config.json"), nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := store.SetLogLevel(level); err != nil {
		return fmt.Errorf("rejecting log level: %w", err)
	}

	pid, err := daemon.NewPIDFile(pidFilePath()).ReadPID()
	if err != nil {
		return fmt.Errorf("locating running daemon: %w", err)
	}
	return daemon.SignalReload(pid)
}

func pidFilePath() string {
	return filepath.Join("/run", agentName, agentName+".pid")
}

func logDir() string {
	return filepath.Join("/var/log", agentName)
}

// newDaemonChildCmd builds the internal subcommand "start" spawns: the
// supervised process that does the agent's actual work.
func newDaemonChildCmd(profilePath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:    "daemon-child",
		Short:  "Internal: run the agent (spawned by start)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonChild(cmd.Context(), *profilePath, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log IPMI writes instead of executing them")
	return cmd
}

func runDaemonChild(ctx context.Context, profilePath string, dryRun bool) error {
	startedAt := time.Now()
	dir := workingDir()
	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own binary path: %w", err)
	}

	restarter := selfupdate.SystemRestarter{}
	if err := selfupdate.VerifyOnStartup(dir, binaryPath, restarter, slog.Default()); err != nil {
		return fmt.Errorf("update verification: %w", err)
	}

	pidFile := daemon.NewPIDFile(pidFilePath())
	if err := pidFile.CheckStale(); err != nil {
		return fmt.Errorf("checking for a running instance: %w", err)
	}
	if err := pidFile.Write(); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	defer pidFile.RemoveIfOwned() //nolint:errcheck

	store, err := config.Load(filepath.Join(dir, "config.json"), nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := store.Get()

	logLevel := pkglog.ParseLevel(resolveLogLevel(cfg.Agent.LogLevel))
	logger := pkglog.New(pkglog.Config{
		Level: logLevel,
		File: pkglog.FileSink{
			Enabled:    cfg.Logging.FileEnabled,
			Path:       logFilePath(cfg),
			MaxSizeMB:  cfg.Logging.RotationSizeMB,
			MaxAgeDays: cfg.Logging.RetentionDays,
		},
	})
	slog.SetDefault(logger)

	agentID, err := id.GetOrCreatePersistentID("agent-id", dir)
	if err != nil {
		return fmt.Errorf("resolving persistent agent id: %w", err)
	}

	fanControl := func() bool { return store.Get().Hardware.FanControlEnabled }
	hw, activeProfile, err := selectBackend(profilePath, dryRun, fanControl, startedAt, logger)
	if err != nil {
		return fmt.Errorf("selecting hardware backend: %w", err)
	}

	dumpWriter := telemetry.NewDumpWriter(hw, filepath.Join(dir, "hardware-info.json"))
	if _, err := dumpWriter.Refresh(ctx); err != nil {
		logger.Error("initial diagnostic dump failed", "error", err)
	}

	provider := telemetry.New(agentID, startedAt, hw, store)
	failsafeCtrl := failsafe.New(hw, provider, logger)

	confirmer := selfupdate.NewConfirmSuccess(dir, binaryPath, logger)
	updater := selfupdate.New(binaryPath, buildinfo.Version, func() string { return store.Get().Backend.ServerURL }, managedServiceName(), restarter, logger)

	disp := dispatcher.New(hw, store, updater, confirmer, dumpWriter, logger)

	wsCfg := wsclient.Config{
		URL:               cfg.Backend.ServerURL,
		ConnectTimeout:    time.Duration(cfg.Backend.ConnectTimeout) * time.Second,
		ReconnectInterval: time.Duration(cfg.Backend.ReconnectInterval) * time.Second,
		MaxReconnects:     cfg.Backend.MaxReconnects,
	}
	client, err := wsclient.New(wsCfg, hw, failsafeCtrl, disp, provider, provider, logger)
	if err != nil {
		return fmt.Errorf("building hub client: %w", err)
	}

	reload := func() error {
		fresh, err := config.Load(filepath.Join(dir, "config.json"), logger)
		if err != nil {
			return err
		}
		// Re-read the whole file but apply only the log level; other
		// fields keep their in-memory values until restart.
		pkglog.SetLevel(pkglog.ParseLevel(fresh.Get().Agent.LogLevel))
		return nil
	}

	watcher := config.NewWatcher(filepath.Join(dir, "config.json"), logger)
	profileWatcher := process.Runner(process.NewStub("profile-watcher"))
	if activeProfile != "" {
		profileWatcher = config.NewWatcher(activeProfile, logger)
	}
	supervisor := daemon.New(logger, reload, client, failsafeCtrl, watcher, profileWatcher)
	return supervisor.Run(ctx)
}

func resolveLogLevel(configured string) string {
	if configured != "" {
		return configured
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return env
	}
	return "INFO"
}

func logFilePath(cfg config.Config) string {
	if cfg.Logging.FilePath != "" && filepath.IsAbs(cfg.Logging.FilePath) {
		return cfg.Logging.FilePath
	}
	return filepath.Join(logDir(), agentName+".log")
}

// managedServiceName reports the systemd unit name this process runs
// under, or empty when run manually. A proper implementation belongs to
// the out-of-scope service-install collaborator; detecting
// it via the parent process is outside this core agent's contract, so
// manual/exec-replace is the conservative default.
func managedServiceName() string {
	return ""
}

// selectBackend picks the active hardware backend: sysfs when no
// profile is selected, IPMI when one is (either via --profile or the
// default profile.json beside the binary). fanControl gates both
// backends' write paths; nil means always permitted. The second return
// is the profile path driving the IPMI backend, empty for sysfs.
func selectBackend(profilePath string, dryRun bool, fanControl func() bool, startedAt time.Time, logger *slog.Logger) (hardware.Backend, string, error) {
	path := profilePath
	if path == "" {
		path = filepath.Join(workingDir(), "profile.json")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && profilePath == "" {
		return sysfs.New("", fanControl, startedAt, logger), "", nil
	}

	profile, err := ipmi.LoadProfile(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading IPMI profile: %w", err)
	}
	executor := ipmi.NewExecutor(dryRun)
	return ipmi.New(profile, executor, fanControl, startedAt, logger), path, nil
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-run configuration wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("setup wizard is an operator-facing collaborator, not part of the core agent")
		},
	}
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the systemd service unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("service installation is an operator-facing collaborator, not part of the core agent")
		},
	}
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the systemd service unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("service removal is an operator-facing collaborator, not part of the core agent")
		},
	}
}

func newStartCmd(profilePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the agent as a background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := startDaemon(*profilePath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "daemon started")
			return nil
		},
	}
}

// startDaemon spawns daemon-child detached in its own session so the
// agent outlives the invoking terminal.
func startDaemon(profilePath string) error {
	if err := daemon.NewPIDFile(pidFilePath()).CheckStale(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own binary path: %w", err)
	}

	childArgs := []string{"daemon-child"}
	if profilePath != "" {
		childArgs = append(childArgs, "--profile", profilePath)
	}

	child := exec.Command(exe, childArgs...)
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil
	if err := child.Start(); err != nil {
		return fmt.Errorf("spawning daemon child: %w", err)
	}
	return child.Process.Release()
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := daemon.NewPIDFile(pidFilePath()).ReadPID()
			if err != nil {
				return fmt.Errorf("locating running daemon: %w", err)
			}
			return daemon.StopProcess(pid, 10*time.Second)
		},
	}
}

func newRestartCmd(profilePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pid, err := daemon.NewPIDFile(pidFilePath()).ReadPID(); err == nil {
				if err := daemon.StopProcess(pid, 10*time.Second); err != nil {
					return fmt.Errorf("stopping running daemon: %w", err)
				}
			}
			if err := startDaemon(*profilePath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "daemon restarted")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("status reporting is an operator-facing collaborator, not part of the core agent")
		},
	}
}

func newHealthCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health-check",
		Short: "Run a one-shot health probe and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("health-check reporting is an operator-facing collaborator, not part of the core agent")
		},
	}
}

func newShowConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(filepath.Join(workingDir(), "config.json"), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", store.Get())
			return nil
		},
	}
}

func newShowLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-logs",
		Short: "Show the agent's logs (follow or last-N)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("log tailing/formatting is an operator-facing collaborator, not part of the core agent")
		},
	}
}

// newTestModeCmd implements the one "out of scope" surface item that
// has an unambiguous, fully-specifiable contract: discover hardware
// once against the selected backend and print it, then exit.
func newTestModeCmd(profilePath *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "test-mode",
		Short: "Discover hardware once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			hw, _, err := selectBackend(*profilePath, dryRun, nil, time.Now(), slog.Default())
			if err != nil {
				return err
			}
			diag, err := hw.DumpHardwareInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", diag)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "log IPMI writes instead of executing them")
	return cmd
}
