// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon provides low-level, context-aware primitives for reading
// and writing the kernel hardware-monitoring sysfs tree
// (/sys/class/hwmon/hwmon<N>/...). It knows nothing about sensors, fans,
// or discovery policy — that lives in internal/hardware/sysfs, which is
// built entirely on top of these primitives.
package hwmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
)

// DefaultHwmonPath is the default path to hwmon devices in sysfs.
const DefaultHwmonPath = "/sys/class/hwmon"

// ReadInt reads an integer value from the specified hwmon file path.
func ReadInt(ctx context.Context, path string) (int, error) {
	s, err := ReadString(ctx, path)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse integer from %s: %w", ErrInvalidValue, path, err)
	}
	return value, nil
}

// WriteInt writes an integer value to the specified hwmon file path.
func WriteInt(ctx context.Context, path string, value int) error {
	return WriteString(ctx, path, strconv.Itoa(value))
}

// ReadString reads a string value from the specified hwmon file path, with
// leading/trailing whitespace trimmed.
func ReadString(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			done <- result{"", mapFileError(err, path)}
			return
		}
		done <- result{strings.TrimSpace(string(data)), nil}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// WriteString writes a string value to the specified hwmon file path.
func WriteString(ctx context.Context, path, value string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	done := make(chan error, 1)

	go func() {
		done <- mapFileError(os.WriteFile(path, []byte(value), 0o600), path)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// CountEntries returns the number of entries directly under dir; files and
// symlinks are counted alongside directories. It is
// used as the hot-plug signal for sensor discovery: an unchanged count lets
// the caller trust its discovery cache, a changed count does not.
func CountEntries(ctx context.Context, dir string) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	go func() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			done <- result{0, mapFileError(err, dir)}
			return
		}
		done <- result{len(entries), nil}
	}()

	select {
	case r := <-done:
		return r.n, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// ListChipDirs returns the hwmon<N> device directories directly under
// hwmonPath.
func ListChipDirs(ctx context.Context, hwmonPath string) ([]string, error) {
	if hwmonPath == "" {
		return nil, fmt.Errorf("%w: hwmon path cannot be empty", ErrInvalidPath)
	}

	type result struct {
		dirs []string
		err  error
	}
	done := make(chan result, 1)
	pattern := regexp.MustCompile(`^hwmon\d+$`)

	go func() {
		entries, err := os.ReadDir(hwmonPath)
		if err != nil {
			done <- result{nil, mapFileError(err, hwmonPath)}
			return
		}

		var dirs []string
		for _, entry := range entries {
			if pattern.MatchString(entry.Name()) {
				dirs = append(dirs, filepath.Join(hwmonPath, entry.Name()))
			}
		}
		done <- result{dirs, nil}
	}()

	select {
	case r := <-done:
		return r.dirs, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// Glob matches files within a chip directory, e.g. Glob(dir, "temp*_input").
func Glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %w", ErrInvalidValue, pattern, err)
	}
	return matches, nil
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsWritable reports whether path can be opened for writing.
func IsWritable(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// mapFileError maps OS file errors to hwmon package errors.
func mapFileError(err error, path string) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	var pe *os.PathError
	if errors.As(err, &pe) {
		var errno syscall.Errno
		if errors.As(pe.Err, &errno) && errno == syscall.EINVAL {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, path, err)
		}
		switch pe.Op {
		case "read":
			return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
		case "write", "open":
			return fmt.Errorf("%w: %s: %w", ErrWriteFailure, path, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
}
