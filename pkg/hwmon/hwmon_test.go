// SPDX-License-Identifier: BSD-3-Clause

package hwmon_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/pkg/hwmon"
)

func TestReadWriteInt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "pwm1")

	require.NoError(t, hwmon.WriteInt(ctx, path, 128))

	got, err := hwmon.ReadInt(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 128, got)
}

func TestReadStringTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "name")
	require.NoError(t, os.WriteFile(path, []byte("nct6775\n"), 0o600))

	got, err := hwmon.ReadString(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "nct6775", got)
}

func TestReadIntMissingFile(t *testing.T) {
	ctx := context.Background()
	_, err := hwmon.ReadInt(ctx, filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, hwmon.ErrFileNotFound)
}

func TestCountEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hwmon0"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hwmon1"), 0o755))

	n, err := hwmon.CountEntries(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestListChipDirsFiltersPattern(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hwmon0"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "not-a-chip"), 0o755))

	dirs, err := hwmon.ListChipDirs(ctx, dir)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	require.Equal(t, filepath.Join(dir, "hwmon0"), dirs[0])
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp1_input"), []byte("40000"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp2_input"), []byte("41000"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fan1_input"), []byte("1200"), 0o600))

	matches, err := hwmon.Glob(dir, "temp*_input")
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
