// SPDX-License-Identifier: BSD-3-Clause

package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/pkg/file"
)

func TestAtomicCreateFileRejectsExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")

	require.NoError(t, file.AtomicCreateFile(target, []byte(`{"a":1}`), 0o644))
	require.ErrorIs(t, file.AtomicCreateFile(target, []byte(`{"a":2}`), 0o644), file.ErrFileAlreadyExists)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(got))
}

func TestAtomicUpdateFileOverwritesContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")

	require.NoError(t, file.AtomicUpdateFile(target, []byte("v1"), 0o644))
	require.NoError(t, file.AtomicUpdateFile(target, []byte("v2"), 0o644))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
}
