// SPDX-License-Identifier: BSD-3-Clause

package selfupdate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarker_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update_pending")

	require.NoError(t, writeMarker(path, marker{From: "1.0.0", To: "1.1.0"}))

	m, err := readMarker(path)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "1.0.0", m.From)
	require.Equal(t, "1.1.0", m.To)
	require.False(t, m.Booted)

	m.Booted = true
	require.NoError(t, writeMarker(path, *m))

	m2, err := readMarker(path)
	require.NoError(t, err)
	require.True(t, m2.Booted)
}

func TestMarker_MissingFileIsNilNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".update_pending")
	m, err := readMarker(path)
	require.NoError(t, err)
	require.Nil(t, m)
}
