// SPDX-License-Identifier: BSD-3-Clause

package selfupdate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	artifactSize int
	versionErr   error
	downloadErr  error
	gotURL       string
}

func (f *fakeDownloader) Download(ctx context.Context, url, destPath string) error {
	f.gotURL = url
	if f.downloadErr != nil {
		return f.downloadErr
	}
	size := f.artifactSize
	if size == 0 {
		size = minArtifactSize
	}
	return os.WriteFile(destPath, make([]byte, size), 0o644)
}

func (f *fakeDownloader) CheckVersion(ctx context.Context, binaryPath string) error {
	return f.versionErr
}

type fakeRestarter struct {
	reexecCalls  int
	serviceCalls int
	spawnCalls   int
	exitCalls    int
	reexecErr    error
	serviceErr   error
	spawnErr     error
}

func (f *fakeRestarter) Reexec(path string, args, env []string) error {
	f.reexecCalls++
	return f.reexecErr
}

func (f *fakeRestarter) RestartViaServiceManager(ctx context.Context, serviceName string) error {
	f.serviceCalls++
	return f.serviceErr
}

func (f *fakeRestarter) Spawn(path string, args []string) error {
	f.spawnCalls++
	return f.spawnErr
}

func (f *fakeRestarter) Exit(code int) {
	f.exitCalls++
}

func newTestManager(t *testing.T, dl *fakeDownloader, restarter *fakeRestarter) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	binPath := filepath.Join(dir, "pankha")
	require.NoError(t, os.WriteFile(binPath, []byte("running-binary"), 0o755))

	m := New(binPath, "1.0.0", func() string { return "ws://hub.example:8080/ws/agent" }, "", restarter, nil)
	m.dl = dl
	return m, binPath
}

func TestApplyUpdate_HappyPath(t *testing.T) {
	dl := &fakeDownloader{}
	restarter := &fakeRestarter{}
	m, binPath := newTestManager(t, dl, restarter)

	require.NoError(t, m.ApplyUpdate(context.Background(), "1.1.0"))

	require.True(t, strings.HasPrefix(dl.gotURL, "http://hub.example:8080/api/deploy/binaries/"))

	data, err := os.ReadFile(binPath)
	require.NoError(t, err)
	require.Len(t, data, minArtifactSize)

	oldData, err := os.ReadFile(binPath + ".old")
	require.NoError(t, err)
	require.Equal(t, "running-binary", string(oldData))

	marker, err := readMarker(markerPath(filepath.Dir(binPath)))
	require.NoError(t, err)
	require.Equal(t, "1.0.0", marker.From)
	require.Equal(t, "1.1.0", marker.To)

	require.Equal(t, 1, restarter.reexecCalls)
}

func TestApplyUpdate_RejectsTooSmallArtifact(t *testing.T) {
	dl := &fakeDownloader{artifactSize: 100}
	restarter := &fakeRestarter{}
	m, binPath := newTestManager(t, dl, restarter)

	err := m.ApplyUpdate(context.Background(), "1.1.0")
	require.ErrorIs(t, err, ErrArtifactTooSmall)

	data, readErr := os.ReadFile(binPath)
	require.NoError(t, readErr)
	require.Equal(t, "running-binary", string(data))
}

func TestApplyUpdate_RejectsFailedVersionCheck(t *testing.T) {
	dl := &fakeDownloader{versionErr: errTestVersionCheck}
	restarter := &fakeRestarter{}
	m, binPath := newTestManager(t, dl, restarter)

	err := m.ApplyUpdate(context.Background(), "1.1.0")
	require.ErrorIs(t, err, ErrArtifactFailedVersionCheck)

	data, readErr := os.ReadFile(binPath)
	require.NoError(t, readErr)
	require.Equal(t, "running-binary", string(data))
}

func TestApplyUpdate_ReexecFailureFallsBackToSpawn(t *testing.T) {
	dl := &fakeDownloader{}
	restarter := &fakeRestarter{reexecErr: errTestReexec}
	m, _ := newTestManager(t, dl, restarter)

	require.NoError(t, m.ApplyUpdate(context.Background(), "1.1.0"))
	require.Equal(t, 1, restarter.reexecCalls)
	require.Zero(t, restarter.serviceCalls)
	require.Equal(t, 1, restarter.spawnCalls)
	require.Equal(t, 1, restarter.exitCalls)
}

var errTestVersionCheck = &testSentinelError{"version check failed"}
var errTestReexec = &testSentinelError{"reexec failed"}

type testSentinelError struct{ msg string }

func (e *testSentinelError) Error() string { return e.msg }
