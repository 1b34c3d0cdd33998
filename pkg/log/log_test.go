// SPDX-License-Identifier: BSD-3-Clause

package log_test

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/pkg/log"
)

func TestParseLevelFoldsCriticalToError(t *testing.T) {
	require.Equal(t, slog.LevelError, log.ParseLevel("CRITICAL"))
	require.Equal(t, slog.LevelError, log.ParseLevel("ERROR"))
	require.Equal(t, slog.LevelDebug, log.ParseLevel("TRACE"))
	require.Equal(t, slog.LevelDebug, log.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, log.ParseLevel("WARN"))
	require.Equal(t, slog.LevelInfo, log.ParseLevel("INFO"))
	require.Equal(t, slog.LevelInfo, log.ParseLevel("unknown"))
}

func TestNewWithFileSink(t *testing.T) {
	dir := t.TempDir()
	l := log.New(log.Config{
		Level: slog.LevelInfo,
		File: log.FileSink{
			Enabled:    true,
			Path:       filepath.Join(dir, "pankha.log"),
			MaxSizeMB:  1,
			MaxAgeDays: 1,
		},
	})
	require.NotNil(t, l)
	l.Info("hello")
}
