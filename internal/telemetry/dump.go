// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/pkg/file"
)

// DumpWriter persists the diagnostic tree to hardware-info.json beside
// the binary. It is produced on process start and again
// on every getDiagnostics command.
type DumpWriter struct {
	hw   hardware.Backend
	path string
}

// NewDumpWriter builds a DumpWriter targeting path (conventionally
// "hardware-info.json" beside the binary).
func NewDumpWriter(hw hardware.Backend, path string) *DumpWriter {
	return &DumpWriter{hw: hw, path: path}
}

// Refresh re-runs discovery and overwrites the dump file, returning the
// tree it wrote so callers (dispatcher's getDiagnostics) can embed it in
// a response without reading the file back.
func (d *DumpWriter) Refresh(ctx context.Context) (hardware.Diagnostics, error) {
	diag, err := d.hw.DumpHardwareInfo(ctx)
	if err != nil {
		return hardware.Diagnostics{}, fmt.Errorf("building diagnostic dump: %w", err)
	}

	data, err := json.MarshalIndent(diag, "", "  ")
	if err != nil {
		return diag, fmt.Errorf("encoding diagnostic dump: %w", err)
	}
	if err := file.AtomicUpdateFile(d.path, data, 0o644); err != nil {
		return diag, fmt.Errorf("writing diagnostic dump: %w", err)
	}
	return diag, nil
}
