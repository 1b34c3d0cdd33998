// SPDX-License-Identifier: BSD-3-Clause

package selfupdate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Anexgohan/pankha/pkg/file"
)

const markerFileName = ".update_pending"

// marker is the only out-of-band update signal: its presence and
// booted key encode {no-update, first-boot-of-new, suspected-failure}.
type marker struct {
	From   string
	To     string
	Booted bool
}

func markerPath(dir string) string {
	return filepath.Join(dir, markerFileName)
}

// readMarker returns (nil, nil) if no marker file exists: that is the
// common "no update pending" case, not an error.
func readMarker(path string) (*marker, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarkerIO, err)
	}

	m := &marker{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "from":
			m.From = value
		case "to":
			m.To = value
		case "booted":
			m.Booted = value == "true"
		}
	}
	return m, nil
}

func writeMarker(path string, m marker) error {
	var b strings.Builder
	fmt.Fprintf(&b, "from=%s\n", m.From)
	fmt.Fprintf(&b, "to=%s\n", m.To)
	if m.Booted {
		b.WriteString("booted=true\n")
	}

	if _, err := os.Stat(path); err == nil {
		if err := file.AtomicUpdateFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("%w: %w", ErrMarkerIO, err)
		}
		return nil
	}
	if err := file.AtomicCreateFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrMarkerIO, err)
	}
	return nil
}

func removeMarker(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrMarkerIO, err)
	}
	return nil
}
