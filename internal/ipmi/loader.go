// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadProfile reads the profile at path, resolving a single level of
// `extends` against the document's own directory and validating the
// safety invariants. The base file is named by `extends` with ".json"
// appended, relative to path's directory. The loader performs no hardware operations; failure here
// must happen before anything talks to a BMC.
func LoadProfile(path string) (*Profile, error) {
	raw, err := readJSONMap(path)
	if err != nil {
		return nil, err
	}

	if extendsRaw, ok := raw["extends"]; ok {
		extendsName, _ := extendsRaw.(string)
		if extendsName != "" {
			basePath := filepath.Join(filepath.Dir(path), extendsName+".json")
			base, err := readJSONMap(basePath)
			if err != nil {
				return nil, err
			}
			raw = deepMerge(base, raw)
		}
	}

	merged, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileParse, err)
	}

	var profile Profile
	if err := json.Unmarshal(merged, &profile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileParse, err)
	}

	if err := validateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func readJSONMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProfileRead, path, err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProfileParse, path, err)
	}
	return m, nil
}

// validateProfile enforces the two hard invariants the loader guarantees
// to every caller: an IPMI protocol section exists, and reset_to_factory
// can always return a BMC to a safe state even if a critical command is
// the only thing that runs.
func validateProfile(p *Profile) error {
	if p.Protocols.IPMI == nil {
		return ErrProfileMissingIPMI
	}

	hasCritical := false
	for _, cmd := range p.Protocols.IPMI.Lifecycle.ResetToFactory {
		if cmd.Critical {
			hasCritical = true
			break
		}
	}
	if !hasCritical {
		return ErrProfileUnsafeReset
	}

	return nil
}
