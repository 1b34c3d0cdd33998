// SPDX-License-Identifier: BSD-3-Clause

package process

import "context"

// Stub is a no-op Runner, useful for disabling a subsystem (e.g. the IPMI
// profile watcher when no profile was loaded) without special-casing the
// supervisor loop that runs it.
type Stub struct {
	name string
}

func (s *Stub) Name() string { return s.name }

func (s *Stub) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// NewStub creates a no-op Runner identified by name.
func NewStub(name string) *Stub {
	return &Stub{name: name}
}
