// SPDX-License-Identifier: BSD-3-Clause

package id_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/pkg/id"
)

func TestNewIDIsValidUUID(t *testing.T) {
	_, err := uuid.Parse(id.NewID())
	require.NoError(t, err)
}

func TestGetOrCreatePersistentIDIsStable(t *testing.T) {
	dir := t.TempDir()

	first, err := id.GetOrCreatePersistentID("agent.uuid", dir)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := id.GetOrCreatePersistentID("agent.uuid", dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpdatePersistentIDRotates(t *testing.T) {
	dir := t.TempDir()

	first, err := id.GetOrCreatePersistentID("agent.uuid", dir)
	require.NoError(t, err)

	second, err := id.UpdatePersistentID("agent.uuid", dir)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	third, err := id.GetOrCreatePersistentID("agent.uuid", dir)
	require.NoError(t, err)
	require.Equal(t, second, third)
}
