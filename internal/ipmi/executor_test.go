// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportArgsFromEnvDefaultsToLocal(t *testing.T) {
	t.Setenv("PANKHA_IPMI_HOST", "")
	require.Equal(t, []string{"-I", "open"}, transportArgsFromEnv())
}

func TestTransportArgsFromEnvRoutesLanplusWhenHostSet(t *testing.T) {
	t.Setenv("PANKHA_IPMI_HOST", "10.0.0.5")
	t.Setenv("PANKHA_IPMI_PORT", "")
	t.Setenv("PANKHA_IPMI_USER", "")
	t.Setenv("PANKHA_IPMI_PASS", "")

	got := transportArgsFromEnv()
	require.Equal(t, []string{"-I", "lanplus", "-H", "10.0.0.5", "-p", "623", "-U", "admin", "-P", "password"}, got)
}

func TestTransportArgsFromEnvHonorsExplicitCredentials(t *testing.T) {
	t.Setenv("PANKHA_IPMI_HOST", "bmc.example.com")
	t.Setenv("PANKHA_IPMI_PORT", "6230")
	t.Setenv("PANKHA_IPMI_USER", "root")
	t.Setenv("PANKHA_IPMI_PASS", "secret")

	got := transportArgsFromEnv()
	require.Equal(t, []string{"-I", "lanplus", "-H", "bmc.example.com", "-p", "6230", "-U", "root", "-P", "secret"}, got)
}
