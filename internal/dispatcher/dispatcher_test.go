// SPDX-License-Identifier: BSD-3-Clause

package dispatcher

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/internal/config"
	"github.com/Anexgohan/pankha/internal/hardware"
)

type fakeHardware struct {
	hardware.Backend
	setCalls     []setCall
	emergencyHit int
	diagnostics  hardware.Diagnostics
}

type setCall struct {
	fanID string
	speed int
}

func (f *fakeHardware) SetFanSpeed(ctx context.Context, fanID string, percent int) error {
	f.setCalls = append(f.setCalls, setCall{fanID, percent})
	return nil
}

func (f *fakeHardware) EmergencyStop(ctx context.Context) error {
	f.emergencyHit++
	return nil
}

func (f *fakeHardware) DumpHardwareInfo(ctx context.Context) (hardware.Diagnostics, error) {
	return f.diagnostics, nil
}

func newTestStore(t *testing.T) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := config.Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetEnableFanControl(true))
	return s
}

func command(cmdType, commandID string, payload any) []byte {
	data, _ := json.Marshal(payload)
	cmd := map[string]any{"type": cmdType, "commandId": commandID, "payload": json.RawMessage(data)}
	inner, _ := json.Marshal(cmd)
	env := map[string]any{"type": "command", "data": json.RawMessage(inner)}
	raw, _ := json.Marshal(env)
	return raw
}

func decodeResponse(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestHandleMessage_SetFanSpeed(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("setFanSpeed", "c1", map[string]any{"fanId": "fan1", "speed": 50}))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, "c1", m["commandId"])
	require.Equal(t, true, m["success"])
	require.Len(t, hw.setCalls, 1)
	require.Equal(t, "fan1", hw.setCalls[0].fanID)
	require.Equal(t, 50, hw.setCalls[0].speed)
}

func TestHandleMessage_SetFanSpeed_FanControlDisabled(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	require.NoError(t, store.SetEnableFanControl(false))
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("setFanSpeed", "c1", map[string]any{"fanId": "fan1", "speed": 50}))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, true, m["success"])
	require.Empty(t, hw.setCalls)
}

func TestHandleMessage_EmergencyStop(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	_, has := d.HandleMessage(context.Background(), command("emergencyStop", "c2", nil))
	require.True(t, has)
	require.Equal(t, 1, hw.emergencyHit)
}

func TestHandleMessage_UnknownCommand(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("doesNotExist", "c3", nil))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, false, m["success"])
	require.Contains(t, m["error"], "Unknown command: doesNotExist")
}

func TestHandleMessage_SetUpdateInterval_RejectsOutOfSet(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("setUpdateInterval", "c4", map[string]any{"interval": 99}))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, false, m["success"])
}

func TestHandleMessage_SetUpdateInterval_AcceptsSSTMember(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("setUpdateInterval", "c5", map[string]any{"interval": 5}))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, true, m["success"])
	require.InDelta(t, 5.0, store.Get().Agent.UpdateInterval, 0.001)
}

func TestHandleMessage_CommandMissingCommandID_NoResponse(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	data := []byte(`{"type":"setFanSpeed","payload":{"fanId":"fan1","speed":50}}`)
	env := []byte(`{"type":"command","data":` + string(data) + `}`)

	resp, has := d.HandleMessage(context.Background(), env)
	require.False(t, has)
	require.Nil(t, resp)
}

func TestHandleMessage_Ping(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), []byte(`{"type":"ping"}`))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, "pong", m["type"])
}

func TestHandleMessage_GetDiagnostics(t *testing.T) {
	hw := &fakeHardware{diagnostics: hardware.Diagnostics{}}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), command("getDiagnostics", "c6", nil))
	require.True(t, has)

	m := decodeResponse(t, resp)
	require.Equal(t, true, m["success"])
	require.Contains(t, m, "data")
}

type fakeVerifier struct{ calls int }

func (f *fakeVerifier) ConfirmSuccess() error {
	f.calls++
	return nil
}

func TestHandleMessage_Registered_AppliesConfigurationAndConfirmsUpdate(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	verifier := &fakeVerifier{}
	d := New(hw, store, nil, verifier, nil, nil)

	env := []byte(`{"type":"registered","configuration":{"fan_step_percent":25,"log_level":"WARN"}}`)
	resp, has := d.HandleMessage(context.Background(), env)

	require.False(t, has)
	require.Nil(t, resp)
	require.Equal(t, 25, store.Get().Hardware.FanStepPercent)
	require.Equal(t, "WARN", store.Get().Agent.LogLevel)
	require.Equal(t, 1, verifier.calls)
}

func TestHandleMessage_IgnoresUnrecognizedFrameType(t *testing.T) {
	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	resp, has := d.HandleMessage(context.Background(), []byte(`{"type":"something-else"}`))
	require.False(t, has)
	require.Nil(t, resp)
}

func TestHandleMessage_EveryCommandKindRoundTrips(t *testing.T) {
	cases := []struct {
		cmdType string
		payload any
	}{
		{"setFanSpeed", map[string]any{"fanId": "fan1", "speed": 50}},
		{"emergencyStop", nil},
		{"setUpdateInterval", map[string]any{"interval": 5}},
		{"setFanStep", map[string]any{"step": 10}},
		{"setHysteresis", map[string]any{"hysteresis": 2}},
		{"setEmergencyTemp", map[string]any{"temp": 85}},
		{"setFailsafeSpeed", map[string]any{"speed": 70}},
		{"setLogLevel", map[string]any{"level": "INFO"}},
		{"setEnableFanControl", map[string]any{"enabled": true}},
		{"setAgentName", map[string]any{"name": "rack-3"}},
		{"getDiagnostics", nil},
		{"selfUpdate", map[string]any{"version": "9.9.9"}},
		{"ping", nil},
	}

	hw := &fakeHardware{}
	store := newTestStore(t)
	d := New(hw, store, nil, nil, nil, nil)

	for _, tc := range cases {
		t.Run(tc.cmdType, func(t *testing.T) {
			id := "rt-" + tc.cmdType
			resp, has := d.HandleMessage(context.Background(), command(tc.cmdType, id, tc.payload))
			require.True(t, has)

			m := decodeResponse(t, resp)
			require.Equal(t, "commandResponse", m["type"])
			require.Equal(t, id, m["commandId"])
			success, ok := m["success"].(bool)
			require.True(t, ok)
			require.True(t, success)
			_, hasData := m["data"]
			_, hasErr := m["error"]
			require.True(t, hasData || hasErr || success)
		})
	}
}
