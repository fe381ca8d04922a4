package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"water_tank/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "app.db", cfg.DB.Path)
	assert.Equal(t, time.Second, cfg.Simulation.Tick)
	assert.Equal(t, engine.DefaultConfig(), cfg.EngineConfig())
	assert.Equal(t, engine.DefaultState(), cfg.InitialState())
	assert.True(t, cfg.Simulation.Autostart)
	assert.Empty(t, cfg.MQTT.Broker)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
node: roof
db:
  path: /tmp/tank.db
simulation:
  tick: 250ms
  initial_level: 50
  timezone: UTC
  night_start: 22
  night_end: 6
  peak_drain_rate: 0.1
  critical_threshold: 25
mqtt:
  broker: tcp://localhost:1883
`)
	t.Setenv("TANK_SIMULATION_TICK", "100ms")
	t.Setenv("TANK_SIMULATION_NIGHT_LIMIT", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "roof", cfg.Node)
	assert.Equal(t, "/tmp/tank.db", cfg.DB.Path)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.Tick)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)

	ec := cfg.EngineConfig()
	assert.Equal(t, engine.Window{Start: 22, End: 6}, ec.NightWindow)
	assert.Equal(t, 0.1, ec.PeakDrainRate)
	assert.Equal(t, engine.DefaultFillRate, ec.FillRate)

	st := cfg.InitialState()
	assert.Equal(t, 50.0, st.Level)
	assert.Equal(t, 25.0, st.CriticalThreshold)
	assert.False(t, st.NightLimitEnabled)
	assert.True(t, st.AutoCutoffEnabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"threshold out of range", "simulation:\n  critical_threshold: 45\n", engine.ErrInvalidConfig},
		{"fill below drain", "simulation:\n  fill_rate: 0.01\n", engine.ErrInvalidConfig},
		{"bad night hour", "simulation:\n  night_start: 24\n", engine.ErrInvalidConfig},
		{"initial level", "simulation:\n  initial_level: 120\n", engine.ErrInvalidState},
		{"non-positive tick", "simulation:\n  tick: 0s\n", nil},
		{"unknown timezone", "simulation:\n  timezone: Mars/Olympus\n", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
