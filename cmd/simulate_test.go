package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"water_tank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulateJSON(t *testing.T, opts *simulateOptions) []models.TankReading {
	t.Helper()
	opts.rootOptions = &rootOptions{}
	opts.JSON = true

	var buf bytes.Buffer
	require.NoError(t, runSimulate(&buf, opts))

	var out []models.TankReading
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var r models.TankReading
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	return out
}

func TestRunSimulate_FirstTickDrains(t *testing.T) {
	got := simulateJSON(t, &simulateOptions{Ticks: 1, Hour: 12})
	require.Len(t, got, 1)
	assert.InDelta(t, 72.35, got[0].Level, 1e-9)
	assert.False(t, got[0].PumpOn)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, 12, got[0].Hour)
}

func TestRunSimulate_AutoCutoffStopsPump(t *testing.T) {
	got := simulateJSON(t, &simulateOptions{Ticks: 3, Hour: 12, Level: 94.6, LevelSet: true, Pump: true})
	require.Len(t, got, 3)
	assert.Equal(t, 95.0, got[0].Level)
	assert.False(t, got[0].PumpOn)
	assert.InDelta(t, 94.95, got[1].Level, 1e-9)
}

func TestRunSimulate_HourAdvancesIntoLockout(t *testing.T) {
	got := simulateJSON(t, &simulateOptions{Ticks: 4, Hour: 22, TicksPerHour: 2, Level: 50, LevelSet: true, Pump: true})
	require.Len(t, got, 4)
	assert.Equal(t, []int{22, 22, 23, 23}, []int{got[0].Hour, got[1].Hour, got[2].Hour, got[3].Hour})
	assert.True(t, got[1].PumpOn, "pump runs before the night window")
	assert.False(t, got[2].PumpOn, "night lockout at 23:00")
	assert.InDelta(t, got[1].Level-0.05, got[2].Level, 1e-9)
}

func TestRunSimulate_TextSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSimulate(&buf, &simulateOptions{rootOptions: &rootOptions{}, Ticks: 2, Hour: 23, Level: 40, LevelSet: true, Pump: true}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "night_lockout")
	assert.Contains(t, lines[2], "2 ticks, 0 auto cut-off, 1 night lockout")
}

func TestRunSimulate_RejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runSimulate(&buf, &simulateOptions{rootOptions: &rootOptions{}, Ticks: -1}))
	assert.Error(t, runSimulate(&buf, &simulateOptions{rootOptions: &rootOptions{}, Ticks: 1, Hour: 24}))
	assert.Error(t, runSimulate(&buf, &simulateOptions{rootOptions: &rootOptions{}, Ticks: 1, Hour: 12, Level: 101, LevelSet: true}))
}

func TestSimulateCommand_LevelFlag(t *testing.T) {
	run := func(args ...string) (string, error) {
		cmd := newRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"simulate", "--json"}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	_, err := run("--ticks", "1", "--level", "-5")
	assert.Error(t, err)

	_, err = run("--ticks", "0", "--level", "-1")
	assert.Error(t, err)

	out, err := run("--ticks", "1", "--level", "0")
	require.NoError(t, err)
	var r models.TankReading
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &r))
	assert.Equal(t, 0.0, r.Level)

	out, err = run("--ticks", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &r))
	assert.InDelta(t, 72.35, r.Level, 1e-9)
}
