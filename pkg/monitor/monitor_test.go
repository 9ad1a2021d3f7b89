package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRun(t *testing.T, property, traceJSON string) Config {
	t.Helper()
	dir := t.TempDir()
	propPath := filepath.Join(dir, "property.pctl")
	tracePath := filepath.Join(dir, "trace.json")
	require.NoError(t, os.WriteFile(propPath, []byte(property), 0o644))
	require.NoError(t, os.WriteFile(tracePath, []byte(traceJSON), 0o644))
	return Config{
		PropertyFile: propPath,
		TraceFile:    tracePath,
		OutputLevel:  OutputNothing,
	}
}

func runMonitor(t *testing.T, cfg Config) *Monitor {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Run())
	assert.Equal(t, PhaseDone, m.Phase())
	return m
}

func TestRunInCausalOrder(t *testing.T) {
	cfg := writeRun(t, "EP(p)", `{
		"processes": 2,
		"events": [
			["e_q", ["P2"], ["q"], [0,1]],
			["e_p", ["P1"], ["p"], [1,0]]
		]
	}`)
	m := runMonitor(t, cfg)
	assert.Equal(t, "TRUE", m.Verdict)
}

// Events listed in reversed causal order are held and flushed once their
// dependencies arrive; the verdict matches the in-order run.
func TestRunFlushesHeldEvents(t *testing.T) {
	cfg := writeRun(t, "EP(p)", `{
		"processes": 1,
		"events": [
			["e3", ["P1"], ["p"], [3]],
			["e2", ["P1"], [], [2]],
			["e1", ["P1"], [], [1]]
		]
	}`)
	m := runMonitor(t, cfg)
	assert.Equal(t, "TRUE", m.Verdict)
	// S0 plus one frontier per admitted event
	assert.Len(t, m.Builder().States(), 4)
}

func TestRunReportsStuckEvents(t *testing.T) {
	// e2's dependency never arrives; the run still finishes with a verdict
	cfg := writeRun(t, "EP(p)", `{
		"processes": 1,
		"events": [
			["e2", ["P1"], ["p"], [5]]
		]
	}`)
	m := runMonitor(t, cfg)
	assert.Equal(t, "FALSE", m.Verdict)
}

func TestRunSkipsBadRecords(t *testing.T) {
	// bad process index and non-string propositions are both per-event
	// problems: log, skip, keep going
	cfg := writeRun(t, "EP(p)", `{
		"processes": 1,
		"events": [
			["bad", ["P7"], [], [1]],
			["mangled", ["P1"], [1, 2], [1]],
			["e1", ["P1"], ["p"], [1]]
		]
	}`)
	m := runMonitor(t, cfg)
	assert.Equal(t, "TRUE", m.Verdict)
	assert.Len(t, m.Builder().States(), 2)
}

func TestRunWritesDotFile(t *testing.T) {
	cfg := writeRun(t, "EP(p)", `{
		"processes": 1,
		"events": [["e1", ["P1"], ["p"], [1]]]
	}`)
	cfg.DotFile = filepath.Join(t.TempDir(), "graph.dot")
	runMonitor(t, cfg)

	data, err := os.ReadFile(cfg.DotFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, string(data), "S1")
}

func TestRunMaxStateOutput(t *testing.T) {
	cfg := writeRun(t, "EP(p)", `{
		"processes": 2,
		"process_names": ["alice", "bob"],
		"events": [
			["e_p", ["P1"], ["p"], [1,0]],
			["e_q", ["P2"], [], [1,1]]
		]
	}`)
	cfg.OutputLevel = OutputMaxState
	m := runMonitor(t, cfg)
	assert.Equal(t, "TRUE", m.Verdict)
}

func TestSetupFailures(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	cfg := writeRun(t, "EP(p)", `{"processes": 1, "events": []}`)
	cfg.PropertyFile = missing
	m, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, m.Run())

	cfg = writeRun(t, "EP(p", `{"processes": 1, "events": []}`)
	m, err = New(cfg)
	require.NoError(t, err)
	assert.Error(t, m.Run())

	cfg = writeRun(t, "EP(p)", `not json`)
	m, err = New(cfg)
	require.NoError(t, err)
	assert.Error(t, m.Run())
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg = Config{PropertyFile: "a", TraceFile: "b", OutputLevel: "loud"}
	assert.Error(t, cfg.Validate())

	cfg = Config{PropertyFile: "a", TraceFile: "b"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, OutputDefault, cfg.OutputLevel)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poet.yaml")
	content := "property: prop.pctl\ntrace: trace.json\nreduce: true\noutput_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "prop.pctl", cfg.PropertyFile)
	assert.Equal(t, "trace.json", cfg.TraceFile)
	assert.True(t, cfg.Reduce)
	assert.Equal(t, OutputDebug, cfg.OutputLevel)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
