package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/config"
	"ca-modeler/internal/persistence"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg = config.Default()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPresetsList(t *testing.T) {
	out, err := execute(t, "presets", "list")
	require.NoError(t, err)
	for _, name := range []string{"life (default)", "wireworld", "greenberg", "turing", "forestfire"} {
		assert.Contains(t, out, name)
	}
}

func TestPresetsExportAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fire.rules")
	_, err := execute(t, "presets", "export", "forestfire", "-o", path, "--width", "30", "--height", "20")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "WIDTH 30 HEIGHT 20")

	out, err := execute(t, "rules", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 problems")

	_, err = execute(t, "presets", "export", "nope")
	assert.Error(t, err)
}

func TestRulesCheckReportsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.rules")
	body := "WIDTH 5 HEIGHT 5\nSTATE {\n    A(0, 0, 0, 1)\n}\nRULES {\n    IF current is 'A' THEN next is 'Nowhere' WITH PROB 1.0\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := execute(t, "rules", "check", path)
	assert.Error(t, err)
	assert.Contains(t, out, "line 6")
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	gridOut := filepath.Join(dir, "end.json.zst")
	png := filepath.Join(dir, "end.png")
	db := filepath.Join(dir, "runs.db")

	out, err := execute(t, "run", "--preset", "life", "--width", "12", "--height", "10", "--seed", "4",
		"--steps", "3", "--quiet", "--grid-out", gridOut, "--png", png, "--scale", "2", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "life: 3 generations (stopped by steps)")
	assert.Contains(t, out, "run id:")

	g, err := persistence.LoadGrid(gridOut)
	require.NoError(t, err)
	assert.Equal(t, 12, g.W)
	assert.Equal(t, 10, g.H)

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	out, err = execute(t, "history", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "12x10")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ruleca version dev")
}
