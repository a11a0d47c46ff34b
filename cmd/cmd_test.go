package cmd

import (
	"bytes"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

// run executes c with args after resetting every flag, returning stdout and stderr
func run(t *testing.T, c *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	c.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	c.SetOut(stdout)
	c.SetErr(stderr)
	c.SetArgs(append(args, "--color", "never"))
	err := c.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	at := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(at, []byte(contents), 0o644))
	return at
}

func TestCheckPrintsTypes(t *testing.T) {
	file := writeFile(t, t.TempDir(), "prog.tip", `
		inc(n) { var r; r = n + 1; return r; }
		main() { var x; x = inc(input); return x; }
	`)
	stdout, _, err := run(t, CheckCmd, file)
	require.NoError(t, err)
	assert.Equal(t, "inc: (int) -> int\n  n: int\n  r: int\nmain: () -> int\n  x: int\n", stdout)
}

func TestCheckReportsErrors(t *testing.T) {
	file := writeFile(t, t.TempDir(), "bad.tip", "main() {\n  return true;\n}\n")
	stdout, stderr, err := run(t, CheckCmd, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s) found")
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "bad.tip:1:1: (E001) type mismatch")
}

func TestCheckEntryPointFlag(t *testing.T) {
	file := writeFile(t, t.TempDir(), "id.tip", `start(x) { return x; }`)
	stdout, _, err := run(t, CheckCmd, file, "--entry", "start")
	require.NoError(t, err)
	assert.Equal(t, "start: (int) -> int\n  x: int\n", stdout)

	stdout, _, err = run(t, CheckCmd, file)
	require.NoError(t, err)
	assert.Equal(t, "start: ([[x]]) -> [[x]]\n  x: [[x]]\n", stdout)
}

func TestCheckSettingsFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "id.tip", `start(x) { return x; }`)
	writeFile(t, dir, "tip.yaml", "entry: start\n")
	stdout, _, err := run(t, CheckCmd, file)
	require.NoError(t, err)
	assert.Equal(t, "start: (int) -> int\n  x: int\n", stdout)

	// flags win over the file
	stdout, _, err = run(t, CheckCmd, file, "--entry", "main")
	require.NoError(t, err)
	assert.Equal(t, "start: ([[x]]) -> [[x]]\n  x: [[x]]\n", stdout)

	other := writeFile(t, t.TempDir(), "other.yaml", "entry: nothing\nlog-level: nonsense\n")
	_, _, err = run(t, CheckCmd, file, "--config", other)
	assert.ErrorContains(t, err, "could not load settings")
}

func TestCheckMissingFile(t *testing.T) {
	_, _, err := run(t, CheckCmd, filepath.Join(t.TempDir(), "nope.tip"))
	assert.ErrorContains(t, err, "could not stat target")
}

func TestConstraintsCommand(t *testing.T) {
	file := writeFile(t, t.TempDir(), "c.tip", "main() {\n  return 0;\n}\n")
	stdout, _, err := run(t, ConstraintsCmd, file)
	require.NoError(t, err)
	assert.Equal(t, "[[0]] = int\n[[0]] = int\n[[main]] = () -> [[0]]\n", stdout)

	stdout, _, err = run(t, ConstraintsCmd, file, "--positions")
	require.NoError(t, err)
	assert.Contains(t, stdout, "c.tip:2:10: [[0]] = int\n")
	assert.Contains(t, stdout, "c.tip:1:1: [[main]] = () -> [[0]]\n")
}

func TestUnknownColourMode(t *testing.T) {
	file := writeFile(t, t.TempDir(), "c.tip", `main() { return 0; }`)
	CheckCmd.SetArgs([]string{file, "--color", "sometimes"})
	assert.ErrorContains(t, CheckCmd.Execute(), "unknown colour mode")
}
