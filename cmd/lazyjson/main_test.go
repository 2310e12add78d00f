package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with an isolated config directory
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := newCommand(&env{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFlatten(t *testing.T) {
	out, err := execute(t, `{"a":[1,2],"b":{"c":true}}`, "flatten", "-")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": […],\n  \"b\": {…}\n}\n", out)
}

func TestFlatten_Toggle(t *testing.T) {
	out, err := execute(t, `{"a":[1,2],"b":{"c":true}}`, "flatten", "--ids", "--toggle", "node:2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "node:3         0: 1,", lines[2])
	assert.True(t, strings.HasPrefix(lines[1], "node:2"))
	assert.True(t, strings.HasPrefix(lines[4], "end:2"))
}

func TestFlatten_ToggleRejectsUnknownID(t *testing.T) {
	_, err := execute(t, `{"a":1}`, "flatten", "--toggle", "node:9")
	assert.ErrorContains(t, err, "no visible node node:9")

	_, err = execute(t, `{"a":1}`, "flatten", "--toggle", "node:2")
	assert.ErrorContains(t, err, "not an object or array")
}

func TestFlatten_InvalidJSON(t *testing.T) {
	_, err := execute(t, `{"a":`, "flatten")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	out, err := execute(t, `{"name":"Ada","tags":["admin"]}`, "search", "ad", "-", "--policy", "expanded")
	require.NoError(t, err)
	assert.Contains(t, out, "$.name")
	assert.Contains(t, out, "$.tags[0]")
	assert.Contains(t, out, "2 matches")
}

func TestSearch_Export(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "matches.csv")

	out, err := execute(t, `["x","xx"]`, "search", "x", "--policy", "expanded", "--export", target)
	require.NoError(t, err)
	assert.Equal(t, "Exported 3 matches to "+target+"\n", out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestSearch_NoMatches(t *testing.T) {
	out, err := execute(t, `{"a":1}`, "search", "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No matches for \"zzz\"\n", out)
}

func TestConfig(t *testing.T) {
	out, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "expansion_policy: first-item-expanded")
}
