// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kre8ntemjs/mockengine/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The test binary doubles as the engine: when reinvoked with this
// env var set, it runs main instead of the tests.
const engineProcessEnv = "MOCK_ENGINE_PROCESS"

func TestMain(m *testing.M) {
	if os.Getenv(engineProcessEnv) == "1" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runEngine(t *testing.T, env []string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := exec.Command(os.Args[0], args...)
	// Ambient MOCK_* variables must not leak into the run.
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "MOCK_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, engineProcessEnv+"=1")
	cmd.Env = append(cmd.Env, env...)
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	cmd.Stdout, cmd.Stderr = outBuf, errBuf
	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return outBuf.String(), errBuf.String(), code
}

func writeJS(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "input.js")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestSuccessRun(t *testing.T) {
	stdout, stderr, code := runEngine(t, nil, "-crash-rate", "0", writeJS(t, "var x = 1;"))
	assert.Equal(t, 0, code)
	assert.Regexp(t, `^edges:\d+\n$`, stdout)
	assert.Empty(t, stderr)
}

func TestCrashRun(t *testing.T) {
	stdout, stderr, code := runEngine(t, nil, "-crash-rate", "0", writeJS(t, `var boom = "CRASH";`))
	assert.Equal(t, 1, code)
	// The edges line is printed even on crashing runs.
	assert.Regexp(t, `^edges:\d+\n$`, stdout)
	assert.Contains(t, stderr, "ReferenceError: mock_var is not defined")
	assert.Contains(t, stderr, "at <anonymous>:1:1")
}

func TestMissingInputArg(t *testing.T) {
	stdout, stderr, code := runEngine(t, nil, "-crash-rate", "0")
	assert.Equal(t, 2, code)
	assert.NotContains(t, stdout, score.Prefix)
	assert.Contains(t, stderr, "usage error")
}

func TestNonexistentFile(t *testing.T) {
	stdout, stderr, code := runEngine(t, nil, filepath.Join(t.TempDir(), "gone.js"))
	assert.Equal(t, 2, code)
	assert.NotContains(t, stdout, score.Prefix)
	assert.Contains(t, stderr, "file not found")
}

func TestIncrementalRun(t *testing.T) {
	js := writeJS(t, "")
	args := []string{"-mode", "incremental", "-min", "100", "-max", "5000", js}
	first, _, code := runEngine(t, nil, args...)
	require.Equal(t, 0, code)
	again, _, code := runEngine(t, nil, args...)
	require.Equal(t, 0, code)
	assert.Equal(t, first, again)
	n, err := score.ParseEdges(first)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 100)
	assert.LessOrEqual(t, n, 5000)
}

func TestSeededRun(t *testing.T) {
	js := writeJS(t, "var x = 1;")
	args := []string{"-mode", "random", "-seed", "fixed", js}
	first, _, code := runEngine(t, nil, args...)
	require.Equal(t, 0, code)
	again, _, code := runEngine(t, nil, args...)
	require.Equal(t, 0, code)
	assert.Equal(t, first, again)
}

func TestWritesEdgesFile(t *testing.T) {
	// The parent dir of the edges file is created as needed.
	edgesFile := filepath.Join(t.TempDir(), "out", "edges.txt")
	stdout, _, code := runEngine(t, nil,
		"-crash-rate", "0", "-write-file", "-edges-file", edgesFile, writeJS(t, "var x;"))
	require.Equal(t, 0, code)
	data, err := os.ReadFile(edgesFile)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(data))
}

func TestEnvDefaults(t *testing.T) {
	_, stderr, code := runEngine(t, []string{"MOCK_CRASH_RATE=1"}, writeJS(t, "var x;"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ReferenceError")
}

func TestFlagBeatsEnv(t *testing.T) {
	_, _, code := runEngine(t, []string{"MOCK_CRASH_RATE=1"}, "-crash-rate", "0", writeJS(t, "var x;"))
	assert.Equal(t, 0, code)
}
