// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kre8ntemjs/mockengine/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "edges.txt")
	assert.False(t, IsExist(file))
	require.NoError(t, WriteFile(file, []byte("edges:42\n")))
	assert.True(t, IsExist(file))
	// A second write overwrites, not appends.
	require.NoError(t, WriteFile(file, []byte("edges:7\n")))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "edges:7\n", string(data))
}

func TestMkdirAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, MkdirAll(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	// Creating an existing dir is not an error.
	require.NoError(t, MkdirAll(dir))
}

func TestTempFile(t *testing.T) {
	file, err := TempFile("mock-engine-test")
	require.NoError(t, err)
	defer os.Remove(file)
	assert.True(t, IsExist(file))
}

func TestRun(t *testing.T) {
	output, err := RunCmd(time.Minute, "", "sh", "-c", "echo foo; echo bar >&2")
	require.NoError(t, err)
	assert.Contains(t, string(output), "foo")
	assert.Contains(t, string(output), "bar")
}

func TestRunForwardsOutput(t *testing.T) {
	// Preset stdout/stderr writers must be respected, not replaced.
	cmd := Command("sh", "-c", "echo streamed; echo more >&2")
	cmd.Stdout = &testutil.Writer{TB: t}
	cmd.Stderr = &testutil.Writer{TB: t}
	_, err := Run(time.Minute, cmd)
	require.NoError(t, err)
}

func TestRunExitCode(t *testing.T) {
	_, err := RunCmd(time.Minute, "", "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	var verbose *VerboseError
	require.ErrorAs(t, err, &verbose)
	assert.Equal(t, 3, verbose.ExitCode)
	assert.Contains(t, string(verbose.Output), "oops")
}

func TestRunOutput(t *testing.T) {
	cmd := Command("sh", "-c", "echo to-stdout; echo to-stderr >&2")
	stdout, stderr, err := RunOutput(time.Minute, cmd)
	require.NoError(t, err)
	assert.Equal(t, "to-stdout\n", string(stdout))
	assert.Equal(t, "to-stderr\n", string(stderr))
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	_, err := RunCmd(100*time.Millisecond, "", "sleep", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timedout")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunOutputTimeout(t *testing.T) {
	start := time.Now()
	_, _, err := RunOutput(100*time.Millisecond, Command("sleep", "30"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timedout")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestVerboseError(t *testing.T) {
	err := &VerboseError{Title: "title", Output: []byte("some output")}
	assert.True(t, strings.HasPrefix(err.Error(), "title\n"))
	assert.Contains(t, err.Error(), "some output")
	err.Output = nil
	assert.Equal(t, "title", err.Error())
}
