// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package log

import (
	"bytes"
	"flag"
	golog "log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosity(t *testing.T) {
	require.NoError(t, flag.Set("vv", "1"))
	defer flag.Set("vv", "0")
	assert.True(t, V(0))
	assert.True(t, V(1))
	assert.False(t, V(2))
}

func TestVerboseWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	golog.SetOutput(buf)
	defer golog.SetOutput(os.Stderr)
	require.NoError(t, flag.Set("vv", "1"))
	defer flag.Set("vv", "0")

	n, err := VerboseWriter(1).Write([]byte("engine output"))
	require.NoError(t, err)
	assert.Equal(t, len("engine output"), n)
	assert.Contains(t, buf.String(), "engine output")

	buf.Reset()
	n, err = VerboseWriter(2).Write([]byte("too verbose"))
	require.NoError(t, err)
	assert.Equal(t, len("too verbose"), n)
	assert.Empty(t, buf.String())
}
