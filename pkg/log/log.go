// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to standard log package with some extensions:
//   - verbosity levels
//   - global verbosity setting that can be used by multiple packages
//
// All output goes to stderr, stdout stays reserved for tool results.
package log

import (
	"flag"
	golog "log"
)

var flagV = flag.Int("vv", 0, "verbosity")

// V returns true if the current verbosity level is no less than v.
func V(v int) bool {
	return v <= *flagV
}

// Logf prints msg if the current verbosity level is no less than v.
// Level 0 is for messages that should always be visible (warnings and the like).
func Logf(v int, msg string, args ...interface{}) {
	if V(v) {
		golog.Printf(msg, args...)
	}
}

func Fatal(err error) {
	golog.Fatal(err)
}

func Fatalf(msg string, args ...interface{}) {
	golog.Fatalf(msg, args...)
}

// VerboseWriter is an io.Writer that forwards everything to Logf
// with the given verbosity level.
type VerboseWriter int

func (w VerboseWriter) Write(data []byte) (int, error) {
	Logf(int(w), "%s", data)
	return len(data), nil
}
