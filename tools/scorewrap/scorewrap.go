// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// scorewrap runs a JS engine and prints "edges:<N>" for the fuzzing
// harness to parse, regardless of how the engine reports coverage:
//
//  1. -edges-file: the engine writes a count there ("edges:<N>" or "<N>");
//  2. -score-regex: sum numeric capture groups over the engine's
//     stdout and stderr;
//  3. neither: print edges:0.
//
// When the engine exits non-zero its output is classified and the crash
// title is logged to stderr; scorewrap itself still exits 0 with an
// edges line, the harness learns about crashes from the engine run.
//
// Usage:
//
//	scorewrap -engine ./d8 [-engine-args "--flag1 --flag2"] [flags] file.js
package main

import (
	"flag"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kre8ntemjs/mockengine/pkg/log"
	"github.com/kre8ntemjs/mockengine/pkg/osutil"
	"github.com/kre8ntemjs/mockengine/pkg/report"
	"github.com/kre8ntemjs/mockengine/pkg/score"
	"github.com/kre8ntemjs/mockengine/pkg/tool"
)

var (
	flagEngine     = flag.String("engine", "", "engine binary to run (e.g. an instrumented d8)")
	flagEngineArgs = flag.String("engine-args", "", "space-separated pass-through args for the engine")
	flagEdgesFile  = flag.String("edges-file", "", "file where the engine writes the coverage count (optional)")
	flagScoreRegex = flag.String("score-regex", "", "regex extracting numeric scores from engine output (optional)")
	flagTimeout    = flag.Duration("timeout", time.Minute, "engine execution timeout")
)

func main() {
	defer tool.Init()()
	if *flagEngine == "" {
		tool.Failf("usage error: -engine is required")
	}
	if flag.NArg() != 1 {
		tool.Failf("usage error: exactly one JS file expected, got %v", flag.NArg())
	}
	js := flag.Arg(0)

	var re *regexp.Regexp
	if *flagScoreRegex != "" {
		var err error
		re, err = regexp.Compile(*flagScoreRegex)
		if err != nil {
			tool.Failf("invalid score regex: %v", err)
		}
	}

	args := append(strings.Fields(*flagEngineArgs), js)
	cmd := osutil.Command(*flagEngine, args...)
	stdout, stderr, err := osutil.RunOutput(*flagTimeout, cmd)
	for _, stream := range [][]byte{stdout, stderr} {
		if len(stream) != 0 {
			log.VerboseWriter(1).Write(stream)
		}
	}
	if err != nil {
		if verbose, ok := err.(*osutil.VerboseError); ok {
			logCrash(verbose.Output)
			log.Logf(1, "engine exited with code %v", verbose.ExitCode)
		} else {
			tool.Failf("failed to run engine: %v", err)
		}
	}

	switch {
	case *flagEdgesFile != "":
		edges, err := score.ReadEdgesFile(*flagEdgesFile)
		if err != nil {
			tool.Fail(err)
		}
		fmt.Println(score.FormatEdges(edges))
	case re != nil:
		sum := score.SumMatches(re, stdout, stderr)
		fmt.Printf("%v%v\n", score.Prefix, sum)
	default:
		// No score source known.
		fmt.Println(score.FormatEdges(0))
	}
}

func logCrash(output []byte) {
	rep := report.Parse(output)
	if rep == nil {
		log.Logf(0, "crash: engine failed with unrecognized output")
		return
	}
	log.Logf(0, "crash: %v", rep.Title)
}
