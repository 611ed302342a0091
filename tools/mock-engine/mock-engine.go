// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// mock-engine is a stand-in for an instrumented JS engine, used to test
// the coverage-guided fuzzing harness without a real engine build.
// It "executes" a JS file, prints a fabricated edges:<N> coverage line
// to stdout and exits non-zero to simulate a crash.
//
// Usage:
//
//	mock-engine [flags] file.js
//
// Defaults come from a -config JSON file (if given), then MOCK_* environment
// variables, then flags; later sources win. Exit codes: 0 success,
// 1 simulated crash, 2 usage error or missing file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kre8ntemjs/mockengine/pkg/config"
	"github.com/kre8ntemjs/mockengine/pkg/engine"
	"github.com/kre8ntemjs/mockengine/pkg/log"
	"github.com/kre8ntemjs/mockengine/pkg/osutil"
	"github.com/kre8ntemjs/mockengine/pkg/score"
	"github.com/kre8ntemjs/mockengine/pkg/tool"
)

var (
	flagJS        = flag.String("js", "", "JS file to execute (or pass it as the sole positional argument)")
	flagConfig    = flag.String("config", "", "JSON config file with default settings (optional)")
	flagMode      = flag.String("mode", string(engine.ModeRandom), "edge count mode: random or incremental")
	flagMin       = flag.Int("min", engine.DefaultMinEdges, "minimum edge count")
	flagMax       = flag.Int("max", engine.DefaultMaxEdges, "maximum edge count")
	flagCrashRate = flag.Float64("crash-rate", 0, "probability of simulating a crash (0.0-1.0)")
	flagSeed      = flag.String("seed", "", "seed for reproducible runs (derived from file content and time if empty)")
	flagSleepMs   = flag.Int("sleep-ms", 0, "sleep duration in ms to simulate engine execution time")
	flagWriteFile = flag.Bool("write-file", false, "also write the edges line to -edges-file")
	flagEdgesFile = flag.String("edges-file", engine.DefaultEdgesFile, "path to write the edges line to")
)

func main() {
	defer tool.Init()()

	cfg := engine.Default()
	if *flagConfig != "" {
		if err := config.LoadFile(*flagConfig, cfg); err != nil {
			failUsage("%v", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		failUsage("%v", err)
	}
	if err := applyFlags(cfg); err != nil {
		failUsage("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		failUsage("%v", err)
	}

	js := *flagJS
	if js == "" && flag.NArg() > 0 {
		js = flag.Arg(flag.NArg() - 1)
	}
	if js == "" {
		failUsage("usage error: missing JS file (use -js or pass it as the last argument)")
	}
	if !osutil.IsExist(js) {
		failUsage("file not found: %v", js)
	}

	res, err := engine.Exec(cfg, js)
	if err != nil {
		failUsage("%v", err)
	}
	line := score.FormatEdges(res.Edges)
	fmt.Println(line)
	if cfg.WriteFile {
		if err := writeEdgesFile(cfg.EdgesFile, line); err != nil {
			log.Logf(0, "warning: failed to write edges file: %v", err)
		}
	}
	if res.Crashed {
		// Synthetic diagnostic in the shape real engines produce.
		fmt.Fprintln(os.Stderr, "ReferenceError: mock_var is not defined")
		fmt.Fprintln(os.Stderr, "  at <anonymous>:1:1")
		os.Exit(1)
	}
}

// applyFlags overrides cfg with the flags the user explicitly set,
// so that flags win over both the config file and the environment.
func applyFlags(cfg *engine.Config) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			mode, parseErr := engine.ParseMode(*flagMode)
			if parseErr != nil {
				err = parseErr
				return
			}
			cfg.Mode = mode
		case "min":
			cfg.MinEdges = *flagMin
		case "max":
			cfg.MaxEdges = *flagMax
		case "crash-rate":
			cfg.CrashRate = *flagCrashRate
		case "seed":
			cfg.Seed = *flagSeed
		case "sleep-ms":
			cfg.SleepMs = *flagSleepMs
		case "write-file":
			cfg.WriteFile = *flagWriteFile
		case "edges-file":
			cfg.EdgesFile = *flagEdgesFile
		}
	})
	return err
}

func writeEdgesFile(path, line string) error {
	if err := osutil.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	return osutil.WriteFile(path, []byte(line+"\n"))
}

func failUsage(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(2)
}
