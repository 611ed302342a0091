// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package engine fabricates the observable behavior of an instrumented
// JS engine: an edge count and a crash decision derived from a config
// and the target file. The package is a pure computation layer, printing,
// file writing and exit codes belong to the callers.
package engine

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/kre8ntemjs/mockengine/pkg/hash"
)

type Mode string

const (
	ModeRandom      Mode = "random"
	ModeIncremental Mode = "incremental"
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "random", "rand":
		return ModeRandom, nil
	case "incremental", "inc":
		return ModeIncremental, nil
	}
	return "", fmt.Errorf("unknown mode %q (want random or incremental)", s)
}

// CrashTrigger is the substring that forces the crash path regardless
// of the configured crash rate.
const CrashTrigger = "CRASH"

const (
	DefaultMinEdges  = 100
	DefaultMaxEdges  = 5000
	DefaultEdgesFile = "/tmp/kre8_edges.txt"
)

type Config struct {
	Mode      Mode    `json:"mode"`
	MinEdges  int     `json:"min_edges"`
	MaxEdges  int     `json:"max_edges"`
	CrashRate float64 `json:"crash_rate"`
	Seed      string  `json:"seed"`
	SleepMs   int     `json:"sleep_ms"`
	WriteFile bool    `json:"write_file"`
	EdgesFile string  `json:"edges_file"`
}

// Default returns the built-in defaults, not yet overlaid with
// environment variables (see ApplyEnv).
func Default() *Config {
	return &Config{
		Mode:      ModeRandom,
		MinEdges:  DefaultMinEdges,
		MaxEdges:  DefaultMaxEdges,
		CrashRate: 0,
		SleepMs:   0,
		EdgesFile: DefaultEdgesFile,
	}
}

// ApplyEnv overlays MOCK_* environment variables on top of cfg.
// Unset variables leave the corresponding field untouched.
func (cfg *Config) ApplyEnv() error {
	if v := os.Getenv("MOCK_EDGES_MODE"); v != "" {
		mode, err := ParseMode(v)
		if err != nil {
			return fmt.Errorf("MOCK_EDGES_MODE: %w", err)
		}
		cfg.Mode = mode
	}
	if err := envInt("MOCK_EDGES_MIN", &cfg.MinEdges); err != nil {
		return err
	}
	if err := envInt("MOCK_EDGES_MAX", &cfg.MaxEdges); err != nil {
		return err
	}
	if v := os.Getenv("MOCK_CRASH_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("failed to parse MOCK_CRASH_RATE %q: %w", v, err)
		}
		cfg.CrashRate = rate
	}
	if v := os.Getenv("MOCK_SEED"); v != "" {
		cfg.Seed = v
	}
	if err := envInt("MOCK_SLEEP_MS", &cfg.SleepMs); err != nil {
		return err
	}
	if v := os.Getenv("MOCK_WRITE_FILE"); v != "" {
		write, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse MOCK_WRITE_FILE %q: %w", v, err)
		}
		cfg.WriteFile = write
	}
	if v := os.Getenv("MOCK_EDGES_FILE"); v != "" {
		cfg.EdgesFile = v
	}
	return nil
}

func envInt(name string, field *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %v %q: %w", name, v, err)
	}
	*field = n
	return nil
}

func (cfg *Config) Validate() error {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return err
	}
	if cfg.CrashRate < 0 || cfg.CrashRate > 1 {
		return fmt.Errorf("crash rate %v is out of [0,1]", cfg.CrashRate)
	}
	if cfg.SleepMs < 0 {
		return fmt.Errorf("sleep duration %vms is negative", cfg.SleepMs)
	}
	return nil
}

type Result struct {
	Edges   int
	Crashed bool
}

// Exec runs one mock engine execution: stat the file, sleep for the
// configured latency, fabricate an edge count and decide the crash.
// An unreadable (but existing) file counts as empty content rather
// than a fatal error. The sleep is a plain blocking delay.
func Exec(cfg *Config, file string) (*Result, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("file not found: %v", file)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		content = nil
	}
	if cfg.SleepMs > 0 {
		time.Sleep(time.Duration(cfg.SleepMs) * time.Millisecond)
	}
	rnd := rand.New(rand.NewSource(seedFor(cfg.Seed, content)))
	res := &Result{
		Edges:   edgeCount(rnd, cfg.Mode, content, cfg.MinEdges, cfg.MaxEdges),
		Crashed: shouldCrash(rnd, content, cfg.CrashRate),
	}
	return res, nil
}

// seedFor derives the rand seed: an explicit seed is used verbatim,
// otherwise the content hash is mixed with the current time so that
// repeated runs on the same file still diverge.
func seedFor(seed string, content []byte) int64 {
	if seed != "" {
		sig := hash.Hash([]byte(seed))
		return sig.Truncate64()
	}
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	sig := hash.Hash(content, []byte(now))
	return sig.Truncate64()
}

// clampBounds enforces 0 <= lo <= hi.
func clampBounds(min, max int) (lo, hi int) {
	lo = min
	if lo < 0 {
		lo = 0
	}
	hi = max
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func edgeCount(rnd *rand.Rand, mode Mode, content []byte, min, max int) int {
	lo, hi := clampBounds(min, max)
	if mode == ModeIncremental {
		return incrementalEdges(content, lo, hi)
	}
	// hi-lo+1 overflows int when the bounds span the whole int range,
	// so the draw happens in uint64 space.
	span := uint64(hi-lo) + 1
	return lo + int(rnd.Uint64()%span)
}

// incrementalEdges is deterministic on file content: a hash-derived
// base plus a size bonus, clamped back into [lo, hi].
func incrementalEdges(content []byte, lo, hi int) int {
	sig := hash.Hash(content)
	span := uint64(hi-lo) + 1
	base := lo + int(uint64(sig.Truncate64())%span)
	bonus := len(content) * 10
	if bonus > hi/2 {
		bonus = hi / 2
	}
	edges := base + bonus
	// base+bonus can wrap around for hi near MaxInt.
	if edges > hi || edges < base {
		edges = hi
	}
	return edges
}

// shouldCrash decides the crash independently of the edge computation:
// the trigger token wins at any rate, the rate boundaries need no rand draw.
func shouldCrash(rnd *rand.Rand, content []byte, rate float64) bool {
	if bytes.Contains(content, []byte(CrashTrigger)) {
		return true
	}
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	return rnd.Float64() < rate
}
