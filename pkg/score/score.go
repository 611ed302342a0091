// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package score implements the edges:<N> coverage score contract between
// the fuzzing harness and engine wrappers: formatting the line the harness
// parses, and extracting scores from edges files and raw engine output.
package score

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Prefix of the single line every engine invocation prints to stdout.
const Prefix = "edges:"

func FormatEdges(n int) string {
	return fmt.Sprintf("%v%v", Prefix, n)
}

// ParseEdges parses either "edges:<N>" or a bare "<N>",
// both tolerated with surrounding whitespace.
func ParseEdges(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, Prefix))
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("failed to parse edge count %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative edge count %v", n)
	}
	return n, nil
}

func ReadEdgesFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read edges file: %w", err)
	}
	return ParseEdges(string(data))
}

// SumMatches sums all numeric capture groups of re across the outputs.
// Underscore digit separators are tolerated, non-numeric groups are skipped.
func SumMatches(re *regexp.Regexp, outputs ...[]byte) uint64 {
	var sum uint64
	for _, output := range outputs {
		for _, match := range re.FindAllSubmatch(output, -1) {
			for _, group := range match[1:] {
				digits := strings.ReplaceAll(string(group), "_", "")
				v, err := strconv.ParseUint(digits, 10, 64)
				if err != nil {
					continue
				}
				sum += v
			}
		}
	}
	return sum
}
