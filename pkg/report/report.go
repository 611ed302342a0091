// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package report recognizes crash output of JS engines (real or mock)
// and extracts a short title for deduplication in the harness.
package report

import (
	"bufio"
	"bytes"
	"regexp"
)

type Report struct {
	// Title is the first line that matched a crash pattern, trimmed.
	Title string
	// Output is the full engine output the title was extracted from.
	Output []byte
}

// Patterns the mock engine and common JS engines emit on crashes.
// Ordered: engine-level failures before generic signals.
var crashPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:Reference|Type|Syntax|Range|Internal)Error: .*`),
	regexp.MustCompile(`^Uncaught .*`),
	regexp.MustCompile(`^# Fatal error in .*`),
	regexp.MustCompile(`^FATAL ERROR: .*`),
	regexp.MustCompile(`AddressSanitizer`),
	regexp.MustCompile(`^Segmentation fault`),
	regexp.MustCompile(`^Aborted`),
	regexp.MustCompile(`: Assertion .* failed\.`),
}

const maxTitleLen = 120

// Parse scans engine output for a crash indication.
// Returns nil if the output looks clean.
func Parse(output []byte) *Report {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		for _, re := range crashPatterns {
			if !re.Match(line) {
				continue
			}
			title := string(line)
			if len(title) > maxTitleLen {
				title = title[:maxTitleLen]
			}
			return &Report{
				Title:  title,
				Output: output,
			}
		}
	}
	return nil
}
