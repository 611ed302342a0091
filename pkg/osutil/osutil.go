// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package osutil contains file and subprocess helpers shared by the tools.
package osutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultDirPerm  = 0755
	DefaultFilePerm = 0644
)

// RunCmd runs "bin args..." in dir with timeout and returns its combined output.
func RunCmd(timeout time.Duration, dir, bin string, args ...string) ([]byte, error) {
	cmd := Command(bin, args...)
	cmd.Dir = dir
	return Run(timeout, cmd)
}

// Run runs cmd with the specified timeout.
// Returns combined output. If the command fails, err includes output.
func Run(timeout time.Duration, cmd *exec.Cmd) ([]byte, error) {
	output := new(bytes.Buffer)
	if cmd.Stdout == nil {
		cmd.Stdout = output
	}
	if cmd.Stderr == nil {
		cmd.Stderr = output
	}
	setPdeathsig(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %v %+v: %w", cmd.Path, cmd.Args, err)
	}
	err := waitTimeout(timeout, cmd)
	if err != nil {
		return output.Bytes(), runError(cmd, err, output.Bytes())
	}
	return output.Bytes(), nil
}

// RunOutput is like Run, but keeps stdout and stderr separate.
// The streams are drained concurrently, so an engine that floods
// one of them cannot deadlock against the pipe buffer.
func RunOutput(timeout time.Duration, cmd *exec.Cmd) (stdout, stderr []byte, err error) {
	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	setPdeathsig(cmd)
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start %v %+v: %w", cmd.Path, cmd.Args, err)
	}
	// The timer starts before the reads: a hung engine that never closes
	// its pipes must still be killed.
	timer := time.AfterFunc(timeout, func() {
		killPgroup(cmd)
		cmd.Process.Kill()
	})
	var g errgroup.Group
	g.Go(func() error {
		var err error
		stdout, err = io.ReadAll(outPipe)
		return err
	})
	g.Go(func() error {
		var err error
		stderr, err = io.ReadAll(errPipe)
		return err
	})
	readErr := g.Wait()
	err = cmd.Wait()
	if !timer.Stop() {
		err = fmt.Errorf("timedout %q", cmd.Args)
	} else if err == nil {
		err = readErr
	}
	if err != nil {
		combined := append(append([]byte{}, stdout...), stderr...)
		return stdout, stderr, runError(cmd, err, combined)
	}
	return stdout, stderr, nil
}

// waitTimeout waits for the started cmd, killing its process group
// if it does not finish within timeout.
func waitTimeout(timeout time.Duration, cmd *exec.Cmd) error {
	done := make(chan bool)
	timedout := make(chan bool, 1)
	timer := time.NewTimer(timeout)
	go func() {
		select {
		case <-timer.C:
			timedout <- true
			killPgroup(cmd)
			cmd.Process.Kill()
		case <-done:
			timedout <- false
			timer.Stop()
		}
	}()
	err := cmd.Wait()
	close(done)
	if err != nil && <-timedout {
		return fmt.Errorf("timedout %q", cmd.Args)
	}
	return err
}

func runError(cmd *exec.Cmd, err error, output []byte) error {
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	return &VerboseError{
		Title:    fmt.Sprintf("failed to run %q: %v", cmd.Args, err),
		Output:   output,
		ExitCode: exitCode,
	}
}

// Command is similar to os/exec.Command, but also sets PDEATHSIG on linux.
func Command(bin string, args ...string) *exec.Cmd {
	cmd := exec.Command(bin, args...)
	setPdeathsig(cmd)
	return cmd
}

type VerboseError struct {
	Title    string
	Output   []byte
	ExitCode int
}

func (err *VerboseError) Error() string {
	if len(err.Output) == 0 {
		return err.Title
	}
	return fmt.Sprintf("%v\n%s", err.Title, err.Output)
}

// IsExist returns true if the file name exists.
func IsExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func MkdirAll(dir string) error {
	return os.MkdirAll(dir, DefaultDirPerm)
}

func WriteFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, DefaultFilePerm)
}

// TempFile creates a unique temp filename.
// Note: the file already exists when the function returns.
func TempFile(prefix string) (string, error) {
	f, err := os.CreateTemp("", prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	f.Close()
	return f.Name(), nil
}
