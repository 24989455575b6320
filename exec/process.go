// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, The osvcapsule Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"osvcapsule.sh/log"
)

type Process struct {
	executable *Executable
	opts       *ExecOptions
	cmd        *exec.Cmd
}

// NewProcess prepares a process to be executed from a given binary name and
// optional execution options
func NewProcess(bin string, args []string, eopts ...ExecOption) (*Process, error) {
	executable, err := NewExecutable(bin, nil, args...)
	if err != nil {
		return nil, err
	}

	return NewProcessFromExecutable(executable, eopts...)
}

// NewProcessFromExecutable prepares a process to be executed from a given
// *Executable object and optional execution options
func NewProcessFromExecutable(executable *Executable, eopts ...ExecOption) (*Process, error) {
	if executable == nil {
		return nil, fmt.Errorf("cannot prepare process without executable")
	}

	opts, err := NewExecOptions(eopts...)
	if err != nil {
		return nil, err
	}

	return &Process{
		executable: executable,
		opts:       opts,
	}, nil
}

// Cmdline returns the full command line to be executed
func (e *Process) Cmdline() string {
	return strings.Join(e.Argv(), " ")
}

// Argv returns the binary followed by its arguments.
func (e *Process) Argv() []string {
	return append([]string{e.executable.bin}, e.executable.Args()...)
}

// Dir returns the working directory the process is started in.
func (e *Process) Dir() string {
	return e.opts.dir
}

// Start the process.  Cancelling ctx kills it.
func (e *Process) Start(ctx context.Context) error {
	e.cmd = exec.CommandContext(ctx, e.executable.bin, e.executable.Args()...)
	e.cmd.Dir = e.opts.dir

	if e.opts.stdout != nil {
		e.cmd.Stdout = e.opts.stdout
	}

	// Without an explicit stderr both streams share stdout
	if e.opts.stderr != nil {
		e.cmd.Stderr = e.opts.stderr
	} else if e.opts.stdout != nil {
		e.cmd.Stderr = e.opts.stdout
	}

	if e.opts.stdin != nil {
		e.cmd.Stdin = e.opts.stdin
	}

	// Add any set environmental variables including the host's
	e.cmd.Env = append(os.Environ(), e.opts.env...)

	log.G(ctx).
		WithField("dir", e.opts.dir).
		Debug(e.Cmdline())

	return e.cmd.Start()
}

// Wait for the process to complete
func (e *Process) Wait() error {
	if e.cmd == nil {
		return fmt.Errorf("process has not yet started cannot wait")
	}

	err := e.cmd.Wait()
	for _, cb := range e.opts.callbacks {
		cb(e.cmd.ProcessState.ExitCode())
	}

	return err
}

// StartAndWait starts the process and waits for it to exit
func (e *Process) StartAndWait(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	return e.Wait()
}

// ExitCode returns the exit code of an exited process, or -1 if the process
// has not exited or was terminated by a signal.
func (e *Process) ExitCode() int {
	if e.cmd == nil || e.cmd.ProcessState == nil {
		return -1
	}

	return e.cmd.ProcessState.ExitCode()
}

// Signal sends a signal to the running process.  If this fails, for example if
// the process is not running, this will return an error.
func (e *Process) Signal(signal syscall.Signal) error {
	if e.cmd == nil || e.cmd.Process == nil {
		return fmt.Errorf("process has not yet started")
	}

	return e.cmd.Process.Signal(signal)
}

// Kill sends a SIGKILL to the running process.
func (e *Process) Kill() error {
	return e.Signal(syscall.SIGKILL)
}
