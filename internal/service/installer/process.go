package installer

import (
	"context"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/release-installer/internal/logger"
)

// ProcessTerminator stops processes running a given executable.
type ProcessTerminator interface {
	Terminate(ctx context.Context, executable string) error
}

// processTerminator kills processes found in the OS process table.
type processTerminator struct {
	// list returns the process table; replaced in tests.
	list func() ([]ps.Process, error)
	// kill stops a process by id; replaced in tests.
	kill func(pid int) error
}

// NewProcessTerminator returns a terminator backed by the OS process table.
func NewProcessTerminator() ProcessTerminator {
	return &processTerminator{
		list: ps.Processes,
		kill: killProcess,
	}
}

// Terminate kills every process named executable except the current one.
func (p *processTerminator) Terminate(ctx context.Context, executable string) error {
	processList, err := p.list()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID || process.Executable() != executable {
			continue
		}

		logger.InfoKV(ctx, "Killing process", "pid", process.Pid(), "executable", executable)

		if err = p.kill(process.Pid()); err != nil {
			return err
		}
	}

	return nil
}

// killProcess stops the process with the given id.
func killProcess(pid int) error {
	runningProcess, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	return runningProcess.Kill()
}
