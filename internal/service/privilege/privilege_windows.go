//go:build windows

package privilege

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

const runAsVerb = "runas"

func isElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

// relaunch starts the current executable again with the same arguments through UAC.
func relaunch(_ context.Context) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("locate working directory: %w", err)
	}

	args := make([]string, 0, len(os.Args))
	for _, arg := range os.Args[1:] {
		args = append(args, windows.EscapeArg(arg))
	}

	verbPtr, err := windows.UTF16PtrFromString(runAsVerb)
	if err != nil {
		return err
	}

	exePtr, err := windows.UTF16PtrFromString(executable)
	if err != nil {
		return err
	}

	argsPtr, err := windows.UTF16PtrFromString(strings.Join(args, " "))
	if err != nil {
		return err
	}

	cwdPtr, err := windows.UTF16PtrFromString(workDir)
	if err != nil {
		return err
	}

	if err = windows.ShellExecute(0, verbPtr, exePtr, argsPtr, cwdPtr, windows.SW_NORMAL); err != nil {
		return fmt.Errorf("shell execute: %w", err)
	}

	return nil
}
