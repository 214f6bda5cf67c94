// Copyright 2026 The cntr-go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/entry"
)

// containerRoot is where internal/mountns grafts the staged root inside
// the entered mount namespace.
const containerRoot = "/var/lib/cntr"

// ptySlaveFD is the well-known fd a pty slave is passed on, matching
// os/exec.Cmd.ExtraFiles[0] (fd 3, after stdin/stdout/stderr).
const ptySlaveFD = 3

// RunHelper is the entry point for the hidden "__exec-helper" subcommand
// that Execute re-execs itself into. It must be the first thing that runs
// after process start, on a locked OS thread, so that setns calls made
// deep inside entry.Enter affect every thread this process will ever have.
// RunHelper does not return on success: it ends in syscall.Exec.
func RunHelper() error {
	runtime.LockOSThread()

	pid, err := strconv.Atoi(os.Getenv(envTargetPID))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", envTargetPID, err)
	}

	var payload helperPayload
	if err := json.Unmarshal([]byte(os.Getenv(envArgs)), &payload); err != nil {
		return fmt.Errorf("invalid %s: %w", envArgs, err)
	}

	var containerEnv []string
	if err := json.Unmarshal([]byte(os.Getenv(envEnviron)), &containerEnv); err != nil {
		return fmt.Errorf("invalid %s: %w", envEnviron, err)
	}

	if err := attachPTYIfPresent(); err != nil {
		return err
	}

	// Gathering the target's status must happen before entry.Enter setns's
	// into its PID namespace: /proc/<pid> stops addressing this process
	// from outside once that happens.
	target, err := entry.Gather(pid)
	if err != nil {
		return fmt.Errorf("failed to gather container status: %w", err)
	}

	if err := entry.Enter(target, target.Status.UID, target.Status.GID); err != nil {
		return fmt.Errorf("failed to enter container: %w", err)
	}

	if err := unix.Chdir(containerRoot); err != nil {
		return fmt.Errorf("failed to chdir into %s: %w", containerRoot, err)
	}
	if err := unix.Chroot("."); err != nil {
		return fmt.Errorf("failed to chroot into %s: %w", containerRoot, err)
	}

	req := &ExecRequest{Command: payload.Command, HasCommand: payload.HasCommand, Arguments: payload.Arguments}
	command, args := shellCommand(req)

	// exec.LookPath searches this process's own PATH, so take the PATH of
	// the environment the command will run with.
	for _, kv := range containerEnv {
		if strings.HasPrefix(kv, "PATH=") {
			os.Setenv("PATH", strings.TrimPrefix(kv, "PATH="))
		}
	}

	binary, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("failed to find %q in container: %w", command, err)
	}

	argv := append([]string{command}, args...)
	if err := syscall.Exec(binary, argv, containerEnv); err != nil {
		return fmt.Errorf("failed to exec %s: %w", command, err)
	}
	return nil // unreachable; syscall.Exec only returns on error
}

// attachPTYIfPresent dup2s a pty slave passed at ptySlaveFD onto
// stdin/stdout/stderr and makes this process a session leader, so the pty
// becomes its controlling terminal. Absent a slave fd (a non-interactive
// exec), this is a no-op and the child inherits the daemon's own stdio as
// wired by os/exec.Cmd.Stdin/Stdout/Stderr.
func attachPTYIfPresent() error {
	slave := os.NewFile(ptySlaveFD, "pty-slave")
	if slave == nil {
		return nil
	}
	if _, err := slave.Stat(); err != nil {
		return nil // fd 3 was not passed
	}

	if _, err := unix.Setsid(); err != nil && err != unix.EPERM {
		return fmt.Errorf("setsid: %w", err)
	}
	for _, target := range []int{0, 1, 2} {
		if err := unix.Dup2(ptySlaveFD, target); err != nil {
			return fmt.Errorf("dup2(%d): %w", target, err)
		}
	}
	return nil
}
