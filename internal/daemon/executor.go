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
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/cntr-go/cntr/internal/logger"
)

// Environment variables used to hand an ExecRequest to the re-exec'd
// __exec-helper child. Go cannot safely fork() without exec() once the
// runtime has started multiple OS threads, so the daemon re-executes its
// own binary as a fresh process (os/exec.Cmd.Start performs fork+exec
// atomically through the kernel) rather than forking and chrooting inline,
// and hands the child everything it needs through the environment rather
// than inherited memory.
const (
	envTargetPID = "_CNTR_TARGET_PID"
	envArgs      = "_CNTR_ARGS"
	envEnviron   = "_CNTR_ENVIRON"
)

// helperPayload is the JSON body of envArgs.
type helperPayload struct {
	Command    string   `json:"command"`
	HasCommand bool     `json:"has_command"`
	Arguments  []string `json:"arguments"`
}

// Execute runs req inside the container identified by containerPID,
// re-invoking the current binary's hidden "__exec-helper" subcommand. When
// ptySlave is non-nil it is passed as the child's fd 3 and the helper
// attaches it to stdin/stdout/stderr instead of inheriting the daemon's
// own; otherwise stdin/stdout/stderr are wired directly. Execute blocks
// until the child exits — the accept loop remains single-goroutine-serial.
func Execute(containerPID int, req *ExecRequest, stdin io.Reader, stdout, stderr io.Writer, ptySlave *os.File) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own executable path: %w", err)
	}

	containerEnv, err := containerEnvironment(containerPID)
	if err != nil {
		return err
	}
	environJSON, err := json.Marshal(containerEnv)
	if err != nil {
		return fmt.Errorf("failed to encode container environment: %w", err)
	}

	argsJSON, err := json.Marshal(helperPayload{
		Command:    req.Command,
		HasCommand: req.HasCommand,
		Arguments:  req.Arguments,
	})
	if err != nil {
		return fmt.Errorf("failed to encode exec request: %w", err)
	}

	cmd := exec.Command(exe, "__exec-helper")
	cmd.Env = []string{
		envTargetPID + "=" + strconv.Itoa(containerPID),
		envArgs + "=" + string(argsJSON),
		envEnviron + "=" + string(environJSON),
	}
	if shell, ok := os.LookupEnv("SHELL"); ok {
		cmd.Env = append(cmd.Env, "SHELL="+shell)
	}

	if ptySlave != nil {
		cmd.ExtraFiles = []*os.File{ptySlave}
	} else {
		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			logger.Warnf("exec helper for pid %d exited with status %d", containerPID, exitErr.ExitCode())
			return nil
		}
		return fmt.Errorf("failed to run exec helper: %w", err)
	}
	return nil
}
