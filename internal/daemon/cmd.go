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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cntr-go/cntr/internal/procfs"
)

const defaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// containerEnvironment reads the target process's environment from
// /proc/<pid>/environ (NUL-separated KEY=VALUE pairs), then overlays our
// own PATH (falling back to defaultPath), matching cmd.rs's Cmd::new. This
// must run before the helper enters the PID namespace, since afterwards
// /proc/<pid> addresses a different process from inside the container.
func containerEnvironment(pid int) ([]string, error) {
	path := filepath.Join(procfs.BasePath(), fmt.Sprint(pid), "environ")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment of pid %d: %w", pid, err)
	}

	env := map[string]string{}
	for _, part := range bytes.Split(data, []byte{0}) {
		if len(part) == 0 {
			continue
		}
		kv := bytes.SplitN(part, []byte{'='}, 2)
		if len(kv) != 2 {
			continue
		}
		env[string(kv[0])] = string(kv[1])
	}

	if ourPath, ok := os.LookupEnv("PATH"); ok {
		env["PATH"] = ourPath
	} else {
		env["PATH"] = defaultPath
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out, nil
}

// shellCommand resolves the command and arguments to execute, defaulting
// to the user's login shell ($SHELL, falling back to "sh") with a
// login-shell "-l" argument, matching Cmd::run.
func shellCommand(req *ExecRequest) (command string, args []string) {
	if req.HasCommand {
		return req.Command, req.Arguments
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	if len(req.Arguments) > 0 {
		return shell, req.Arguments
	}
	return shell, []string{"-l"}
}
