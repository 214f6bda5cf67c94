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

package container

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// dockerProbe shells out to `docker inspect`, grounded on
// original_source/src/container/docker.rs.
type dockerProbe struct{}

// runInspectStyle runs name with args, expecting stdout of the form
// "<state>;<pid>" (docker's "{{.State.Status}};{{.State.Pid}}" or podman's
// "{{.State.Running}};{{.State.Pid}}" go-template format), and returns the
// pid if the state column reports the container running.
func runInspectStyle(ctx context.Context, name string, args []string, containerID string, runningState string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if bytes.HasPrefix(stderr.Bytes(), []byte("Error: No such object")) {
			return 0, fmt.Errorf("no such container found")
		}
		return 0, fmt.Errorf("Running '%s inspect' failed: exited with %v: %s", name, err, stderr.String())
	}

	fields := strings.SplitN(strings.TrimRight(stdout.String(), "\n"), ";", 2)
	if len(fields) != 2 {
		return 0, fmt.Errorf("unexpected output from %s inspect: %q", name, stdout.String())
	}
	if fields[0] != runningState {
		return 0, fmt.Errorf("container '%s' is not running, got state: %s", containerID, fields[0])
	}
	pid, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, fmt.Errorf("expected pid from %s inspect, got: %s", name, fields[1])
	}
	return pid, nil
}

func (dockerProbe) Lookup(ctx context.Context, id string) (int, error) {
	return runInspectStyle(ctx, "docker",
		[]string{"inspect", "--format", "{{.State.Status}};{{.State.Pid}}", id}, id, "running")
}

func (dockerProbe) CheckRequiredTools() error { return which("docker") }
