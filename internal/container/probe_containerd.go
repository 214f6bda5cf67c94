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

// containerdProbe shells out to `ctr task list` and scans its table for a
// row whose TASK column matches id, grounded on
// original_source/src/container/containerd.rs.
type containerdProbe struct{}

func (containerdProbe) Lookup(ctx context.Context, id string) (int, error) {
	cmd := exec.CommandContext(ctx, "ctr", "task", "list")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("Running 'ctr task list' failed: exited with %v: %s", err, strings.TrimRight(stderr.String(), "\n"))
	}

	lines := strings.Split(stdout.String(), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // skip the "TASK  PID  STATUS" header
	}
	for _, line := range lines {
		cols := strings.Fields(line)
		if len(cols) != 3 {
			continue
		}
		if cols[0] != id {
			continue
		}
		pid, err := strconv.Atoi(cols[1])
		if err != nil {
			return 0, fmt.Errorf("read invalid pid from ctr task list: %q", cols[1])
		}
		return pid, nil
	}
	return 0, fmt.Errorf("no container with id %s found", id)
}

func (containerdProbe) CheckRequiredTools() error { return which("ctr") }
