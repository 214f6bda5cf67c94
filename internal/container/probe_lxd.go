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

// lxdProbe shells out to `lxc info <id>` and scans the "Pid:" line of its
// colon-separated property dump, grounded on
// original_source/src/container/lxd.rs.
type lxdProbe struct{}

func (lxdProbe) Lookup(ctx context.Context, id string) (int, error) {
	cmd := exec.CommandContext(ctx, "lxc", "info", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("Running 'lxc info %s' failed: exited with %v: %s", id, err, strings.TrimRight(stderr.String(), "\n"))
	}

	for _, line := range strings.Split(stdout.String(), "\n") {
		cols := strings.SplitN(line, ":", 2)
		if len(cols) != 2 || strings.TrimSpace(cols[0]) != "Pid" {
			continue
		}
		pidStr := strings.TrimSpace(cols[1])
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			return 0, fmt.Errorf("expected valid process id from lxc info, got: %s", pidStr)
		}
		return pid, nil
	}
	return 0, fmt.Errorf("expected to find `Pid:` field in output of 'lxc info %s', got: %s", id, stdout.String())
}

func (lxdProbe) CheckRequiredTools() error { return which("lxc") }
