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

// lxcProbe shells out to `lxc-info --no-humanize --pid --name`, grounded
// on original_source/src/container/lxc.rs.
type lxcProbe struct{}

func (lxcProbe) Lookup(ctx context.Context, id string) (int, error) {
	cmd := exec.CommandContext(ctx, "lxc-info", "--no-humanize", "--pid", "--name", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("Running 'lxc-info --no-humanize --pid --name %s' failed: exited with %v: %s", id, err, strings.TrimRight(stderr.String(), "\n"))
	}
	pidStr := strings.TrimRight(stdout.String(), "\n")
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("expected valid process id from lxc-info, got: %s", pidStr)
	}
	return pid, nil
}

func (lxcProbe) CheckRequiredTools() error { return which("lxc-info") }
