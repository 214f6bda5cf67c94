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

// nspawnProbe shells out to `machinectl show --property=Leader`, grounded
// on original_source/src/container/nspawn.rs.
type nspawnProbe struct{}

func (nspawnProbe) Lookup(ctx context.Context, id string) (int, error) {
	cmd := exec.CommandContext(ctx, "machinectl", "show", "--property=Leader", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("Running 'machinectl show --property=Leader %s' failed: exited with %v: %s", id, err, strings.TrimRight(stderr.String(), "\n"))
	}

	fields := strings.SplitN(strings.TrimRight(stdout.String(), "\n"), "=", 2)
	if len(fields) != 2 {
		return 0, fmt.Errorf("unexpected output from machinectl show: %q", stdout.String())
	}
	pid, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, fmt.Errorf("expected valid process id from machinectl show, got: %s", fields[1])
	}
	return pid, nil
}

func (nspawnProbe) CheckRequiredTools() error { return which("machinectl") }
