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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cntr-go/cntr/internal/procfs"
)

// rktProbe shells out to `rkt status` for the stage1 pid, then scans
// /proc for the child whose PPid matches it (rkt runs the application
// inside a further pid namespace its own process supervises), grounded on
// original_source/src/container/rkt.rs.
type rktProbe struct{}

func (rktProbe) Lookup(ctx context.Context, id string) (int, error) {
	cmd := exec.CommandContext(ctx, "rkt", "status", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("Running 'rkt status %s' failed: exited with %v: %s", id, err, strings.TrimRight(stderr.String(), "\n"))
	}

	var ppid string
	for _, line := range strings.Split(stdout.String(), "\n") {
		cols := strings.SplitN(line, "=", 2)
		if len(cols) == 2 && cols[0] == "pid" {
			ppid = strings.TrimSpace(cols[1])
			break
		}
	}
	if ppid == "" {
		return 0, fmt.Errorf("expected to find `pid=` field in output of 'rkt status %s', got: %s", id, stdout.String())
	}

	pid, err := findChildProcess(ppid)
	if err != nil {
		return 0, fmt.Errorf("could not find container process belonging to rkt container %q: %w", id, err)
	}
	return pid, nil
}

// findChildProcess scans every /proc/<pid>/status for a process whose
// "PPid:" field equals parentPID.
func findChildProcess(parentPID string) (int, error) {
	dir := procfs.BasePath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s directory: %w", dir, err)
	}
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name(), "status"))
		if err != nil {
			continue // process may have exited before we could read it
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			cols := strings.SplitN(scanner.Text(), "\t", 2)
			if len(cols) == 2 && cols[0] == "PPid:" && cols[1] == parentPID {
				f.Close()
				return pid, nil
			}
		}
		f.Close()
	}
	return 0, fmt.Errorf("no child process found for pid %s", parentPID)
}

func (rktProbe) CheckRequiredTools() error { return which("rkt") }
