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
	"os"
	"path/filepath"
	"strconv"

	"github.com/cntr-go/cntr/internal/procfs"
)

// commandProbe scans every /proc/<pid>/cmdline for the first process
// (other than the caller itself) whose null-separated argv, joined with
// spaces, contains id as a byte substring. Grounded on
// original_source/src/container/command.rs.
type commandProbe struct{}

func (commandProbe) Lookup(_ context.Context, id string) (int, error) {
	needle := []byte(id)
	dir := procfs.BasePath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s directory: %w", dir, err)
	}
	ownPID := os.Getpid()

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		if pid == ownPID {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name(), "cmdline"))
		if err != nil {
			continue // process may have exited before we could read it
		}
		joined := make([]byte, len(data))
		copy(joined, data)
		for i, b := range joined {
			if b == 0 {
				joined[i] = ' '
			}
		}
		if bytes.Contains(joined, needle) {
			return pid, nil
		}
	}
	return 0, fmt.Errorf("no command found that matches %s", id)
}

func (commandProbe) CheckRequiredTools() error { return nil }
