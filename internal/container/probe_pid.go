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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cntr-go/cntr/internal/procfs"
)

// pidProbe treats the container identifier as a literal host pid,
// grounded on original_source/src/container/process_id.rs.
type pidProbe struct{}

func (pidProbe) Lookup(_ context.Context, id string) (int, error) {
	pid, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("not a valid pid: %q", id)
	}
	path := filepath.Join(procfs.BasePath(), strconv.Itoa(pid))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("no process with pid %d found", pid)
		}
		return 0, fmt.Errorf("could not lookup process %d: %w", pid, err)
	}
	return pid, nil
}

func (pidProbe) CheckRequiredTools() error { return nil }
