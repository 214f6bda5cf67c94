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

// Package cgroup migrates the calling process into the cgroup v1
// hierarchies a target process already belongs to, so tools run inside the
// attached shell are accounted and limited the same way the container's own
// processes are.
package cgroup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cntr-go/cntr/internal/procfs"
)

func controllerPath(cgroup string, mounts map[string]string) (string, bool) {
	for _, controller := range strings.Split(cgroup, ",") {
		if mount, ok := mounts[controller]; ok {
			return filepath.Join(mount, cgroup, "tasks"), true
		}
	}
	return "", false
}

// MoveTo migrates pid into every cgroup hierarchy targetPID belongs to.
// A hierarchy whose tasks file cannot be opened or written (the caller
// lacks CAP_SYS_ADMIN over it, or it has since been removed) is logged and
// skipped rather than treated as fatal: missing one accounting cgroup must
// not prevent entering the container.
func MoveTo(pid, targetPID int) error {
	cgroups, err := procfs.GetCgroups(targetPID)
	if err != nil {
		return fmt.Errorf("failed to get cgroups of %d: %w", targetPID, err)
	}
	mounts, err := procfs.GetCgroupControllerMounts()
	if err != nil {
		return fmt.Errorf("failed to get cgroup mountpoints: %w", err)
	}

	for _, cg := range cgroups {
		path, ok := controllerPath(cg, mounts)
		if !ok {
			continue
		}
		if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
			slog.Warn("failed to enter cgroup", "cgroup", cg, "error", err)
			continue
		}
	}
	return nil
}
