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

package procfs

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cntr-go/cntr/internal/errkind"
)

// GetCgroupSubsystems lists the cgroup v1 subsystem names the kernel
// registers, read from /proc/cgroups: comment lines (starting with '#') and
// subsystems with a zero hierarchy id (column 4) are skipped.
func GetCgroupSubsystems() ([]string, error) {
	path := filepath.Join(BasePath(), "cgroups")
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	var subsystems []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) >= 4 && fields[3] != "0" {
			subsystems = append(subsystems, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	return subsystems, nil
}

// GetCgroupControllerMounts maps each super option of a cgroup mount in
// /proc/self/mountinfo that is not a subsystem listed in /proc/cgroups
// (with any "name=" prefix removed) to that mount's mountpoint. This covers
// named hierarchies (mounted with "-o name=foo"), which systemd uses for its
// own accounting cgroup; plain mount flags such as "rw" appear as keys too.
func GetCgroupControllerMounts() (map[string]string, error) {
	subsystems, err := GetCgroupSubsystems()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(subsystems))
	for _, s := range subsystems {
		known[s] = true
	}

	path := filepath.Join(BasePath(), "self", "mountinfo")
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	mounts := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), " ")
		// The optional fields end at a "-" separator, followed by the
		// filesystem type, the mount source and the super options.
		sep := -1
		for i, field := range fields {
			if field == "-" {
				sep = i
				break
			}
		}
		if sep < 0 || len(fields) < sep+4 || fields[sep+1] != "cgroup" {
			continue
		}
		for _, option := range strings.Split(fields[sep+3], ",") {
			name := strings.TrimPrefix(option, "name=")
			if !known[name] {
				mounts[name] = fields[4]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	return mounts, nil
}

// GetCgroups lists the cgroup membership lines of pid, read from
// /proc/<pid>/cgroup, stripped of their hierarchy id prefix (everything up
// to and including the first ":/").
func GetCgroups(pid int) ([]string, error) {
	path := filepath.Join(BasePath(), strconv.Itoa(pid), "cgroup")
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	var cgroups []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), ":/", 2)
		if len(fields) >= 2 {
			cgroups = append(cgroups, fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	return cgroups, nil
}
