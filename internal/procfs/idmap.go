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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cntr-go/cntr/internal/errkind"
)

// maxIDMapExtents mirrors the kernel's UID_GID_MAP_MAX_EXTENTS: a
// /proc/<pid>/{uid,gid}_map file never holds more than five lines.
const maxIDMapExtents = 5

// IDMapExtent is one line of a uid_map/gid_map file: Count ids starting at
// First (inside the namespace) map to ids starting at LowerFirst (outside
// it, i.e. on the host namespace that opened the file).
type IDMapExtent struct {
	First      uint32
	LowerFirst uint32
	Count      uint32
}

// IDMap is a process's full uid_map or gid_map, at most five extents, as
// exposed by the kernel. Overflow is the id substituted on a lookup miss:
// overflowuid for a uid_map, overflowgid for a gid_map.
type IDMap struct {
	Extents  []IDMapExtent
	Overflow uint32
}

// DefaultIDMap is the identity map the kernel reports for a process outside
// any user namespace: one extent covering the full 32-bit id space.
var DefaultIDMap = IDMap{Extents: []IDMapExtent{{First: 0, LowerFirst: 0, Count: 4294967295}}}

func readIDMap(pid int, file string, overflow uint32) (IDMap, error) {
	path := filepath.Join(BasePath(), strconv.Itoa(pid), file)
	f, err := os.Open(path)
	if err != nil {
		return IDMap{}, errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	m := IDMap{Overflow: overflow}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != 3 {
			return IDMap{}, errkind.Wrap(errkind.Introspection, path, fmt.Errorf("malformed line %q", line))
		}
		if len(m.Extents) >= maxIDMapExtents {
			return IDMap{}, errkind.Wrap(errkind.Introspection, path, fmt.Errorf("more than %d extents", maxIDMapExtents))
		}
		first, err := strconv.ParseUint(cols[0], 10, 32)
		if err != nil {
			return IDMap{}, errkind.Wrap(errkind.Introspection, path, err)
		}
		lowerFirst, err := strconv.ParseUint(cols[1], 10, 32)
		if err != nil {
			return IDMap{}, errkind.Wrap(errkind.Introspection, path, err)
		}
		count, err := strconv.ParseUint(cols[2], 10, 32)
		if err != nil {
			return IDMap{}, errkind.Wrap(errkind.Introspection, path, err)
		}
		m.Extents = append(m.Extents, IDMapExtent{
			First:      uint32(first),
			LowerFirst: uint32(lowerFirst),
			Count:      uint32(count),
		})
	}
	if err := scanner.Err(); err != nil {
		return IDMap{}, errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	return m, nil
}

// IDMapsFromPID reads pid's uid_map and gid_map.
func IDMapsFromPID(pid int) (uidMap, gidMap IDMap, err error) {
	uidMap, err = readIDMap(pid, "uid_map", OverflowUID())
	if err != nil {
		return IDMap{}, IDMap{}, fmt.Errorf("failed to read uid_map: %w", err)
	}
	gidMap, err = readIDMap(pid, "gid_map", OverflowGID())
	if err != nil {
		return IDMap{}, IDMap{}, fmt.Errorf("failed to read gid_map: %w", err)
	}
	return uidMap, gidMap, nil
}

var (
	overflowOnce sync.Once
	overflowUID  uint32 = 65534
	overflowGID  uint32 = 65534
)

func loadOverflowIDs() {
	overflowOnce.Do(func() {
		if v, ok := readOverflowID("overflowuid"); ok {
			overflowUID = v
		}
		if v, ok := readOverflowID("overflowgid"); ok {
			overflowGID = v
		}
	})
}

func readOverflowID(name string) (uint32, bool) {
	path := filepath.Join(BasePath(), "sys", "kernel", name)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// OverflowUID returns the id substituted when a mapping lookup misses,
// preferring /proc/sys/kernel/overflowuid over the hard-coded 65534 the
// original tool used unconditionally.
func OverflowUID() uint32 {
	loadOverflowIDs()
	return overflowUID
}

// OverflowGID is OverflowUID's group-id counterpart.
func OverflowGID() uint32 {
	loadOverflowIDs()
	return overflowGID
}

// MapUp translates id from inside the namespace (First-relative) to outside
// it (LowerFirst-relative): the direction used to find the host-visible
// owner of a file created inside the container.
func (m IDMap) MapUp(id uint32) uint32 {
	for _, e := range m.Extents {
		last := e.First + e.Count - 1
		if id >= e.First && id <= last {
			return id - e.First + e.LowerFirst
		}
	}
	return m.overflow()
}

// MapDown translates id from outside the namespace (LowerFirst-relative) to
// inside it (First-relative): the direction used when the FUSE server
// reports ownership of a host file to the container.
func (m IDMap) MapDown(id uint32) uint32 {
	for _, e := range m.Extents {
		last := e.LowerFirst + e.Count - 1
		if id >= e.LowerFirst && id <= last {
			return id - e.LowerFirst + e.First
		}
	}
	return m.overflow()
}

func (m IDMap) overflow() uint32 {
	if m.Overflow != 0 {
		return m.Overflow
	}
	return 65534
}
