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

	"github.com/cntr-go/cntr/internal/errkind"
)

// ProcStatus is the subset of a target process's identity the Container
// Entry Engine needs: its pid as seen from the host and from inside its own
// pid namespace, the capability bitmasks it is currently running with, the
// host-visible uid/gid of the process, and the highest capability bit the
// running kernel defines.
type ProcStatus struct {
	GlobalPID             int
	LocalPID              int
	InheritedCapabilities uint64
	EffectiveCapabilities uint64
	UID                   uint32
	GID                   uint32
	LastCap               uint
}

// Status reads /proc/<pid>/status and /proc/sys/kernel/cap_last_cap for the
// target pid (as seen from the host's pid namespace). UID and GID are read
// from the ownership of the /proc/<pid> directory itself, matching the
// st_uid/st_gid the kernel reports for that process's namespace-root-mapped
// identity.
func Status(pid int) (*ProcStatus, error) {
	dir := filepath.Join(BasePath(), strconv.Itoa(pid))
	path := filepath.Join(dir, "status")
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "open "+path, err)
	}
	defer f.Close()

	var (
		localPID    *int
		inheritCaps *uint64
		effectCaps  *uint64
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) < 2 {
			continue
		}
		last := cols[len(cols)-1]
		switch cols[0] {
		case "NSpid:":
			v, err := strconv.Atoi(strings.TrimSpace(last))
			if err != nil {
				return nil, errkind.Wrap(errkind.Introspection, "parse NSpid in "+path, err)
			}
			localPID = &v
		case "CapInh:":
			v, err := strconv.ParseUint(strings.TrimSpace(last), 16, 64)
			if err != nil {
				return nil, errkind.Wrap(errkind.Introspection, "parse CapInh in "+path, err)
			}
			inheritCaps = &v
		case "CapEff:":
			v, err := strconv.ParseUint(strings.TrimSpace(last), 16, 64)
			if err != nil {
				return nil, errkind.Wrap(errkind.Introspection, "parse CapEff in "+path, err)
			}
			effectCaps = &v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "read "+path, err)
	}
	if localPID == nil {
		return nil, errkind.Wrap(errkind.Introspection, path, fmt.Errorf("no NSpid field"))
	}
	if inheritCaps == nil {
		return nil, errkind.Wrap(errkind.Introspection, path, fmt.Errorf("no CapInh field"))
	}
	if effectCaps == nil {
		return nil, errkind.Wrap(errkind.Introspection, path, fmt.Errorf("no CapEff field"))
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "stat "+dir, err)
	}
	uid, gid, err := statOwner(info)
	if err != nil {
		return nil, errkind.Wrap(errkind.Introspection, "stat "+dir, err)
	}

	lastCap, err := LastCapability()
	if err != nil {
		return nil, err
	}

	return &ProcStatus{
		GlobalPID:             pid,
		LocalPID:              *localPID,
		InheritedCapabilities: *inheritCaps,
		EffectiveCapabilities: *effectCaps,
		UID:                   uid,
		GID:                   gid,
		LastCap:               lastCap,
	}, nil
}

// LastCapability reads /proc/sys/kernel/cap_last_cap, the highest capability
// bit the running kernel defines, used to bound the CAP_BSET_DROP loop.
func LastCapability() (uint, error) {
	path := filepath.Join(BasePath(), "sys", "kernel", "cap_last_cap")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errkind.Wrap(errkind.Security, "read "+path, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, errkind.Wrap(errkind.Security, "parse "+path, err)
	}
	return uint(v), nil
}
