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

// Package mountapi is the kernel mount-API alternative to the FUSE overlay:
// on a kernel new enough to support fsopen(2)/open_tree(2)/move_mount(2), a
// host directory can be grafted into the container's view without a
// userspace file server in the loop at all. Availability is probed once and
// memoized, since the probe itself performs a real (harmless) syscall.
package mountapi

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

var (
	probeOnce      sync.Once
	probeAvailable bool
)

// Available reports whether fsopen(2) exists on this kernel. The probe
// result is memoized after the first call.
func Available() bool {
	probeOnce.Do(func() {
		probeAvailable = probe()
	})
	return probeAvailable
}

// probe calls fsopen with a filesystem name that can never legitimately
// exist, so any successful result (or any error other than ENOSYS) tells us
// the syscall itself is implemented.
func probe() bool {
	fd, err := unix.Fsopen("__cntr_probe__", 0)
	if fd >= 0 {
		unix.Close(fd)
	}
	return err != unix.ENOSYS
}

// Clone opens a detached, recursive copy of the mount tree rooted at path,
// suitable for later grafting with Graft without disturbing the original
// mount at path.
func Clone(path string) (int, error) {
	fd, err := unix.OpenTree(unix.AT_FDCWD, path, unix.OPEN_TREE_CLONE|unix.AT_RECURSIVE|unix.OPEN_TREE_CLOEXEC)
	if err != nil {
		return -1, errkind.Wrap(errkind.Mount, "open_tree "+path, err)
	}
	return fd, nil
}

// Graft moves the mount tree referenced by treeFD onto target.
func Graft(treeFD int, target string) error {
	if err := unix.MoveMount(treeFD, "", unix.AT_FDCWD, target, unix.MOVE_MOUNT_F_EMPTY_PATH); err != nil {
		return errkind.Wrap(errkind.Mount, "move_mount -> "+target, err)
	}
	return nil
}
