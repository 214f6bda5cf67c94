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

// Package capability reads and restricts the Linux capability bitmasks of
// the calling process via the capget/capset syscalls and the ambient
// capability prctl, so the attaching process keeps only the capabilities it
// needs to chroot and ptrace into the target.
package capability

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

// linuxCapabilityVersion3 is _LINUX_CAPABILITY_VERSION_3 from
// linux/capability.h, the only version capget/capset accept on a modern
// kernel for a two-word (64 distinct bits) capability set.
const linuxCapabilityVersion3 = 0x20080522

// CAP_SYS_CHROOT and CAP_SYS_PTRACE, the two capabilities the exec daemon's
// re-exec helper keeps: chroot to enter the captured filesystem, ptrace to
// attach to the target's namespaces via /proc/<pid>/ns.
const (
	CapSysChroot = 18
	CapSysPtrace = 19
)

type capHeader struct {
	version uint32
	pid     int32
}

type capData struct {
	effective   uint32
	permitted   uint32
	inheritable uint32
}

// DropExcept restricts the calling thread's bounding set to keepCaps (the
// target process's own inherited-or-effective capability union, read via
// procfs.Status) plus CAP_SYS_CHROOT and CAP_SYS_PTRACE, over bits 0
// through lastCap.
// This is what the Container Entry Engine calls after entering the target's
// namespaces: the attaching process should never hold more capability than
// the container itself runs with.
func DropExcept(keepCaps uint64, lastCap uint) error {
	for _, cap := range bitsToDrop(keepCaps, lastCap) {
		if err := unix.Prctl(unix.PR_CAPBSET_DROP, uintptr(cap), 0, 0, 0); err != nil {
			if err == unix.EINVAL {
				continue
			}
			return errkind.Wrap(errkind.Security, fmt.Sprintf("PR_CAPBSET_DROP(%d)", cap), err)
		}
	}
	return nil
}

// bitsToDrop is the pure part of DropExcept: every capability bit up to and
// including lastCap not present in keep.
func bitsToDrop(keepCaps uint64, lastCap uint) []uint {
	keep := keepCaps | (1 << CapSysChroot) | (1 << CapSysPtrace)
	var drop []uint
	for cap := uint(0); cap <= lastCap; cap++ {
		if keep&(1<<cap) == 0 {
			drop = append(drop, cap)
		}
	}
	return drop
}

// InheritChrootAndPtrace raises CAP_SYS_CHROOT as an inheritable and (where
// the kernel supports it) ambient capability on the calling thread, so it
// survives the execve that follows without needing full root.
func InheritChrootAndPtrace() error {
	header := capHeader{version: linuxCapabilityVersion3, pid: 0}
	var data [2]capData
	if err := capget(&header, &data[0]); err != nil {
		return errkind.Wrap(errkind.Security, "capget", err)
	}
	data[0].inheritable |= 1 << CapSysChroot
	if err := capset(&header, &data[0]); err != nil {
		return errkind.Wrap(errkind.Security, "capset", err)
	}
	if ambientSupported() {
		if err := unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_RAISE, CapSysChroot, 0, 0); err != nil {
			return errkind.Wrap(errkind.Security, "PR_CAP_AMBIENT_RAISE", err)
		}
	}
	return nil
}

func ambientSupported() bool {
	err := unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_IS_SET, unix.CAP_KILL, 0, 0)
	switch err { //nolint:errorlint // errno sentinels compared directly, matching x/sys/unix convention
	case unix.EINVAL, unix.EOPNOTSUPP, unix.ENOSYS:
		return false
	default:
		return true
	}
}

func capget(header *capHeader, data *capData) error {
	_, _, errno := unix.Syscall(unix.SYS_CAPGET, uintptr(unsafe.Pointer(header)), uintptr(unsafe.Pointer(data)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func capset(header *capHeader, data *capData) error {
	_, _, errno := unix.Syscall(unix.SYS_CAPSET, uintptr(unsafe.Pointer(header)), uintptr(unsafe.Pointer(data)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}
