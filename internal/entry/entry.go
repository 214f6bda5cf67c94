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

// Package entry composes procfs, capability, lsm and cgroup into the
// Container Entry Engine: joining a target process's cgroup and namespaces,
// then dropping capabilities and inheriting its security label so the
// calling thread ends up with exactly the access the container has.
package entry

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/capability"
	"github.com/cntr-go/cntr/internal/cgroup"
	"github.com/cntr-go/cntr/internal/errkind"
	"github.com/cntr-go/cntr/internal/lsm"
	"github.com/cntr-go/cntr/internal/procfs"
)

// Target is everything the entry engine needs to know about the process
// being entered, gathered up front so namespace and security operations
// never need to re-read /proc once namespaces start changing underfoot.
type Target struct {
	Status  *procfs.ProcStatus
	Profile *lsm.Profile // nil if no LSM is active or labels already match
}

// Gather reads everything Enter needs about pid without changing any
// process state: its /proc/<pid>/status fields and, if applicable, its
// pending LSM profile transition.
func Gather(pid int) (*Target, error) {
	status, err := procfs.Status(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to get status of target process: %w", err)
	}
	profile, err := lsm.ReadProfile(pid)
	if err != nil {
		return nil, err
	}
	return &Target{Status: status, Profile: profile}, nil
}

// Enter performs the full container entry sequence against the calling OS
// thread: move into the target's cgroups, enter its namespaces in
// EntryOrder (deferring USER last, since joining it drops CAP_SYS_ADMIN in
// the old mount namespace), then drop capabilities and inherit the LSM
// profile. The caller MUST have called runtime.LockOSThread() before
// calling Enter and must never unlock it or start goroutines that touch
// namespaces/capabilities afterwards: setns and the capability prctls below
// are per-kernel-thread, not per-goroutine.
func Enter(t *Target, uid, gid uint32) error {
	if err := cgroup.MoveTo(os.Getpid(), t.Status.GlobalPID); err != nil {
		return fmt.Errorf("failed to change cgroup: %w", err)
	}

	inUserNS, err := enterNamespaces(t.Status.GlobalPID)
	if err != nil {
		return fmt.Errorf("failed to enter namespaces for PID %d: %w", t.Status.GlobalPID, err)
	}

	if err := applySecurityContext(t, inUserNS, uid, gid); err != nil {
		return fmt.Errorf("failed to apply security context (UID=%d, GID=%d): %w", uid, gid, err)
	}
	return nil
}

// enterNamespaces opens every supported namespace of pid up front (so a
// partial failure never leaves the calling thread half-migrated), enters
// the mount namespace first, then the rest in procfs.EntryOrder. Returns
// whether the USER namespace was entered.
func enterNamespaces(pid int) (bool, error) {
	supported, err := procfs.SupportedNamespaces()
	if err != nil {
		return false, fmt.Errorf("failed to list namespaces: %w", err)
	}
	if !procfs.Contains(supported, procfs.Mount) {
		return false, errkind.Wrap(errkind.Namespace, "", fmt.Errorf("the system has no support for mount namespaces"))
	}

	mountNS, err := procfs.Open(procfs.Mount, pid)
	if err != nil {
		return false, fmt.Errorf("could not access mount namespace: %w", err)
	}

	var others []*procfs.Namespace
	userNSEntered := false
	for _, kind := range procfs.EntryOrder {
		if !procfs.Contains(supported, kind) {
			continue
		}
		if procfs.IsSame(kind, pid) {
			continue
		}
		ns, err := procfs.Open(kind, pid)
		if err != nil {
			for _, o := range others {
				o.Close()
			}
			mountNS.Close()
			return false, fmt.Errorf("failed to open %s namespace: %w", kind, err)
		}
		if kind == procfs.User {
			userNSEntered = true
		}
		others = append(others, ns)
	}

	if err := mountNS.Apply(); err != nil {
		for _, o := range others {
			o.Close()
		}
		return false, fmt.Errorf("failed to enter mount namespace: %w", err)
	}
	for _, ns := range others {
		if err := ns.Apply(); err != nil {
			return userNSEntered, fmt.Errorf("failed to apply namespace: %w", err)
		}
	}
	return userNSEntered, nil
}

// applySecurityContext sets uid/gid (only meaningful once a user namespace
// has been joined, since otherwise the ids mean nothing to the kernel's
// original namespace), drops capabilities down to the union of the
// target's own inherited and effective sets, raises CAP_SYS_CHROOT into the
// ambient set so it survives the exec that follows, and inherits the LSM
// profile if one is pending.
func applySecurityContext(t *Target, inUserNS bool, uid, gid uint32) error {
	if inUserNS {
		// Best-effort: some sandboxes already deny setgroups even though we
		// never asked to be denied, which is not itself an error.
		_ = unix.Setgroups(nil)
		if err := unix.Setgid(int(gid)); err != nil {
			return errkind.Wrap(errkind.Security, "setgid", err)
		}
		if err := unix.Setuid(int(uid)); err != nil {
			return errkind.Wrap(errkind.Security, "setuid", err)
		}
	}

	keepCaps := t.Status.InheritedCapabilities | t.Status.EffectiveCapabilities
	if err := capability.DropExcept(keepCaps, t.Status.LastCap); err != nil {
		return fmt.Errorf("failed to apply capabilities: %w", err)
	}
	if err := capability.InheritChrootAndPtrace(); err != nil {
		return fmt.Errorf("failed to raise ambient capabilities: %w", err)
	}

	if t.Profile != nil {
		if err := t.Profile.InheritProfile(); err != nil {
			return fmt.Errorf("failed to inherit lsm profile: %w", err)
		}
	}
	return nil
}
