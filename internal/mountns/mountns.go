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

// Package mountns stages the filesystem overlay into a private mount
// namespace: it unshares mounts, recursively re-privatizes the root,
// bind-mounts the pre-overlay root aside, installs the overlay (FUSE or the
// kernel mount API, chosen by the caller), then grafts the staged tree back
// under /var/lib/cntr and chroots into it.
package mountns

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
	"github.com/cntr-go/cntr/internal/ipc"
	"github.com/cntr-go/cntr/internal/procfs"
)

// cntrMountPoint is the fixed path where the pre-overlay root ends up once
// grafted back under the overlaid tree.
const cntrMountPoint = "var/lib/cntr"

// EssentialMounts are bind-mounted from the pre-overlay root back over the
// overlaid root after the overlay is installed, so identity/DNS/time files
// and the live /dev, /sys, /proc reflect the attaching host rather than
// whatever the container image shipped.
var EssentialMounts = []string{
	"etc/passwd",
	"etc/group",
	"etc/resolv.conf",
	"etc/hosts",
	"etc/hostname",
	"etc/localtime",
	"etc/zoneinfo",
	"dev",
	"sys",
	"proc",
}

// Staging holds the two temporary mountpoints and the namespace handle to
// switch back to once the overlay has been handed across.
type Staging struct {
	OldNamespace   *procfs.Namespace
	Mountpoint     string
	TempMountpoint string
}

func tempMountpoint() (string, error) {
	base := os.TempDir()
	if _, err := os.Stat(base); err != nil {
		base = "/dev/shm"
		if _, err := os.Stat(base); err != nil {
			base = "/tmp"
		}
	}
	dir := filepath.Join(base, "cntr."+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", errkind.Wrap(errkind.Mount, "mkdir "+dir, err)
	}
	return dir, nil
}

// NewStaging unshares the mount namespace of the calling OS thread and
// creates the two staging directories the overlay installer and the
// cross-process handoff need. The caller must have pinned the calling
// goroutine with runtime.LockOSThread first.
func NewStaging(oldNamespace *procfs.Namespace) (*Staging, error) {
	mountpoint, err := tempMountpoint()
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary mountpoint: %w", err)
	}
	tempMountpoint, err := tempMountpoint()
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary mountpoint: %w", err)
	}

	if err := unix.Unshare(unix.CLONE_NEWNS); err != nil {
		return nil, errkind.Wrap(errkind.Mount, "unshare(CLONE_NEWNS)", err)
	}

	return &Staging{OldNamespace: oldNamespace, Mountpoint: mountpoint, TempMountpoint: tempMountpoint}, nil
}

// PrivatizeRoot recursively remounts / as MS_PRIVATE, so none of the bind
// mounts this package performs propagate back to the host's original mount
// namespace.
func PrivatizeRoot() error {
	if err := unix.Mount("none", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return errkind.Wrap(errkind.Mount, "unable to bind mount /", err)
	}
	return nil
}

// CaptureRoot recursively bind-mounts the current root onto the temp
// staging mountpoint, giving the overlay installer a stable, unmodified
// copy of the pre-overlay filesystem tree to read from and graft back later.
func (s *Staging) CaptureRoot() error {
	if err := unix.Mount("/", s.TempMountpoint, "", unix.MS_REC|unix.MS_BIND, ""); err != nil {
		return errkind.Wrap(errkind.Mount, "unable to move container mounts to new mountpoint", err)
	}
	return nil
}

// Send hands the staging paths and the old namespace handle across the ipc
// channel to the side of the process that will graft and chroot.
func (s *Staging) Send(sock *ipc.Socket) error {
	err := sock.Send([][]byte{[]byte(s.Mountpoint), {0}, []byte(s.TempMountpoint)}, []*os.File{s.OldNamespace.File()})
	if err != nil {
		s.Cleanup()
		return err
	}
	return nil
}

// Cleanup switches back to the pre-attach mount namespace and removes the
// staging directories. Failures are logged, not returned: cleanup runs on
// an error path and must not itself mask the original failure.
func (s *Staging) Cleanup() {
	if err := s.OldNamespace.Apply(); err != nil {
		slog.Warn("failed to switch back to old mount namespace", "error", err)
		return
	}
	if err := os.Remove(s.Mountpoint); err != nil {
		slog.Warn("failed to cleanup mountpoint", "path", s.Mountpoint, "error", err)
	}
	if err := os.Remove(s.TempMountpoint); err != nil {
		slog.Warn("failed to cleanup temporary mountpoint", "path", s.TempMountpoint, "error", err)
	}
}

// Received is the receiving side's view of a Staging handed across ipc.
type Received struct {
	OldNamespace   *procfs.Namespace
	Mountpoint     string
	TempMountpoint string
}

// Receive reconstructs a Received from a Staging bundle sent by Send: the
// two staging paths (NUL-separated in the payload) and the old namespace
// handle (the sole ancillary fd). The two halves of this handoff run as
// separate goroutines, each pinned to its own OS thread by
// runtime.LockOSThread — mount namespaces are per-thread, so the sending
// side's thread can stay in the host mount namespace for the lifetime of
// the overlay while the receiving side's thread enters the container.
// Mountpoint/TempMountpoint travel as the absolute staging directory paths
// that NewStaging created.
func Receive(sock *ipc.Socket) (*Received, error) {
	payload, files, err := sock.Receive(0)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errkind.Wrap(errkind.Mount, "receive staging", fmt.Errorf("no namespace handle received"))
	}
	sep := bytes.IndexByte(payload, 0)
	if sep < 0 {
		return nil, errkind.Wrap(errkind.Mount, "receive staging", fmt.Errorf("malformed staging payload"))
	}
	return &Received{
		Mountpoint:     string(payload[:sep]),
		TempMountpoint: string(payload[sep+1:]),
		OldNamespace:   procfs.FromFile(procfs.Mount, files[0]),
	}, nil
}

// Graft moves the captured root (TempMountpoint) under the overlaid root's
// /var/lib/cntr, then chdirs and chroots into the overlaid root.
func Graft(r *Received) error {
	target := filepath.Join(r.Mountpoint, cntrMountPoint)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return errkind.Wrap(errkind.Mount, "mkdir "+target, err)
	}
	if err := unix.Mount(r.TempMountpoint, target, "", unix.MS_REC|unix.MS_MOVE, ""); err != nil {
		return errkind.Wrap(errkind.Mount, "unable to move container mounts to new mountpoint", err)
	}
	if err := unix.Chdir(r.Mountpoint); err != nil {
		return errkind.Wrap(errkind.Mount, "failed to chdir to new mountpoint", err)
	}
	if err := unix.Chroot(r.Mountpoint); err != nil {
		return errkind.Wrap(errkind.Mount, "failed to chroot to new mountpoint", err)
	}
	return nil
}

// mountRoot is "/" in production; tests point it at a scratch directory so
// SetupBindMounts' existence/kind checks can run without a real chroot.
var mountRoot = "/"

// SetupBindMounts bind-mounts each of mounts from /var/lib/cntr/<m> back
// over /<m>, skipping any pair that doesn't exist on both sides or whose
// kinds don't line up (a file can only shadow a non-directory mountpoint, a
// directory only another directory). A failed individual bind mount is
// logged and skipped: one unavailable essential path (e.g. no
// etc/zoneinfo in a minimal image) must never abort the whole attach.
func SetupBindMounts(mounts []string) error {
	for _, m := range mounts {
		mountpoint := filepath.Join(mountRoot, m)
		source := filepath.Join(mountRoot, cntrMountPoint, m)

		mountpointInfo, err := os.Stat(mountpoint)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errkind.Wrap(errkind.Mount, "stat "+mountpoint, err)
		}
		sourceInfo, err := os.Stat(source)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errkind.Wrap(errkind.Mount, "stat "+source, err)
		}

		compatible := (!sourceInfo.IsDir() && !mountpointInfo.IsDir()) ||
			(sourceInfo.IsDir() && mountpointInfo.IsDir())
		if !compatible {
			continue
		}

		if err := unix.Mount(source, mountpoint, "", unix.MS_REC|unix.MS_BIND, ""); err != nil {
			slog.Warn("could not bind mount", "mountpoint", mountpoint, "error", err)
		}
	}
	return nil
}
