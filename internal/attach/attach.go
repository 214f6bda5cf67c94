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

// Package attach is the top-level orchestrator cmd/cntr's "attach" command
// drives: resolve a container identifier to a pid, enter its namespaces,
// install the filesystem overlay, start the exec daemon for follow-up `cntr
// exec` calls, and attach an interactive shell over a pty.
//
// The namespace entry and the overlay handoff run on two separate OS
// threads, pinned with runtime.LockOSThread, communicating over an
// internal/ipc socketpair: one thread ("stager") keeps a handle to the
// host's pre-attach root open as a file descriptor before it enters the
// container, then installs the overlay exposing that host root once inside;
// the other ("entrant") grafts the container's own captured root back under
// /var/lib/cntr and chroots there. Mount namespaces are per-thread, so the
// stager's pre-entry fd remains valid (fd tables are shared process-wide)
// even once its thread has moved into the container.
package attach

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/config"
	"github.com/cntr-go/cntr/internal/container"
	"github.com/cntr-go/cntr/internal/daemon"
	"github.com/cntr-go/cntr/internal/entry"
	"github.com/cntr-go/cntr/internal/errkind"
	"github.com/cntr-go/cntr/internal/fuseoverlay"
	"github.com/cntr-go/cntr/internal/ipc"
	"github.com/cntr-go/cntr/internal/logger"
	"github.com/cntr-go/cntr/internal/mountapi"
	"github.com/cntr-go/cntr/internal/mountns"
	"github.com/cntr-go/cntr/internal/procfs"
	"github.com/cntr-go/cntr/internal/pty"
	"github.com/cntr-go/cntr/internal/telemetry"
)

// Options configures one attach invocation.
type Options struct {
	ContainerID string
	Runtimes    []config.RuntimeKind

	// Command/Arguments describe the initial shell to run. Command is the
	// empty string to fall back to the container's own default shell.
	Command   string
	Arguments []string
}

// Run resolves opts.ContainerID to a pid, enters its namespaces, installs
// the overlay, starts the exec daemon, and attaches an interactive shell
// until it exits. It returns once the shell has exited and the overlay has
// been torn down.
func Run(ctx context.Context, opts Options) error {
	ctx, span := telemetry.Start(ctx, "enter_container")
	defer span.End()

	pid, err := container.Resolve(ctx, opts.ContainerID, opts.Runtimes)
	if err != nil {
		return err
	}
	logger.Infof("resolved %q to pid %d", opts.ContainerID, pid)

	target, err := entry.Gather(pid)
	if err != nil {
		return err
	}

	parentSock, childSock, err := ipc.NewPair()
	if err != nil {
		return err
	}

	var (
		wg         sync.WaitGroup
		stageErr   error
		entrantErr error
		received   *mountns.Received
		unmount    func() error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer childSock.Close()
		runtime.LockOSThread()
		// Deliberately never unlocked: once this thread has entered the
		// container's mount namespace it must never be handed back to an
		// unrelated goroutine by the Go scheduler.

		hostRootFD, err := unix.Open("/", unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if err != nil {
			stageErr = errkind.Wrap(errkind.Mount, "open host root", err)
			return
		}
		hostRootPath := fmt.Sprintf("/proc/self/fd/%d", hostRootFD)

		oldNamespace, err := procfs.Open(procfs.Mount, 0)
		if err != nil {
			stageErr = err
			return
		}

		if err := entry.Enter(target, target.Status.UID, target.Status.GID); err != nil {
			stageErr = err
			return
		}

		staging, err := mountns.NewStaging(oldNamespace)
		if err != nil {
			stageErr = err
			return
		}
		if err := mountns.PrivatizeRoot(); err != nil {
			stageErr = err
			return
		}
		if err := staging.CaptureRoot(); err != nil {
			stageErr = err
			return
		}

		um, err := installOverlay(ctx, hostRootPath, staging.Mountpoint, target.Status.UID, target.Status.GID)
		if err != nil {
			stageErr = err
			staging.Cleanup()
			return
		}
		unmount = um

		if err := staging.Send(childSock); err != nil {
			stageErr = err
		}
	}()

	go func() {
		defer wg.Done()
		defer parentSock.Close()
		runtime.LockOSThread()

		r, err := mountns.Receive(parentSock)
		if err != nil {
			entrantErr = err
			return
		}
		if err := mountns.Graft(r); err != nil {
			entrantErr = err
			return
		}
		if err := mountns.SetupBindMounts(mountns.EssentialMounts); err != nil {
			entrantErr = err
			return
		}
		received = r
	}()

	wg.Wait()

	if stageErr != nil {
		return stageErr
	}
	if entrantErr != nil {
		return entrantErr
	}
	if received == nil {
		return errkind.Wrap(errkind.Mount, "attach", fmt.Errorf("overlay handoff produced no result"))
	}

	d, err := daemon.Listen(pid)
	if err != nil {
		return err
	}
	defer d.Close()
	go func() {
		if err := d.Serve(); err != nil {
			logger.Warnf("exec daemon stopped: %v", err)
		}
	}()
	defer func() {
		if unmount == nil {
			return
		}
		if err := unmount(); err != nil {
			logger.Warnf("failed to unmount overlay: %v", err)
		}
	}()

	return attachShell(pid, opts)
}

// installOverlay exposes source (a /proc/self/fd path to the pre-attach
// host root) at target, preferring the kernel mount API when available and
// falling back to the FUSE pass-through filesystem otherwise. It returns a
// function that tears the overlay back down.
func installOverlay(ctx context.Context, source, target string, uid, gid uint32) (func() error, error) {
	if mountapi.Available() {
		fd, err := mountapi.Clone(source)
		if err != nil {
			return nil, err
		}
		defer unix.Close(fd)
		if err := mountapi.Graft(fd, target); err != nil {
			return nil, err
		}
		return func() error {
			return unix.Unmount(target, unix.MNT_DETACH)
		}, nil
	}

	mounted, err := fuseoverlay.Mount(ctx, source, target, uid, gid)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := mounted.Wait(); err != nil {
			logger.Warnf("fuse overlay terminated: %v", err)
		}
	}()
	return mounted.Unmount, nil
}

// attachShell allocates a pty, raw-modes the operator's terminal, runs the
// requested command (or the container's default shell) attached to the
// slave end, and forwards bytes until it exits.
func attachShell(pid int, opts Options) error {
	_, span := telemetry.Start(context.Background(), "exec_request")
	defer span.End()

	pair, err := pty.Open()
	if err != nil {
		return err
	}
	defer pair.Master.Close()

	slave, err := os.OpenFile(pair.SlavePath(), os.O_RDWR, 0)
	if err != nil {
		return errkind.Wrap(errkind.Mount, "open pty slave", err)
	}
	defer slave.Close()

	restore, err := pty.RawMode(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer restore()

	stop := make(chan struct{})
	defer close(stop)
	go pair.WatchResize(int(os.Stdin.Fd()), stop)

	req := &daemon.ExecRequest{
		Command:    opts.Command,
		HasCommand: opts.Command != "",
		Arguments:  opts.Arguments,
	}

	execErr := make(chan error, 1)
	go func() {
		execErr <- daemon.Execute(pid, req, nil, nil, nil, slave)
	}()

	if err := pty.Forward(int(pair.Master.Fd()), int(os.Stdin.Fd()), int(os.Stdout.Fd())); err != nil {
		logger.Warnf("forward: %v", err)
	}

	return <-execErr
}
