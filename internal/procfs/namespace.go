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
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

// NSKind is a kernel namespace kind, matching the entry name under
// /proc/<pid>/ns/<name>.
type NSKind string

const (
	Mount  NSKind = "mnt"
	UTS    NSKind = "uts"
	User   NSKind = "user"
	PID    NSKind = "pid"
	Net    NSKind = "net"
	IPC    NSKind = "ipc"
	Cgroup NSKind = "cgroup"
)

// All lists every namespace kind this system understands, in no particular
// order. EntryOrder below fixes the order in which non-mount namespaces are
// entered.
var All = []NSKind{Mount, UTS, User, PID, Net, IPC, Cgroup}

// EntryOrder is the order non-mount namespaces are applied in once the
// mount namespace has already been entered: UTS, CGROUP, PID, NET, IPC,
// USER last, because joining USER drops CAP_SYS_ADMIN in the old mount
// namespace and would forbid the mount work that must happen first.
var EntryOrder = []NSKind{UTS, Cgroup, PID, Net, IPC, User}

func nsPath(kind NSKind, pid int) string {
	if pid == 0 {
		return filepath.Join("self", "ns", string(kind))
	}
	return filepath.Join(fmt.Sprint(pid), "ns", string(kind))
}

// SupportedNamespaces lists the namespace kinds the running kernel exposes
// under /proc/self/ns, intersected with the kinds this system knows about.
func SupportedNamespaces() ([]NSKind, error) {
	dir := filepath.Join(BasePath(), "self", "ns")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errkind.Wrap(errkind.Namespace, "list "+dir, err)
	}
	byName := make(map[string]NSKind, len(All))
	for _, k := range All {
		byName[string(k)] = k
	}
	var out []NSKind
	for _, e := range entries {
		if k, ok := byName[e.Name()]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

// Contains reports whether kinds contains k.
func Contains(kinds []NSKind, k NSKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Namespace owns a handle to a kernel namespace object. Apply consumes it.
type Namespace struct {
	Kind NSKind
	file *os.File
}

// Open opens the namespace handle of kind for pid (0 meaning the calling
// process, i.e. "self").
func Open(kind NSKind, pid int) (*Namespace, error) {
	path := filepath.Join(BasePath(), nsPath(kind, pid))
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Namespace, "open "+path, err)
	}
	return &Namespace{Kind: kind, file: f}, nil
}

// FromFile wraps an already-open namespace file descriptor, e.g. one
// received over internal/ipc.
func FromFile(kind NSKind, f *os.File) *Namespace {
	return &Namespace{Kind: kind, file: f}
}

// File returns the underlying file, for passing as an SCM_RIGHTS ancillary
// message. Ownership remains with the Namespace.
func (n *Namespace) File() *os.File { return n.file }

// IsSame reports whether the calling process and pid already share the
// namespace of this kind, determined by comparing the /proc/<pid>/ns/<kind>
// and /proc/self/ns/<kind> symlink targets.
func IsSame(kind NSKind, pid int) bool {
	target, err := os.Readlink(filepath.Join(BasePath(), nsPath(kind, pid)))
	if err != nil {
		return false
	}
	self, err := os.Readlink(filepath.Join(BasePath(), nsPath(kind, 0)))
	if err != nil {
		return false
	}
	return target == self
}

// Apply moves the calling thread into the namespace and consumes the
// handle. The caller must have pinned the calling goroutine to its OS
// thread (runtime.LockOSThread) before calling Apply, since setns affects
// only the calling kernel thread.
func (n *Namespace) Apply() error {
	defer n.file.Close()
	if err := unix.Setns(int(n.file.Fd()), 0); err != nil {
		return errkind.Wrap(errkind.Namespace, fmt.Sprintf("setns(%s)", n.Kind), err)
	}
	return nil
}

// Close releases the handle without entering the namespace.
func (n *Namespace) Close() error {
	return n.file.Close()
}
