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

package fuseoverlay

import (
	"sync"

	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"
)

// devIno identifies a kernel inode on the backing filesystem, used to
// dedupe repeated lookups of the same file into the same fuseops.InodeID.
type devIno struct {
	dev uint64
	ino uint64
}

// inode tracks one entry in the overlay's inode table. fd is an O_PATH
// file descriptor opened with O_NOFOLLOW at lookup time; it is reopened
// with real flags on demand by file/directory handles (the
// "O_PATH-upgrade-on-demand" pattern — O_PATH alone can stat, chmod and
// openat(2) relative to itself, but cannot read or write).
type inode struct {
	mu sync.RWMutex

	id      fuseops.InodeID
	key     devIno
	fd      int
	deleted bool

	// lookupCount mirrors a kernel-style nlookup counter: the
	// kernel's reference count on this inode ID, incremented on every
	// LookUpInode/MkDir/CreateFile/CreateSymlink/CreateLink/MkNode reply and
	// decremented by ForgetInode. It reaches zero exactly when the kernel
	// has forgotten every dentry that referenced this inode.
	lookupCount uint64
}

func (in *inode) Fd() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.fd
}

// upgradeFd opens a new fd for the inode through /proc/self/fd/<fd> using
// real flags and returns it. The cached O_PATH fd stays in place and is not
// replaced; the caller owns the returned fd and closes it.
func (in *inode) upgradeFd(flags int) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	path := procSelfFd(in.fd)
	newFd, err := unix.Open(path, flags, 0)
	if err != nil {
		return -1, err
	}
	return newFd, nil
}

// inodeTable is the dense-integer inode allocator and dev/ino dedup index.
// InodeIDs are allocated from a monotonically increasing counter and never
// reused while a dentry might still reference them, rather than aliasing a
// raw pointer as the inode number, which would not survive Go's moving
// garbage collector.
type inodeTable struct {
	mu          sync.Mutex
	byID        map[fuseops.InodeID]*inode
	byDevIno    map[devIno]*inode
	nextInodeID fuseops.InodeID
}

func newInodeTable(rootFd int) *inodeTable {
	root := &inode{
		id:          fuseops.RootInodeID,
		fd:          rootFd,
		lookupCount: 1,
	}
	return &inodeTable{
		byID:        map[fuseops.InodeID]*inode{fuseops.RootInodeID: root},
		byDevIno:    map[devIno]*inode{},
		nextInodeID: fuseops.RootInodeID + 1,
	}
}

// lookupOrRegister returns the inode for key, bumping its lookup count, or
// registers a fresh one owning fd if key is unseen. When an existing inode
// is returned, fd is closed since it is now redundant.
func (t *inodeTable) lookupOrRegister(key devIno, fd int) *inode {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byDevIno[key]; ok {
		existing.mu.Lock()
		existing.lookupCount++
		existing.mu.Unlock()
		unix.Close(fd)
		return existing
	}

	id := t.nextInodeID
	t.nextInodeID++

	in := &inode{id: id, key: key, fd: fd, lookupCount: 1}
	t.byID[id] = in
	t.byDevIno[key] = in
	return in
}

func (t *inodeTable) get(id fuseops.InodeID) *inode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byID[id]
}

// forget decrements an inode's lookup count by n, removing it from the
// table once the count reaches zero.
func (t *inodeTable) forget(id fuseops.InodeID, n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	in, ok := t.byID[id]
	if !ok {
		return
	}

	in.mu.Lock()
	if n >= in.lookupCount {
		in.lookupCount = 0
	} else {
		in.lookupCount -= n
	}
	remaining := in.lookupCount
	fd := in.fd
	in.mu.Unlock()

	if remaining > 0 {
		return
	}

	delete(t.byID, id)
	delete(t.byDevIno, in.key)
	unix.Close(fd)
}
