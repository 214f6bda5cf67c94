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
	"syscall"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"
)

func (fs *fileSystem) fillEntry(entry *fuseops.ChildInodeEntry, in *inode, attrs fuseops.InodeAttributes) {
	entry.Child = in.id
	entry.Attributes = attrs
	entry.AttributesExpiration = time.Now().Add(ttl)
	entry.EntryExpiration = time.Now().Add(ttl)
}

// MkNode creates a device/FIFO/socket node, mirroring CntrFs::mknod
// (original_source/src/fs.rs), which calls mknodat then reuses lookup.
func (fs *fileSystem) MkNode(op *fuseops.MkNodeOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}
	if err := fs.asCaller(func() error {
		return unix.Mknodat(parent.Fd(), op.Name, uint32(op.Mode), int(op.Rdev))
	}); err != nil {
		return err
	}
	child, attrs, err := fs.lookupChild(parent, op.Name)
	if err != nil {
		return err
	}
	fs.fillEntry(&op.Entry, child, attrs)
	return nil
}

func (fs *fileSystem) MkDir(op *fuseops.MkDirOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}
	if err := fs.asCaller(func() error {
		return unix.Mkdirat(parent.Fd(), op.Name, uint32(op.Mode.Perm()))
	}); err != nil {
		return err
	}
	child, attrs, err := fs.lookupChild(parent, op.Name)
	if err != nil {
		return err
	}
	fs.fillEntry(&op.Entry, child, attrs)
	return nil
}

// CreateFile opens (and creates) a file in one step, mirroring CntrFs::create.
func (fs *fileSystem) CreateFile(op *fuseops.CreateFileOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}

	var fd int
	err := fs.asCaller(func() error {
		var err error
		fd, err = unix.Openat(parent.Fd(), op.Name, int(op.Flags)|unix.O_CREAT|unix.O_NOFOLLOW, uint32(op.Mode.Perm()))
		return err
	})
	if err != nil {
		return err
	}

	pathFd, err := unix.Openat(parent.Fd(), op.Name, unix.O_PATH|unix.O_NOFOLLOW, 0)
	if err != nil {
		unix.Close(fd)
		return err
	}
	st, err := statAt(pathFd)
	if err != nil {
		unix.Close(fd)
		unix.Close(pathFd)
		return err
	}
	key := devIno{dev: uint64(st.Dev), ino: st.Ino}
	child := fs.inodes.lookupOrRegister(key, pathFd)

	fs.fillEntry(&op.Entry, child, attrFromStat(&st))

	handleID := fs.allocHandleID()
	fs.handlesMu.Lock()
	fs.fileHandles[handleID] = &fileHandle{fd: fd}
	fs.handlesMu.Unlock()
	op.Handle = handleID

	return nil
}

func (fs *fileSystem) CreateSymlink(op *fuseops.CreateSymlinkOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}
	if err := fs.asCaller(func() error {
		return unix.Symlinkat(op.Target, parent.Fd(), op.Name)
	}); err != nil {
		return err
	}
	child, attrs, err := fs.lookupChild(parent, op.Name)
	if err != nil {
		return err
	}
	fs.fillEntry(&op.Entry, child, attrs)
	return nil
}

// CreateLink creates a hard link, mirroring CntrFs::link, which uses
// linkat with AT_EMPTY_PATH against the O_PATH source fd.
func (fs *fileSystem) CreateLink(op *fuseops.CreateLinkOp) error {
	target := fs.inodes.get(op.Target)
	newParent := fs.inodes.get(op.Parent)
	if target == nil || newParent == nil {
		return syscall.ENOENT
	}
	if err := fs.asCaller(func() error {
		return unix.Linkat(target.Fd(), "", newParent.Fd(), op.Name, unix.AT_EMPTY_PATH)
	}); err != nil {
		return err
	}
	child, attrs, err := fs.lookupChild(newParent, op.Name)
	if err != nil {
		return err
	}
	fs.fillEntry(&op.Entry, child, attrs)
	return nil
}
