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

	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"
)

// OpenFile reopens the inode's cached O_PATH fd through /proc/self/fd with
// the caller's real flags, mirroring CntrFs::open
// (original_source/src/fs.rs), which re-resolves via /proc/self/fd rather
// than keeping a second persistent fd per inode.
func (fs *fileSystem) OpenFile(op *fuseops.OpenFileOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	var fd int
	err := fs.asCaller(func() error {
		var err error
		fd, err = unix.Open(procSelfFd(in.Fd()), int(op.Flags), 0)
		return err
	})
	if err != nil {
		return err
	}

	handleID := fs.allocHandleID()
	fs.handlesMu.Lock()
	fs.fileHandles[handleID] = &fileHandle{fd: fd}
	fs.handlesMu.Unlock()
	op.Handle = handleID
	op.KeepPageCache = true
	return nil
}

func (fs *fileSystem) getFileHandle(id fuseops.HandleID) *fileHandle {
	fs.handlesMu.Lock()
	defer fs.handlesMu.Unlock()
	return fs.fileHandles[id]
}

func (fs *fileSystem) ReadFile(op *fuseops.ReadFileOp) error {
	h := fs.getFileHandle(op.Handle)
	if h == nil {
		return syscall.EBADF
	}
	buf := make([]byte, op.Size)
	n, err := unix.Pread(h.fd, buf, op.Offset)
	if err != nil {
		return err
	}
	op.BytesRead = n
	op.Data = buf[:n]
	return nil
}

func (fs *fileSystem) WriteFile(op *fuseops.WriteFileOp) error {
	h := fs.getFileHandle(op.Handle)
	if h == nil {
		return syscall.EBADF
	}
	n, err := unix.Pwrite(h.fd, op.Data, op.Offset)
	if err != nil {
		return err
	}
	_ = n
	return nil
}

// FlushFile mirrors CntrFs::flush, whose dup()+close() trick exists to
// surface any delayed write-back error on close(2) without closing the fd
// the kernel still considers open.
func (fs *fileSystem) FlushFile(op *fuseops.FlushFileOp) error {
	h := fs.getFileHandle(op.Handle)
	if h == nil {
		return syscall.EBADF
	}
	dup, err := unix.Dup(h.fd)
	if err != nil {
		return err
	}
	return unix.Close(dup)
}

func (fs *fileSystem) SyncFile(op *fuseops.SyncFileOp) error {
	h := fs.getFileHandle(op.Handle)
	if h == nil {
		return syscall.EBADF
	}
	return unix.Fsync(h.fd)
}

func (fs *fileSystem) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) error {
	fs.handlesMu.Lock()
	h, ok := fs.fileHandles[op.Handle]
	delete(fs.fileHandles, op.Handle)
	fs.handlesMu.Unlock()
	if ok {
		return unix.Close(h.fd)
	}
	return nil
}
