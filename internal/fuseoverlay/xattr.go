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
	"bytes"
	"syscall"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/pkg/xattr"
)

// xattr operations reopen the inode's O_PATH fd through /proc/self/fd,
// since extended attribute syscalls require a regular (non-O_PATH) fd or
// a path, mirroring CntrFs::getxattr/setxattr/removexattr
// (original_source/src/fs.rs, original_source/src/xattr.rs).
func (fs *fileSystem) GetXattr(op *fuseops.GetXattrOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	path := procSelfFd(in.Fd())

	// Reading an ACL/security xattr needs the host's own privilege, not the
	// container user's, since the container user may not be the file's
	// owner on the host side of the overlay.
	var value []byte
	err := fs.asRoot(func() error {
		var err error
		value, err = xattr.Get(path, op.Name)
		return err
	})
	if err != nil {
		return mapXattrError(err)
	}
	if op.Size == 0 {
		op.BytesRead = len(value)
		return nil
	}
	if len(value) > op.Size {
		return syscall.ERANGE
	}
	copy(op.Dst, value)
	op.BytesRead = len(value)
	return nil
}

func (fs *fileSystem) SetXattr(op *fuseops.SetXattrOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	path := procSelfFd(in.Fd())
	if err := fs.asRoot(func() error {
		return xattr.Set(path, op.Name, op.Value)
	}); err != nil {
		return mapXattrError(err)
	}
	return nil
}

func (fs *fileSystem) ListXattr(op *fuseops.ListXattrOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	path := procSelfFd(in.Fd())

	var names []string
	err := fs.asRoot(func() error {
		var err error
		names, err = xattr.List(path)
		return err
	})
	if err != nil {
		return mapXattrError(err)
	}

	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte(0)
	}
	if op.Size == 0 {
		op.BytesRead = buf.Len()
		return nil
	}
	if buf.Len() > op.Size {
		return syscall.ERANGE
	}
	copy(op.Dst, buf.Bytes())
	op.BytesRead = buf.Len()
	return nil
}

func (fs *fileSystem) RemoveXattr(op *fuseops.RemoveXattrOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	path := procSelfFd(in.Fd())
	if err := fs.asRoot(func() error {
		return xattr.Remove(path, op.Name)
	}); err != nil {
		return mapXattrError(err)
	}
	return nil
}

func mapXattrError(err error) error {
	if xerr, ok := err.(*xattr.Error); ok {
		return xerr.Err
	}
	return err
}
