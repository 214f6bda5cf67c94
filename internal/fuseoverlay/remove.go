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

func (fs *fileSystem) Unlink(op *fuseops.UnlinkOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}
	return fs.asCaller(func() error {
		return unix.Unlinkat(parent.Fd(), op.Name, 0)
	})
}

func (fs *fileSystem) RmDir(op *fuseops.RmDirOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}
	return fs.asCaller(func() error {
		return unix.Unlinkat(parent.Fd(), op.Name, unix.AT_REMOVEDIR)
	})
}

func (fs *fileSystem) Rename(op *fuseops.RenameOp) error {
	oldParent := fs.inodes.get(op.OldParent)
	newParent := fs.inodes.get(op.NewParent)
	if oldParent == nil || newParent == nil {
		return syscall.ENOENT
	}
	return fs.asCaller(func() error {
		return unix.Renameat(oldParent.Fd(), op.OldName, newParent.Fd(), op.NewName)
	})
}
