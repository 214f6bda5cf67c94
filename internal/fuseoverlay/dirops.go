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
	"os"
	"syscall"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"golang.org/x/sys/unix"
)

type fuseutilDirentType = fuseutil.DirentType

// OpenDir snapshots the directory's children, matching CntrFs::opendir
// (opens "." relative to the inode's fd, then fdopendir) — but since Go
// exposes no low-level seekdir/telldir, the whole listing is read once and
// indexed by position. Because the snapshot is a plain array rather than a
// live stream, ReadDir can jump straight to any op.Offset by indexing into
// it directly, which already gives the "reseek and discard the staged
// entry" behaviour the kernel's seekdir contract asks for without needing
// any stream-offset bookkeeping of its own.
//
// jacobsa/fuse's ReadDirOp is a plain READDIR, not READDIRPLUS: the kernel
// takes no lookup reference on the inode numbers reported here and will
// never send a matching ForgetInode for them. So, unlike lookupChild (used
// by LookUpInode/MkNode/MkDir/CreateSymlink/CreateLink) and CreateFile,
// entries
// here are stat'd for their type and real inode number only — never passed
// through inodeTable.lookupOrRegister. Registering them would open and hold
// an O_PATH fd and bump lookupCount once per directory listing with no
// corresponding forget, leaking both forever.
func (fs *fileSystem) OpenDir(op *fuseops.OpenDirOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}

	dirFd, err := unix.Openat(in.Fd(), ".", unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return err
	}
	f := os.NewFile(uintptr(dirFd), ".")
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		return err
	}

	entries := make([]fuseChildEntry, 0, len(names))
	for _, name := range names {
		var st unix.Stat_t
		if err := unix.Fstatat(in.Fd(), name, &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
			continue // entry may have been removed concurrently
		}
		entries = append(entries, fuseChildEntry{
			inode: fuseops.InodeID(st.Ino),
			name:  name,
			typ:   direntType(st.Mode),
		})
	}

	handleID := fs.allocHandleID()
	fs.handlesMu.Lock()
	fs.dirHandles[handleID] = &dirHandle{entries: entries}
	fs.handlesMu.Unlock()
	op.Handle = handleID
	return nil
}

func direntType(mode uint32) fuseutilDirentType {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return fuseutil.DT_Directory
	case unix.S_IFLNK:
		return fuseutil.DT_Link
	default:
		return fuseutil.DT_File
	}
}

// ReadDir streams dh.entries starting at op.Offset. The Inode field of each
// dirent is the child's real host inode number, not a registered
// inodeTable id — it is informational only (as plain READDIR reports to
// e.g. getdents' d_ino); the kernel issues a separate LookUpInode before it
// ever needs a usable fuseops.InodeID for one of these names.
func (fs *fileSystem) ReadDir(op *fuseops.ReadDirOp) error {
	fs.handlesMu.Lock()
	dh := fs.dirHandles[op.Handle]
	fs.handlesMu.Unlock()
	if dh == nil {
		return syscall.EBADF
	}

	offset := int(op.Offset)
	var data []byte
	for i := offset; i < len(dh.entries); i++ {
		e := dh.entries[i]
		n := fuseutil.AppendDirent(data, fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  e.inode,
			Name:   e.name,
			Type:   e.typ,
		})
		if len(n) > op.Size {
			break
		}
		data = n
	}
	if len(data) > op.Size {
		data = data[:op.Size]
	}
	op.Data = data
	return nil
}

func (fs *fileSystem) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	fs.handlesMu.Lock()
	delete(fs.dirHandles, op.Handle)
	fs.handlesMu.Unlock()
	return nil
}
