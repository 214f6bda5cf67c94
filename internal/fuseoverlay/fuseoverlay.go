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

// Package fuseoverlay implements a pass-through filesystem that exposes a
// directory tree (the operator's host root, bind-mounted into the staging
// mount namespace) through FUSE. Every inode is backed by an O_PATH file
// descriptor opened relative to its parent, so the overlay never resolves
// or stores full paths — an fd-table keyed by inode ID, rather than a
// path-keyed tree.
package fuseoverlay

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"

	"github.com/cntr-go/cntr/internal/errkind"
)

const ttl = time.Second

// fileSystem implements fuseutil.FileSystem (via fuseutil.NewFileSystemServer)
// as a thin wrapper over an inodeTable of O_PATH descriptors.
type fileSystem struct {
	inodes *inodeTable

	// uid/gid are the container's own host-mapped owning identity (see
	// procfs.ProcStatus), the fsuid/fsgid every op other than a privileged
	// metadata probe runs as.
	uid, gid uint32

	handlesMu    sync.Mutex
	fileHandles  map[fuseops.HandleID]*fileHandle
	dirHandles   map[fuseops.HandleID]*dirHandle
	nextHandleID fuseops.HandleID
}

// asCaller runs fn with fsuid/fsgid set to the container's owning identity.
func (fs *fileSystem) asCaller(fn func() error) error {
	return asUser(fs.uid, fs.gid, fn)
}

// asRoot runs fn with fsuid/fsgid raised back to 0/0, for the extended
// attribute operations (xattr.go), whose targets the container's own uid
// may not own, so they need the host's own privilege rather than the
// container user's.
func (fs *fileSystem) asRoot(fn func() error) error {
	return asUser(0, 0, fn)
}

// fileHandle is a real (non-O_PATH) fd opened for read/write traffic.
type fileHandle struct {
	fd int
}

// dirHandle snapshots a directory's children at OpenDir time. The FUSE
// kernel contract (see fuseops.ReadDirOp) only promises that rewinddir
// behaves like a fresh opendir, so caching one listing per handle avoids
// needing real seekdir/telldir bookkeeping.
type dirHandle struct {
	entries []fuseChildEntry
}

type fuseChildEntry struct {
	inode fuseops.InodeID
	name  string
	typ   fuseutilDirentType
}

// New constructs the overlay filesystem rooted at rootPath (the captured
// host root, as bind-mounted by internal/mountns into the staging
// namespace), serving every request as uid/gid (the container's own
// host-mapped owning identity, per procfs.ProcStatus).
func New(rootPath string, uid, gid uint32) (*fileSystem, error) {
	fd, err := unix.Open(rootPath, unix.O_PATH|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, errkind.Wrap(errkind.Overlay, "open root "+rootPath, err)
	}
	return &fileSystem{
		inodes:       newInodeTable(fd),
		uid:          uid,
		gid:          gid,
		fileHandles:  map[fuseops.HandleID]*fileHandle{},
		dirHandles:   map[fuseops.HandleID]*dirHandle{},
		nextHandleID: 1,
	}, nil
}

func (fs *fileSystem) allocHandleID() fuseops.HandleID {
	fs.handlesMu.Lock()
	defer fs.handlesMu.Unlock()
	id := fs.nextHandleID
	fs.nextHandleID++
	return id
}

func procSelfFd(fd int) string {
	return fmt.Sprintf("/proc/self/fd/%d", fd)
}

func statAt(fd int) (unix.Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return st, err
	}
	return st, nil
}

func attrFromStat(st *unix.Stat_t) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Size:   uint64(st.Size),
		Nlink:  uint32(st.Nlink),
		Mode:   modeFromStat(st.Mode),
		Atime:  time.Unix(st.Atim.Sec, st.Atim.Nsec),
		Mtime:  time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		Ctime:  time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
		Uid:    st.Uid,
		Gid:    st.Gid,
	}
}

func modeFromStat(mode uint32) os.FileMode {
	perm := os.FileMode(mode & 0o7777)
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return perm | os.ModeDir
	case unix.S_IFLNK:
		return perm | os.ModeSymlink
	case unix.S_IFCHR:
		return perm | os.ModeCharDevice | os.ModeDevice
	case unix.S_IFBLK:
		return perm | os.ModeDevice
	case unix.S_IFIFO:
		return perm | os.ModeNamedPipe
	case unix.S_IFSOCK:
		return perm | os.ModeSocket
	default:
		return perm
	}
}

// lookupChild opens name under parent's fd as O_PATH|O_NOFOLLOW and
// registers (or dedupes against) its inode, mirroring CntrFs::lookup /
// CntrFs::lookup_from_fd in original_source/src/fs.rs.
func (fs *fileSystem) lookupChild(parent *inode, name string) (*inode, fuseops.InodeAttributes, error) {
	parentFd := parent.Fd()
	childFd, err := unix.Openat(parentFd, name, unix.O_PATH|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fuseops.InodeAttributes{}, err
	}

	st, err := statAt(childFd)
	if err != nil {
		unix.Close(childFd)
		return nil, fuseops.InodeAttributes{}, err
	}

	key := devIno{dev: uint64(st.Dev), ino: st.Ino}
	in := fs.inodes.lookupOrRegister(key, childFd)
	return in, attrFromStat(&st), nil
}

func (fs *fileSystem) Init(op *fuseops.InitOp) error {
	return nil
}

func (fs *fileSystem) LookUpInode(op *fuseops.LookUpInodeOp) error {
	parent := fs.inodes.get(op.Parent)
	if parent == nil {
		return syscall.ENOENT
	}

	child, attrs, err := fs.lookupChild(parent, op.Name)
	if err != nil {
		return err
	}

	op.Entry.Child = child.id
	op.Entry.Attributes = attrs
	op.Entry.AttributesExpiration = time.Now().Add(ttl)
	op.Entry.EntryExpiration = time.Now().Add(ttl)
	return nil
}

func (fs *fileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	st, err := statAt(in.Fd())
	if err != nil {
		return err
	}
	op.Attributes = attrFromStat(&st)
	op.AttributesExpiration = time.Now().Add(ttl)
	return nil
}

func (fs *fileSystem) SetInodeAttributes(op *fuseops.SetInodeAttributesOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	fd := in.Fd()
	path := procSelfFd(fd)

	err := fs.asCaller(func() error {
		if op.Mode != nil {
			if err := unix.Chmod(path, uint32(op.Mode.Perm())); err != nil {
				return err
			}
		}
		if op.Size != nil {
			realFd, err := in.upgradeFd(unix.O_WRONLY)
			if err != nil {
				return err
			}
			err = unix.Ftruncate(realFd, int64(*op.Size))
			unix.Close(realFd)
			if err != nil {
				return err
			}
		}
		if op.Atime != nil || op.Mtime != nil {
			times := [2]unix.Timespec{omitTime(), omitTime()}
			if op.Atime != nil {
				times[0] = unix.NsecToTimespec(op.Atime.UnixNano())
			}
			if op.Mtime != nil {
				times[1] = unix.NsecToTimespec(op.Mtime.UnixNano())
			}
			if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times[:], 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	st, err := statAt(fd)
	if err != nil {
		return err
	}
	op.Attributes = attrFromStat(&st)
	op.AttributesExpiration = time.Now().Add(ttl)
	return nil
}

func omitTime() unix.Timespec {
	return unix.Timespec{Nsec: unix.UTIME_OMIT}
}

func (fs *fileSystem) ForgetInode(op *fuseops.ForgetInodeOp) error {
	fs.inodes.forget(op.Inode, uint64(op.N))
	return nil
}

func (fs *fileSystem) ReadSymlink(op *fuseops.ReadSymlinkOp) error {
	in := fs.inodes.get(op.Inode)
	if in == nil {
		return syscall.ENOENT
	}
	buf := make([]byte, 1024)
	for {
		n, err := unix.Readlinkat(in.Fd(), "", buf)
		if err != nil {
			return err
		}
		if n < len(buf) {
			op.Target = string(buf[:n])
			return nil
		}
		buf = make([]byte, len(buf)*2)
	}
}

func (fs *fileSystem) Destroy() {
	fs.inodes.mu.Lock()
	defer fs.inodes.mu.Unlock()
	for _, in := range fs.inodes.byID {
		unix.Close(in.fd)
	}
}
