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
	"context"
	"fmt"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/cntr-go/cntr/internal/errkind"
)

// Mounted is a live FUSE mount of the pass-through filesystem.
type Mounted struct {
	mfs *fuse.MountedFileSystem
}

// Mount exposes rootPath at mountPoint via FUSE, tagging the mount with
// subtype "cntr" so it is recognizable in mount(8) output, mirroring
// CntrFs::mount's "-osubtype=cntr"/"-ofsname=<prefix>" options. uid/gid are
// the container's own host-mapped owning identity, the fsuid/fsgid every
// served request runs as.
func Mount(ctx context.Context, rootPath, mountPoint string, uid, gid uint32) (*Mounted, error) {
	fs, err := New(rootPath, uid, gid)
	if err != nil {
		return nil, err
	}

	server := fuseutil.NewFileSystemServer(fs)

	cfg := &fuse.MountConfig{
		FSName:  fmt.Sprintf("cntr(%s)", rootPath),
		Subtype: "cntr",
	}

	mfs, err := fuse.Mount(mountPoint, server, cfg)
	if err != nil {
		return nil, errkind.Wrap(errkind.Overlay, "mount "+mountPoint, err)
	}
	return &Mounted{mfs: mfs}, nil
}

// Wait blocks until the mount is unmounted (e.g. via fusermount -u or
// process exit), returning any error the kernel connection reported.
func (m *Mounted) Wait() error {
	if err := m.mfs.Join(context.Background()); err != nil {
		return errkind.Wrap(errkind.Overlay, "fuse join", err)
	}
	return nil
}

// Unmount requests the kernel tear down the mount.
func (m *Mounted) Unmount() error {
	if err := fuse.Unmount(m.mfs.Dir()); err != nil {
		return errkind.Wrap(errkind.Overlay, "unmount", err)
	}
	return nil
}
