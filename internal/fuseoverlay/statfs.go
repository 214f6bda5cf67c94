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
	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"
)

// StatFS mirrors CntrFs::statfs, which calls fstatvfs on the root's fd.
func (fs *fileSystem) StatFS(op *fuseops.StatFSOp) error {
	root := fs.inodes.get(fuseops.RootInodeID)

	var st unix.Statfs_t
	if err := unix.Fstatfs(root.Fd(), &st); err != nil {
		return err
	}

	op.Blocks = st.Blocks
	op.BlocksFree = st.Bfree
	op.BlocksAvailable = st.Bavail
	op.Inodes = st.Files
	op.InodesFree = st.Ffree
	op.IoSize = uint32(st.Bsize)
	op.BlockSize = uint32(st.Bsize)
	return nil
}
