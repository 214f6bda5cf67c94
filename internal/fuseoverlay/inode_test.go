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
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func devNull(t *testing.T) int {
	t.Helper()
	fd, err := unix.Open("/dev/null", unix.O_RDONLY, 0)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Close(fd) })
	return fd
}

func TestInodeTableDedupesByDevIno(t *testing.T) {
	table := newInodeTable(devNull(t))
	key := devIno{dev: 1, ino: 42}

	first := table.lookupOrRegister(key, devNull(t))
	second := table.lookupOrRegister(key, devNull(t))

	require.Same(t, first, second)
	require.EqualValues(t, 2, second.lookupCount)
}

func TestInodeTableAllocatesDenseIDs(t *testing.T) {
	table := newInodeTable(devNull(t))

	a := table.lookupOrRegister(devIno{dev: 1, ino: 1}, devNull(t))
	b := table.lookupOrRegister(devIno{dev: 1, ino: 2}, devNull(t))

	require.Equal(t, fuseops.RootInodeID+1, a.id)
	require.Equal(t, fuseops.RootInodeID+2, b.id)
}

func TestInodeTableForgetRemovesAtZero(t *testing.T) {
	table := newInodeTable(devNull(t))
	key := devIno{dev: 1, ino: 7}
	in := table.lookupOrRegister(key, devNull(t))

	table.forget(in.id, 1)

	require.Nil(t, table.get(in.id))
	_, stillIndexed := table.byDevIno[key]
	require.False(t, stillIndexed)
}

func TestInodeTableForgetPartialKeepsEntry(t *testing.T) {
	table := newInodeTable(devNull(t))
	key := devIno{dev: 1, ino: 9}
	in := table.lookupOrRegister(key, devNull(t))
	table.lookupOrRegister(key, devNull(t)) // bumps lookupCount to 2

	table.forget(in.id, 1)

	require.NotNil(t, table.get(in.id))
}
