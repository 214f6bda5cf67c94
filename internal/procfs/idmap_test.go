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

package procfs

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDMapsFromPIDRoundTrip(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, strconv.Itoa(99))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uid_map"), []byte("0 100000 65536\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gid_map"), []byte("0 100000 65536\n"), 0o644))
	t.Setenv("CNTR_PROC", root)

	uidMap, gidMap, err := IDMapsFromPID(99)
	require.NoError(t, err)
	require.Equal(t, uint32(100000), uidMap.MapUp(0))
	require.Equal(t, uint32(0), uidMap.MapDown(100000))
	require.Equal(t, uint32(100001), gidMap.MapUp(1))
}

func TestIDMapLookupMissFallsBackToOverflow(t *testing.T) {
	m := IDMap{Extents: []IDMapExtent{{First: 0, LowerFirst: 100000, Count: 10}}, Overflow: 65534}
	require.Equal(t, uint32(65534), m.MapUp(999999))
	require.Equal(t, uint32(65534), m.MapDown(999999))
}

func TestOverflowIDPrefersProcSysKernel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys", "kernel"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sys", "kernel", "overflowuid"), []byte("60001\n"), 0o644))
	t.Setenv("CNTR_PROC", root)
	overflowOnce = sync.Once{}
	require.Equal(t, uint32(60001), OverflowUID())
}
