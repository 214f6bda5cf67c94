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

package mountns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func withMountRoot(t *testing.T, root string) {
	t.Helper()
	prev := mountRoot
	mountRoot = root
	t.Cleanup(func() { mountRoot = prev })
}

func TestSetupBindMountsSkipsMissingPairsWithoutError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, cntrMountPoint, "etc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, cntrMountPoint, "etc", "hosts"), []byte("127.0.0.1\n"), 0o644))
	// mountpoint side ("etc/hosts" at the fake root) is absent: SetupBindMounts
	// must treat this as a skip, not a failure.
	withMountRoot(t, root)

	err := SetupBindMounts([]string{"etc/hosts", "etc/resolv.conf"})
	require.NoError(t, err)
}

func TestSetupBindMountsSkipsKindMismatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, cntrMountPoint, "dev"), 0o755))
	// source is a directory, mountpoint is a plain file: incompatible kinds.
	require.NoError(t, os.WriteFile(filepath.Join(root, "dev"), nil, 0o644))
	withMountRoot(t, root)

	err := SetupBindMounts([]string{"dev"})
	require.NoError(t, err)
}

func TestTempMountpointCreatesDirectory(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	dir, err := tempMountpoint()
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
