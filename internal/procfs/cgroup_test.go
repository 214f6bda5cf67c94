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
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureCgroups = "#subsys_name\thierarchy\tnum_cgroups\tenabled\n" +
	"cpuset\t1\t1\t1\n" +
	"cpu\t2\t1\t1\n" +
	"disabled_ctrl\t3\t1\t0\n"

const fixtureMountinfo = "25 30 0:22 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid - cgroup cgroup rw,cpu,cpuacct\n" +
	"26 30 0:23 / /sys/fs/cgroup/systemd rw,nosuid - cgroup cgroup rw,name=systemd\n" +
	"27 30 0:24 / /proc rw,nosuid - proc proc rw\n"

func TestGetCgroupSubsystemsSkipsCommentsAndDisabled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cgroups"), []byte(fixtureCgroups), 0o644))
	t.Setenv("CNTR_PROC", root)

	subsystems, err := GetCgroupSubsystems()
	require.NoError(t, err)
	require.Equal(t, []string{"cpuset", "cpu"}, subsystems)
}

func TestGetCgroupControllerMountsFindsNamedHierarchy(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cgroups"), []byte(fixtureCgroups), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "self"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "self", "mountinfo"), []byte(fixtureMountinfo), 0o644))
	t.Setenv("CNTR_PROC", root)

	mounts, err := GetCgroupControllerMounts()
	require.NoError(t, err)
	require.Equal(t, "/sys/fs/cgroup/systemd", mounts["systemd"])
	_, hasKnown := mounts["cpu,cpuacct"]
	require.False(t, hasKnown)
}

func TestGetCgroupsStripsHierarchyPrefix(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "7"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "7", "cgroup"),
		[]byte("11:cpuset:/docker/abc\n4:memory:/docker/abc\n"), 0o644))
	t.Setenv("CNTR_PROC", root)

	cgroups, err := GetCgroups(7)
	require.NoError(t, err)
	require.Equal(t, []string{"docker/abc", "docker/abc"}, cgroups)
}
