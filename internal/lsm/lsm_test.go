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

package lsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfilePathAppArmorUsesSelfAndPidConventions(t *testing.T) {
	t.Setenv("CNTR_PROC", "/proc")
	require.Equal(t, "/proc/self/attr/current", AppArmor.profilePath(0))
	require.Equal(t, "/proc/42/attr/current", AppArmor.profilePath(42))
}

func TestProfilePathSELinuxUsesThreadSelf(t *testing.T) {
	t.Setenv("CNTR_PROC", "/proc")
	require.Equal(t, "/proc/thread-self/attr/exec", SELinux.profilePath(0))
	require.Equal(t, "/proc/42/attr/exec", SELinux.profilePath(42))
}

func TestReadProcLabelAppArmorStripsEnforceMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current")
	require.NoError(t, os.WriteFile(path, []byte("docker-default (enforce)\n"), 0o644))

	label, err := readProcLabel(path, AppArmor)
	require.NoError(t, err)
	require.Equal(t, "docker-default", label)
}

func TestReadProcLabelSELinuxReturnsVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exec")
	require.NoError(t, os.WriteFile(path, []byte("system_u:system_r:container_t:s0"), 0o644))

	label, err := readProcLabel(path, SELinux)
	require.NoError(t, err)
	require.Equal(t, "system_u:system_r:container_t:s0", label)
}
