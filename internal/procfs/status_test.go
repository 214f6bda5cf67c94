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
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixtureProc(t *testing.T, pid int, status string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys", "kernel"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sys", "kernel", "cap_last_cap"), []byte("40\n"), 0o644))
	t.Setenv("CNTR_PROC", root)
	return root
}

const fixtureStatus = "Name:\tbash\n" +
	"NSpid:\t1234\t7\n" +
	"CapInh:\t0000000000000000\n" +
	"CapPrm:\t0000003fffffffff\n" +
	"CapEff:\t0000003fffffffff\n"

func TestStatusParsesNSpidAndCapabilities(t *testing.T) {
	root := writeFixtureProc(t, 1234, fixtureStatus)
	dir := filepath.Join(root, "1234")
	info, err := os.Stat(dir)
	require.NoError(t, err)
	uid, gid, err := statOwner(info)
	require.NoError(t, err)

	st, err := Status(1234)
	require.NoError(t, err)
	require.Equal(t, 1234, st.GlobalPID)
	require.Equal(t, 7, st.LocalPID)
	require.Equal(t, uint64(0), st.InheritedCapabilities)
	require.Equal(t, uint64(0x3fffffffff), st.EffectiveCapabilities)
	require.Equal(t, uid, st.UID)
	require.Equal(t, gid, st.GID)
	require.Equal(t, uint(40), st.LastCap)
}

func TestStatusMissingFieldFails(t *testing.T) {
	writeFixtureProc(t, 42, "Name:\tsh\nCapInh:\t0000000000000000\nCapEff:\t0000000000000000\n")
	_, err := Status(42)
	require.Error(t, err)
}
