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

func TestParseSELinuxMountContext(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "123")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	line := `overlay / overlay rw,context="system_u:object_r:container_file_t:s0:c125,c287",nosuid 0 0` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mounts"), []byte(line), 0o644))
	t.Setenv("CNTR_PROC", root)

	ctx, err := ParseSELinuxMountContext(123)
	require.NoError(t, err)
	require.Equal(t, "system_u:object_r:container_file_t:s0:c125,c287", ctx)
}

func TestParseSELinuxMountContextMissing(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "123")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	line := "overlay / overlay rw,nosuid 0 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mounts"), []byte(line), 0o644))
	t.Setenv("CNTR_PROC", root)

	_, err := ParseSELinuxMountContext(123)
	require.Error(t, err)
}
