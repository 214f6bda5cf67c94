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

func TestSupportedNamespacesIntersectsKnownKinds(t *testing.T) {
	root := t.TempDir()
	nsDir := filepath.Join(root, "self", "ns")
	require.NoError(t, os.MkdirAll(nsDir, 0o755))
	for _, name := range []string{"mnt", "uts", "net", "unknown_future_ns"} {
		require.NoError(t, os.WriteFile(filepath.Join(nsDir, name), nil, 0o644))
	}
	t.Setenv("CNTR_PROC", root)

	kinds, err := SupportedNamespaces()
	require.NoError(t, err)
	require.True(t, Contains(kinds, Mount))
	require.True(t, Contains(kinds, UTS))
	require.True(t, Contains(kinds, Net))
	require.False(t, Contains(kinds, PID))
	require.Len(t, kinds, 3)
}

func TestContains(t *testing.T) {
	kinds := []NSKind{Mount, UTS}
	require.True(t, Contains(kinds, Mount))
	require.False(t, Contains(kinds, PID))
}
