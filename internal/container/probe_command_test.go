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

package container

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCmdline(t *testing.T, root string, pid int, args ...string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	var buf []byte
	for _, a := range args {
		buf = append(buf, []byte(a)...)
		buf = append(buf, 0)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), buf, 0o644))
}

func TestCommandProbeMatchesSubstringAndSkipsSelf(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CNTR_PROC", root)
	writeCmdline(t, root, os.Getpid(), "nginx", "-g", "daemon off;")
	writeCmdline(t, root, 9999, "nginx", "-g", "daemon off;")

	pid, err := commandProbe{}.Lookup(context.Background(), "daemon off")

	require.NoError(t, err)
	require.Equal(t, 9999, pid)
}

func TestCommandProbeNoMatch(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CNTR_PROC", root)
	writeCmdline(t, root, 9999, "sh")

	_, err := commandProbe{}.Lookup(context.Background(), "nonexistent")

	require.ErrorContains(t, err, "no command found")
}
