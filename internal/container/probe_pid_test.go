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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPidProbeLookupByPid(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "12345"), 0o755))
	t.Setenv("CNTR_PROC", root)

	pid, err := pidProbe{}.Lookup(context.Background(), "12345")

	require.NoError(t, err)
	require.Equal(t, 12345, pid)
}

func TestPidProbeMissingProcess(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CNTR_PROC", root)

	_, err := pidProbe{}.Lookup(context.Background(), "12345")

	require.ErrorContains(t, err, "no process with pid 12345 found")
}

func TestPidProbeRejectsNonNumeric(t *testing.T) {
	_, err := pidProbe{}.Lookup(context.Background(), "my-container")

	require.ErrorContains(t, err, "not a valid pid")
}
