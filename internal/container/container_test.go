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

	"github.com/cntr-go/cntr/internal/config"
	"github.com/stretchr/testify/require"
)

func TestResolveFirstSuccessWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "4242"), 0o755))
	t.Setenv("CNTR_PROC", root)

	pid, err := Resolve(context.Background(), "4242", []config.RuntimeKind{config.RuntimeDocker, config.RuntimePID})

	require.NoError(t, err)
	require.Equal(t, 4242, pid)
}

func TestResolveAggregatesFailures(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CNTR_PROC", root)

	_, err := Resolve(context.Background(), "not-a-pid", []config.RuntimeKind{config.RuntimePID})

	require.ErrorContains(t, err, "no suitable container found")
	require.ErrorContains(t, err, "pid: not a valid pid")
}
