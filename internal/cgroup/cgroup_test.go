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

package cgroup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControllerPathTriesEveryCommaSeparatedName(t *testing.T) {
	mounts := map[string]string{"cpuacct": "/sys/fs/cgroup/cpu,cpuacct"}
	path, ok := controllerPath("cpu,cpuacct", mounts)
	require.True(t, ok)
	require.Equal(t, "/sys/fs/cgroup/cpu,cpuacct/cpu,cpuacct/tasks", path)
}

func TestControllerPathMissingMountIsSkipped(t *testing.T) {
	_, ok := controllerPath("devices", map[string]string{})
	require.False(t, ok)
}
