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

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	old := viper.GetViper()
	t.Cleanup(func() { *viper.GetViper() = *old })
	viper.Reset()
}

func TestLoadAppliesDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, "/proc", cfg.ProcPath)
	require.Equal(t, "/var/lib/cntr", cfg.BaseDir)
	require.Equal(t, DefaultRuntimeOrder, cfg.Runtimes)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "INFO", cfg.LogSeverity)
}

func TestLoadDecodesCommaSeparatedRuntimes(t *testing.T) {
	resetViper(t)
	viper.Set("runtimes", "docker, pid ,command")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, []RuntimeKind{RuntimeDocker, RuntimePID, RuntimeCommand}, cfg.Runtimes)
}
