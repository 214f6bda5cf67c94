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

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistentFlagsBindWithoutError(t *testing.T) {
	require.NoError(t, bindErr)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["attach"])
	require.True(t, names["exec"])
	require.True(t, names["probe"])
	require.True(t, names["__exec-helper"])
}

func TestHiddenSubcommandsAreHidden(t *testing.T) {
	require.True(t, probeCmd.Hidden)
	require.True(t, execHelperCmd.Hidden)
	require.False(t, attachCmd.Hidden)
}
